// Package controller owns the evaluation trigger loop: MQTT messages update
// the signal bank or the control items, and every accepted update runs one
// full pipeline tick. Ticks are serialized so the bypass state machine never
// observes a torn previous position.
package controller

import (
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/homehab/hrv-controller/db"
	"github.com/homehab/hrv-controller/internal/caltable"
	"github.com/homehab/hrv-controller/internal/config"
	"github.com/homehab/hrv-controller/internal/datadog"
	"github.com/homehab/hrv-controller/internal/inputs"
	"github.com/homehab/hrv-controller/internal/model"
	"github.com/homehab/hrv-controller/internal/mqtt"
	"github.com/homehab/hrv-controller/internal/pipeline"
	"github.com/homehab/hrv-controller/internal/store"
)

// items are the control settings a snapshot is assembled from. Each one can
// be overridden at runtime by a message on <prefix>/<item>/set.
type items struct {
	manualMode          bool
	temporaryManualMode bool
	temporaryBoostMode  bool

	humidityThreshold int
	co2ThresholdLow   int
	co2ThresholdMid   int
	co2ThresholdHigh  int

	manualPower int
	powerLow    int
	powerMid    int
	powerHigh   int

	preferredTemperature float64
	bypassHysteresis     float64
	intakeExhaustRatio   int

	sourceGpioA  model.GpioSource
	sourceGpioB  model.GpioSource
	rawTestValue int

	calibrationTableA caltable.Table
	calibrationTableB caltable.Table
}

type Controller struct {
	mu sync.Mutex

	cfg    *config.Config
	bank   *inputs.Bank
	client mqtt.Client
	store  *store.Store
	conn   *sql.DB

	items  items
	bypass model.BypassState

	lastPublished map[string]string
}

// New wires a controller from its collaborators. conn may be nil when tick
// history is disabled.
func New(cfg *config.Config, client mqtt.Client, st *store.Store, conn *sql.DB) *Controller {
	c := &Controller{
		cfg:           cfg,
		bank:          inputs.NewBank(cfg.Signals),
		client:        client,
		store:         st,
		conn:          conn,
		bypass:        model.BypassClosed,
		lastPublished: map[string]string{},
	}
	c.items = items{
		humidityThreshold:    cfg.HumidityThreshold,
		co2ThresholdLow:      cfg.CO2ThresholdLow,
		co2ThresholdMid:      cfg.CO2ThresholdMid,
		co2ThresholdHigh:     cfg.CO2ThresholdHigh,
		manualPower:          cfg.ManualPower,
		powerLow:             cfg.PowerLow,
		powerMid:             cfg.PowerMid,
		powerHigh:            cfg.PowerHigh,
		preferredTemperature: cfg.PreferredTemperature,
		bypassHysteresis:     cfg.BypassHysteresis,
		intakeExhaustRatio:   cfg.IntakeExhaustRatio,
		sourceGpioA:          model.GpioSource(cfg.SourceGpioA),
		sourceGpioB:          model.GpioSource(cfg.SourceGpioB),
		rawTestValue:         cfg.RawTestValue,
		calibrationTableA:    caltable.Parse(cfg.CalibrationTableA),
		calibrationTableB:    caltable.Parse(cfg.CalibrationTableB),
	}

	if st != nil {
		if runtime, err := st.Load(); err != nil {
			log.Warn().Err(err).Msg("No persisted runtime state, bypass starts closed")
		} else {
			c.bypass = runtime.Bypass
			log.Info().Str("bypass", string(c.bypass)).Msg("Restored bypass position")
		}
	}

	return c
}

// itemNames lists every runtime-settable control item.
var itemNames = []string{
	"manualMode", "temporaryManualMode", "temporaryBoostMode",
	"humidityThreshold", "co2ThresholdLow", "co2ThresholdMid", "co2ThresholdHigh",
	"manualPower", "powerLow", "powerMid", "powerHigh",
	"preferredTemperature", "bypassHysteresis", "intakeExhaustRatio",
	"sourceGpioA", "sourceGpioB", "rawTestValue",
	"calibrationTableA", "calibrationTableB",
}

// Start subscribes to every sensor and item topic. Each accepted update
// triggers a tick.
func (c *Controller) Start() error {
	for _, topic := range c.bank.Topics() {
		if err := c.client.Subscribe(topic, func(topic, payload string) {
			if c.bank.Apply(topic, payload) {
				c.Tick()
			}
		}); err != nil {
			return err
		}
	}

	for _, name := range itemNames {
		item := name
		topic := c.cfg.TopicPrefix + "/" + item + "/set"
		if err := c.client.Subscribe(topic, func(_, payload string) {
			if c.applyItem(item, payload) {
				c.Tick()
			}
		}); err != nil {
			return err
		}
	}

	return nil
}

// applyItem updates one control item from its MQTT payload. Unparseable
// payloads are logged and ignored; they never abort a running controller.
func (c *Controller) applyItem(item, payload string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch item {
	case "manualMode":
		return setBool(&c.items.manualMode, item, payload)
	case "temporaryManualMode":
		return setBool(&c.items.temporaryManualMode, item, payload)
	case "temporaryBoostMode":
		return setBool(&c.items.temporaryBoostMode, item, payload)
	case "humidityThreshold":
		return setInt(&c.items.humidityThreshold, item, payload)
	case "co2ThresholdLow":
		return setInt(&c.items.co2ThresholdLow, item, payload)
	case "co2ThresholdMid":
		return setInt(&c.items.co2ThresholdMid, item, payload)
	case "co2ThresholdHigh":
		return setInt(&c.items.co2ThresholdHigh, item, payload)
	case "manualPower":
		return setInt(&c.items.manualPower, item, payload)
	case "powerLow":
		return setInt(&c.items.powerLow, item, payload)
	case "powerMid":
		return setInt(&c.items.powerMid, item, payload)
	case "powerHigh":
		return setInt(&c.items.powerHigh, item, payload)
	case "preferredTemperature":
		return setFloat(&c.items.preferredTemperature, item, payload)
	case "bypassHysteresis":
		return setFloat(&c.items.bypassHysteresis, item, payload)
	case "intakeExhaustRatio":
		return setInt(&c.items.intakeExhaustRatio, item, payload)
	case "sourceGpioA":
		return setSource(&c.items.sourceGpioA, item, payload)
	case "sourceGpioB":
		return setSource(&c.items.sourceGpioB, item, payload)
	case "rawTestValue":
		return setInt(&c.items.rawTestValue, item, payload)
	case "calibrationTableA":
		c.items.calibrationTableA = caltable.Parse(payload)
		return true
	case "calibrationTableB":
		c.items.calibrationTableB = caltable.Parse(payload)
		return true
	}
	return false
}

func setBool(dst *bool, item, payload string) bool {
	v, err := inputs.ParseBool(payload)
	if err != nil {
		log.Warn().Str("item", item).Str("payload", payload).Msg("Ignoring unparseable boolean item")
		return false
	}
	*dst = v
	return true
}

func setInt(dst *int, item, payload string) bool {
	v, err := strconv.Atoi(payload)
	if err != nil {
		log.Warn().Str("item", item).Str("payload", payload).Msg("Ignoring unparseable integer item")
		return false
	}
	*dst = v
	return true
}

func setFloat(dst *float64, item, payload string) bool {
	v, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		log.Warn().Str("item", item).Str("payload", payload).Msg("Ignoring unparseable number item")
		return false
	}
	*dst = v
	return true
}

func setSource(dst *model.GpioSource, item, payload string) bool {
	source := model.GpioSource(payload)
	if !source.Valid() {
		log.Warn().Str("item", item).Str("payload", payload).Msg("Ignoring unknown routing source")
		return false
	}
	*dst = source
	return true
}

// Tick runs one complete, serialized evaluation: assemble the snapshot, run
// the pipeline, publish the outputs, carry and persist the bypass position,
// and record the tick.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.assembleLocked()
	result := pipeline.Evaluate(snapshot)

	c.publishLocked(result)

	if result.Bypass != c.bypass && c.store != nil {
		if err := c.store.Save(&store.RuntimeState{Bypass: result.Bypass, UpdatedAt: time.Now()}); err != nil {
			log.Error().Err(err).Msg("Failed to persist bypass position")
		}
	}
	c.bypass = result.Bypass

	if c.conn != nil {
		rec := db.TickRecord{
			Timestamp: time.Now(),
			Power:     result.OutputPower,
			Intake:    result.OutputIntake,
			Exhaust:   result.OutputExhaust,
			GpioA:     result.OutputGpioA,
			GpioB:     result.OutputGpioB,
			Bypass:    string(result.Bypass),
			CO2:       result.CO2,
			Humidity:  result.AirHumidity,
			Smoke:     result.Smoke,
			Gas:       result.Gas,
		}
		if err := db.InsertTick(c.conn, rec); err != nil {
			log.Error().Err(err).Msg("Failed to record tick")
		}
	}

	datadog.Gauge("hrv.output_power", float64(result.OutputPower))
	datadog.Gauge("hrv.output_intake", float64(result.OutputIntake))
	datadog.Gauge("hrv.output_exhaust", float64(result.OutputExhaust))
	datadog.Gauge("hrv.duty_cycle", float64(result.OutputGpioA), "channel:a")
	datadog.Gauge("hrv.duty_cycle", float64(result.OutputGpioB), "channel:b")
	datadog.Incr("hrv.ticks")

	log.Debug().
		Int("power", result.OutputPower).
		Int("intake", result.OutputIntake).
		Int("exhaust", result.OutputExhaust).
		Int("gpio_a", result.OutputGpioA).
		Int("gpio_b", result.OutputGpioB).
		Str("bypass", string(result.Bypass)).
		Msg("Tick complete")
}

// assembleLocked builds the immutable snapshot for one tick from the control
// items, the sensor aggregates, and the carried bypass position.
func (c *Controller) assembleLocked() model.ControlState {
	agg := c.bank.Snapshot()
	return model.ControlState{
		ManualMode:           c.items.manualMode,
		TemporaryManualMode:  c.items.temporaryManualMode,
		TemporaryBoostMode:   c.items.temporaryBoostMode,
		HumidityThreshold:    c.items.humidityThreshold,
		CO2ThresholdLow:      c.items.co2ThresholdLow,
		CO2ThresholdMid:      c.items.co2ThresholdMid,
		CO2ThresholdHigh:     c.items.co2ThresholdHigh,
		ManualPower:          c.items.manualPower,
		PowerLow:             c.items.powerLow,
		PowerMid:             c.items.powerMid,
		PowerHigh:            c.items.powerHigh,
		AirHumidity:          agg.AirHumidity,
		CO2:                  agg.CO2,
		Smoke:                agg.Smoke,
		Gas:                  agg.Gas,
		InsideTemperature:    agg.InsideTemperature,
		OutsideTemperature:   agg.OutsideTemperature,
		PreferredTemperature: c.items.preferredTemperature,
		BypassHysteresis:     c.items.bypassHysteresis,
		Bypass:               c.bypass,
		IntakeExhaustRatio:   c.items.intakeExhaustRatio,
		SourceGpioA:          c.items.sourceGpioA,
		SourceGpioB:          c.items.sourceGpioB,
		RawTestValue:         c.items.rawTestValue,
		CalibrationTableA:    c.items.calibrationTableA,
		CalibrationTableB:    c.items.calibrationTableB,
	}
}

// publishLocked forwards the computed outputs, publishing only topics whose
// value changed since the last tick. State topics are retained so late
// subscribers see the current outputs.
func (c *Controller) publishLocked(result model.ControlState) {
	outputs := map[string]string{
		"hrvOutputPower":   strconv.Itoa(result.OutputPower),
		"hrvOutputIntake":  strconv.Itoa(result.OutputIntake),
		"hrvOutputExhaust": strconv.Itoa(result.OutputExhaust),
		"hrvOutputGpioA":   strconv.Itoa(result.OutputGpioA),
		"hrvOutputGpioB":   strconv.Itoa(result.OutputGpioB),
		"bypass":           string(result.Bypass),
	}

	for item, payload := range outputs {
		topic := c.cfg.TopicPrefix + "/" + item + "/state"
		if c.lastPublished[topic] == payload {
			continue
		}
		if err := c.client.Publish(topic, payload, true); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to publish output")
			continue
		}
		c.lastPublished[topic] = payload
	}
}
