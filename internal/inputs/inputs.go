// Package inputs assembles the sensor-aggregate fields of the control
// snapshot from individually reported MQTT readings. Each logical signal
// keeps the latest reading per contributing topic and collapses them with
// its configured aggregation rule; until a source reports, the configured
// default stands in.
package inputs

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/homehab/hrv-controller/internal/aggregate"
	"github.com/homehab/hrv-controller/internal/config"
)

// Aggregates are the sensor fields of one snapshot.
type Aggregates struct {
	AirHumidity        int
	CO2                int
	InsideTemperature  float64
	OutsideTemperature float64
	Smoke              bool
	Gas                bool
}

type numericSignal struct {
	rule     aggregate.NumericRule
	def      float64
	readings map[string]float64
}

func (s *numericSignal) value() float64 {
	if len(s.readings) == 0 {
		return s.def
	}
	values := make([]float64, 0, len(s.readings))
	for _, v := range s.readings {
		values = append(values, v)
	}
	return aggregate.Numeric(s.rule, values)
}

type booleanSignal struct {
	rule     aggregate.BooleanRule
	def      bool
	readings map[string]bool
}

func (s *booleanSignal) value() bool {
	if len(s.readings) == 0 {
		return s.def
	}
	values := make([]bool, 0, len(s.readings))
	for _, v := range s.readings {
		values = append(values, v)
	}
	return aggregate.Boolean(s.rule, values)
}

// Bank routes topic updates to their signals and produces Aggregates.
type Bank struct {
	mu sync.RWMutex

	airHumidity        numericSignal
	co2                numericSignal
	insideTemperature  numericSignal
	outsideTemperature numericSignal
	smoke              booleanSignal
	gas                booleanSignal

	numericByTopic map[string]*numericSignal
	booleanByTopic map[string]*booleanSignal
}

func NewBank(cfg config.Signals) *Bank {
	b := &Bank{
		airHumidity:        newNumeric(cfg.AirHumidity),
		co2:                newNumeric(cfg.CO2),
		insideTemperature:  newNumeric(cfg.InsideTemperature),
		outsideTemperature: newNumeric(cfg.OutsideTemperature),
		smoke:              newBoolean(cfg.Smoke),
		gas:                newBoolean(cfg.Gas),
		numericByTopic:     map[string]*numericSignal{},
		booleanByTopic:     map[string]*booleanSignal{},
	}

	for signal, sc := range map[*numericSignal]config.NumericSignal{
		&b.airHumidity:        cfg.AirHumidity,
		&b.co2:                cfg.CO2,
		&b.insideTemperature:  cfg.InsideTemperature,
		&b.outsideTemperature: cfg.OutsideTemperature,
	} {
		for _, topic := range sc.Topics {
			b.numericByTopic[topic] = signal
		}
	}
	for signal, sc := range map[*booleanSignal]config.BooleanSignal{
		&b.smoke: cfg.Smoke,
		&b.gas:   cfg.Gas,
	} {
		for _, topic := range sc.Topics {
			b.booleanByTopic[topic] = signal
		}
	}

	return b
}

func newNumeric(cfg config.NumericSignal) numericSignal {
	return numericSignal{
		rule:     aggregate.NumericRule(cfg.Rule),
		def:      cfg.Default,
		readings: map[string]float64{},
	}
}

func newBoolean(cfg config.BooleanSignal) booleanSignal {
	return booleanSignal{
		rule:     aggregate.BooleanRule(cfg.Rule),
		def:      cfg.Default,
		readings: map[string]bool{},
	}
}

// Topics lists every topic the bank wants subscribed.
func (b *Bank) Topics() []string {
	topics := make([]string, 0, len(b.numericByTopic)+len(b.booleanByTopic))
	for t := range b.numericByTopic {
		topics = append(topics, t)
	}
	for t := range b.booleanByTopic {
		topics = append(topics, t)
	}
	return topics
}

// Apply records a reading. It returns true when the topic belongs to a
// configured signal and the payload parsed, so the caller knows whether to
// trigger a tick. Unparseable payloads are logged and dropped.
func (b *Bank) Apply(topic, payload string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if signal, ok := b.numericByTopic[topic]; ok {
		v, err := parseNumber(payload)
		if err != nil {
			log.Warn().Str("topic", topic).Str("payload", payload).Msg("Dropping unparseable numeric reading")
			return false
		}
		signal.readings[topic] = v
		return true
	}
	if signal, ok := b.booleanByTopic[topic]; ok {
		v, err := ParseBool(payload)
		if err != nil {
			log.Warn().Str("topic", topic).Str("payload", payload).Msg("Dropping unparseable boolean reading")
			return false
		}
		signal.readings[topic] = v
		return true
	}
	return false
}

// Snapshot collapses every signal into its aggregate value.
func (b *Bank) Snapshot() Aggregates {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Aggregates{
		AirHumidity:        int(b.airHumidity.value()),
		CO2:                int(b.co2.value()),
		InsideTemperature:  b.insideTemperature.value(),
		OutsideTemperature: b.outsideTemperature.value(),
		Smoke:              b.smoke.value(),
		Gas:                b.gas.value(),
	}
}

// parseNumber accepts plain numbers and the boolean payloads some binary
// sensors publish on numeric signals, coerced to 0/1.
func parseNumber(payload string) (float64, error) {
	if v, err := strconv.ParseFloat(strings.TrimSpace(payload), 64); err == nil {
		return v, nil
	}
	if v, err := ParseBool(payload); err == nil {
		return aggregate.CoerceBool(v), nil
	}
	return 0, fmt.Errorf("not a numeric payload: %q", payload)
}

// ParseBool accepts the boolean spellings seen on the bus: 1/0, true/false
// and the ON/OFF switch states.
func ParseBool(payload string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(payload)) {
	case "1", "true", "on":
		return true, nil
	case "0", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean payload: %q", payload)
}
