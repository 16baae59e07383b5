package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/homehab/hrv-controller/internal/aggregate"
	"github.com/homehab/hrv-controller/internal/model"
)

// NumericSignal configures aggregation of one numeric logical signal from
// the MQTT topics its contributing sensors report on. Default is used until
// at least one source has reported.
type NumericSignal struct {
	Rule    string   `json:"rule"` // min, max, sum, count, avg
	Topics  []string `json:"topics"`
	Default float64  `json:"default"`
}

// BooleanSignal configures aggregation of one boolean logical signal.
type BooleanSignal struct {
	Rule    string   `json:"rule"` // and, or
	Topics  []string `json:"topics"`
	Default bool     `json:"default"`
}

// Signals holds the aggregation configuration for every sensor aggregate the
// pipeline consumes. Smoke should default to true so a never-reporting
// detector fails safe.
type Signals struct {
	AirHumidity        NumericSignal `json:"air_humidity"`
	CO2                NumericSignal `json:"co2"`
	InsideTemperature  NumericSignal `json:"inside_temperature"`
	OutsideTemperature NumericSignal `json:"outside_temperature"`
	Smoke              BooleanSignal `json:"smoke"`
	Gas                BooleanSignal `json:"gas"`
}

type Config struct {
	ConfigFile string
	StateFile  string
	DBFile     string
	LogFile    string
	LogLevel   zerolog.Level

	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	TopicPrefix string `json:"topic_prefix"`

	EnableDatadog bool     `json:"enable_datadog"`
	DDAgentAddr   string   `json:"dd_agent_addr"`
	DDNamespace   string   `json:"dd_namespace"`
	DDTags        []string `json:"dd_tags"`

	// Control item defaults; each can be overridden at runtime by a retained
	// MQTT item message.
	HumidityThreshold    int     `json:"humidity_threshold"`
	CO2ThresholdLow      int     `json:"co2_threshold_low"`
	CO2ThresholdMid      int     `json:"co2_threshold_mid"`
	CO2ThresholdHigh     int     `json:"co2_threshold_high"`
	ManualPower          int     `json:"manual_power"`
	PowerLow             int     `json:"power_low"`
	PowerMid             int     `json:"power_mid"`
	PowerHigh            int     `json:"power_high"`
	PreferredTemperature float64 `json:"preferred_temperature"`
	BypassHysteresis     float64 `json:"bypass_hysteresis"`
	IntakeExhaustRatio   int     `json:"intake_exhaust_ratio"`
	SourceGpioA          string  `json:"source_gpio_a"`
	SourceGpioB          string  `json:"source_gpio_b"`
	RawTestValue         int     `json:"raw_test_value"`
	CalibrationTableA    string  `json:"calibration_table_a"`
	CalibrationTableB    string  `json:"calibration_table_b"`

	Signals Signals `json:"signals"`
}

func Load() Config {
	cfg := defaults()
	var logLevel string

	flag.StringVar(&cfg.ConfigFile, "config-file", "config.json", "Path to controller config file")
	flag.StringVar(&cfg.StateFile, "state-file", "data/state.json", "Path to persisted runtime state file")
	flag.StringVar(&cfg.DBFile, "db-file", "data/hrv.db", "Path to tick history database")
	flag.StringVar(&cfg.LogFile, "log-file", "/var/log/hrv-controller.log", "Path to log file (empty for stderr)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg.LogLevel = parseLogLevel(logLevel)

	file, err := os.Open(cfg.ConfigFile)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	cfg.validate()
	return cfg
}

func defaults() Config {
	return Config{
		ClientID:             "hrv-controller",
		TopicPrefix:          "homehab/hrv",
		HumidityThreshold:    60,
		CO2ThresholdLow:      500,
		CO2ThresholdMid:      700,
		CO2ThresholdHigh:     900,
		ManualPower:          50,
		PowerLow:             15,
		PowerMid:             50,
		PowerHigh:            95,
		PreferredTemperature: 22,
		BypassHysteresis:     2,
		SourceGpioA:          string(model.SourceIntake),
		SourceGpioB:          string(model.SourceExhaust),
		Signals: Signals{
			AirHumidity:        NumericSignal{Rule: "max"},
			CO2:                NumericSignal{Rule: "max", Default: 500},
			InsideTemperature:  NumericSignal{Rule: "avg", Default: 21},
			OutsideTemperature: NumericSignal{Rule: "avg", Default: 10},
			// Fail safe: an unreported smoke detector is treated as firing.
			Smoke: BooleanSignal{Rule: "or", Default: true},
			Gas:   BooleanSignal{Rule: "or"},
		},
	}
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) validate() {
	var problems []string

	if cfg.Broker == "" {
		problems = append(problems, "broker must be set")
	}

	if !(cfg.CO2ThresholdLow < cfg.CO2ThresholdMid && cfg.CO2ThresholdMid < cfg.CO2ThresholdHigh) {
		problems = append(problems, fmt.Sprintf(
			"co2 thresholds must be ordered low < mid < high, got %d/%d/%d",
			cfg.CO2ThresholdLow, cfg.CO2ThresholdMid, cfg.CO2ThresholdHigh))
	}

	for name, p := range map[string]int{
		"manual_power":   cfg.ManualPower,
		"power_low":      cfg.PowerLow,
		"power_mid":      cfg.PowerMid,
		"power_high":     cfg.PowerHigh,
		"raw_test_value": cfg.RawTestValue,
	} {
		if p < 0 || p > 100 {
			problems = append(problems, fmt.Sprintf("%s must be in 0-100, got %d", name, p))
		}
	}
	if !(cfg.PowerLow <= cfg.PowerMid && cfg.PowerMid <= cfg.PowerHigh) {
		problems = append(problems, fmt.Sprintf(
			"power levels must be ordered low <= mid <= high, got %d/%d/%d",
			cfg.PowerLow, cfg.PowerMid, cfg.PowerHigh))
	}

	if cfg.BypassHysteresis < 0 {
		problems = append(problems, fmt.Sprintf("bypass_hysteresis must not be negative, got %v", cfg.BypassHysteresis))
	}
	if cfg.IntakeExhaustRatio < -100 || cfg.IntakeExhaustRatio > 100 {
		problems = append(problems, fmt.Sprintf("intake_exhaust_ratio must be in -100..100, got %d", cfg.IntakeExhaustRatio))
	}

	for name, s := range map[string]string{
		"source_gpio_a": cfg.SourceGpioA,
		"source_gpio_b": cfg.SourceGpioB,
	} {
		if !model.GpioSource(s).Valid() {
			problems = append(problems, fmt.Sprintf("%s has unknown routing source %q", name, s))
		}
	}

	for name, rule := range map[string]string{
		"signals.air_humidity":        cfg.Signals.AirHumidity.Rule,
		"signals.co2":                 cfg.Signals.CO2.Rule,
		"signals.inside_temperature":  cfg.Signals.InsideTemperature.Rule,
		"signals.outside_temperature": cfg.Signals.OutsideTemperature.Rule,
	} {
		if !aggregate.NumericRule(rule).Valid() {
			problems = append(problems, fmt.Sprintf("%s has unknown numeric rule %q", name, rule))
		}
	}
	for name, rule := range map[string]string{
		"signals.smoke": cfg.Signals.Smoke.Rule,
		"signals.gas":   cfg.Signals.Gas.Rule,
	} {
		if !aggregate.BooleanRule(rule).Valid() {
			problems = append(problems, fmt.Sprintf("%s has unknown boolean rule %q", name, rule))
		}
	}

	if len(problems) > 0 {
		panic("Invalid configuration: " + strings.Join(problems, "; "))
	}
}
