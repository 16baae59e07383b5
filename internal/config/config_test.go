package config

import (
	"testing"
)

func validConfig() Config {
	cfg := defaults()
	cfg.Broker = "tcp://127.0.0.1:1883"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()

	cfg.validate() // should not panic
}

func TestValidate_MissingBroker(t *testing.T) {
	cfg := validConfig()
	cfg.Broker = ""

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to missing broker, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	cfg := validConfig()
	cfg.CO2ThresholdLow = 800
	cfg.CO2ThresholdMid = 700 // mid below low

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to unordered co2 thresholds, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_PowerOrdering(t *testing.T) {
	cfg := validConfig()
	cfg.PowerLow = 80
	cfg.PowerMid = 50

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to unordered power levels, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_PowerRange(t *testing.T) {
	cfg := validConfig()
	cfg.PowerHigh = 150

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to out-of-range power level, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_UnknownRoutingSource(t *testing.T) {
	cfg := validConfig()
	cfg.SourceGpioA = "pwm"

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to unknown routing source, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_UnknownAggregationRule(t *testing.T) {
	cfg := validConfig()
	cfg.Signals.CO2.Rule = "median"

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to unknown aggregation rule, but got none")
		}
	}()

	cfg.validate()
}

func TestDefaults_SmokeFailsSafe(t *testing.T) {
	cfg := defaults()

	if !cfg.Signals.Smoke.Default {
		t.Error("smoke must default to true so a silent detector fails safe")
	}
}
