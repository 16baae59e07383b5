package pipeline

import (
	"github.com/rs/zerolog/log"

	"github.com/homehab/hrv-controller/internal/model"
)

// ComputePower picks the target fan power from an ordered, short-circuiting
// priority list. The order is the contract: manual and boost modes are
// intentional overrides of the smoke shutdown, gas must outrank smoke, and
// smoke must outrank every comfort-driven rule. Do not reorder.
func ComputePower(state model.ControlState) model.ControlState {
	power := decidePower(state)
	log.Debug().Int("power", power).Msg("Calculated base power")
	state.OutputPower = power
	return state
}

func decidePower(state model.ControlState) int {
	if state.ManualMode || state.TemporaryManualMode {
		return state.ManualPower
	}

	if state.TemporaryBoostMode {
		return state.PowerHigh
	}

	if state.Gas {
		return state.PowerHigh
	}

	if state.Smoke {
		return model.PowerOff
	}

	if state.AirHumidity >= state.HumidityThreshold {
		return state.PowerHigh
	}

	if state.CO2 >= state.CO2ThresholdHigh {
		return state.PowerHigh
	}

	if state.CO2 >= state.CO2ThresholdMid {
		return state.PowerMid
	}

	// The low-threshold branch yields the same result as the default; it is
	// kept so the rule list reads as the full threshold ladder.
	if state.CO2 >= state.CO2ThresholdLow {
		return state.PowerLow
	}

	return state.PowerLow
}
