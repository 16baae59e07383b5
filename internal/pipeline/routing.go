package pipeline

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/homehab/hrv-controller/internal/model"
)

// RouteOutputs maps each physical PWM channel to the logical signal selected
// by its routing source. The two channels route independently: one can drive
// intake while the other drives exhaust, both can mirror base power, or a
// channel can be parked on the raw test value for calibration measurement.
func RouteOutputs(state model.ControlState) model.ControlState {
	state.OutputGpioA = routedValue(state, state.SourceGpioA)
	state.OutputGpioB = routedValue(state, state.SourceGpioB)

	log.Debug().
		Str("source_a", string(state.SourceGpioA)).
		Int("gpio_a", state.OutputGpioA).
		Str("source_b", string(state.SourceGpioB)).
		Int("gpio_b", state.OutputGpioB).
		Msg("Routed GPIO outputs")

	return state
}

func routedValue(state model.ControlState, source model.GpioSource) int {
	switch source {
	case model.SourceBasePower:
		return state.OutputPower
	case model.SourceIntake:
		return state.OutputIntake
	case model.SourceExhaust:
		return state.OutputExhaust
	case model.SourceRawTest:
		return state.RawTestValue
	case model.SourceOff:
		return 0
	default:
		panic(fmt.Sprintf("pipeline: unknown gpio source %q", source))
	}
}
