package pipeline

import (
	"github.com/rs/zerolog/log"

	"github.com/homehab/hrv-controller/internal/caltable"
	"github.com/homehab/hrv-controller/internal/model"
)

// ApplyCalibration converts each routed target percentage into the duty cycle
// that produces the equivalent output voltage, using the channel's
// calibration table. Calibration is optional and degrades safely: a table
// with fewer than two valid points is an identity passthrough, and it is
// never applied while a channel is in raw test mode or switched off.
func ApplyCalibration(state model.ControlState) model.ControlState {
	state.OutputGpioA = calibrate(state.OutputGpioA, state.CalibrationTableA, state.SourceGpioA)
	state.OutputGpioB = calibrate(state.OutputGpioB, state.CalibrationTableB, state.SourceGpioB)

	log.Debug().
		Int("gpio_a", state.OutputGpioA).
		Int("gpio_b", state.OutputGpioB).
		Msg("Calibration applied")

	return state
}

func calibrate(targetPercent int, table caltable.Table, source model.GpioSource) int {
	// The operator reads raw measurements in test mode; calibrating them
	// would corrupt the next table. Disabled channels stay untouched.
	if source == model.SourceRawTest || source == model.SourceOff {
		return targetPercent
	}
	if !table.Usable() {
		return targetPercent
	}

	targetVoltage := float64(targetPercent) / 100.0 * caltable.FullScaleVoltage
	return table.DutyForVoltage(targetVoltage)
}
