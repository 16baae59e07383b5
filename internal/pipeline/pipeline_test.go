package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/homehab/hrv-controller/internal/caltable"
	"github.com/homehab/hrv-controller/internal/model"
)

func TestEvaluate_FullScenario(t *testing.T) {
	// Elevated CO2 drives mid power; a +4 ratio biases toward intake; channel
	// A routes intake through a linear table, channel B routes exhaust
	// uncalibrated.
	state := baseState()
	state.CO2 = 750
	state.IntakeExhaustRatio = 4
	state.SourceGpioA = model.SourceIntake
	state.SourceGpioB = model.SourceExhaust
	state.CalibrationTableA = caltable.Parse("0:0,50:5,100:10")

	result := Evaluate(state)

	assert.Equal(t, 50, result.OutputPower)
	assert.Equal(t, 54, result.OutputIntake)
	assert.Equal(t, 46, result.OutputExhaust)
	assert.Equal(t, 54, result.OutputGpioA)
	assert.Equal(t, 46, result.OutputGpioB)
	assert.Equal(t, model.BypassClosed, result.Bypass)
}

func TestEvaluate_SmokeShutdownPropagates(t *testing.T) {
	state := baseState()
	state.Smoke = true
	state.SourceGpioA = model.SourceBasePower
	state.SourceGpioB = model.SourceExhaust

	result := Evaluate(state)

	assert.Equal(t, 0, result.OutputPower)
	assert.Equal(t, 0, result.OutputIntake)
	assert.Equal(t, 0, result.OutputExhaust)
	assert.Equal(t, 0, result.OutputGpioA)
	assert.Equal(t, 0, result.OutputGpioB)
}

func TestEvaluate_RawTestChannelIgnoresEverything(t *testing.T) {
	state := baseState()
	state.Smoke = true
	state.SourceGpioA = model.SourceRawTest
	state.RawTestValue = 37
	state.CalibrationTableA = caltable.Parse("0:0,50:8,100:10")

	result := Evaluate(state)

	// The fan power shuts down but the test channel still emits the raw
	// value for calibration measurement.
	assert.Equal(t, 0, result.OutputPower)
	assert.Equal(t, 37, result.OutputGpioA)
}

func TestEvaluate_Idempotent(t *testing.T) {
	state := baseState()
	state.CO2 = 910
	state.IntakeExhaustRatio = -5
	state.InsideTemperature = 22.5 // inside the dead band
	state.Bypass = model.BypassOpen
	state.CalibrationTableA = caltable.Parse("0:0,50:5,100:10")

	first := Evaluate(state)
	second := Evaluate(state)

	assert.Equal(t, first, second)
}

func TestEvaluate_InputIsNotMutated(t *testing.T) {
	state := baseState()
	state.CO2 = 910

	before := state
	Evaluate(state)

	assert.Equal(t, before, state)
}

func TestEvaluate_BypassCarriesAcrossTicks(t *testing.T) {
	state := baseState()
	state.InsideTemperature = 24 // opens
	result := Evaluate(state)
	assert.Equal(t, model.BypassOpen, result.Bypass)

	// Next tick: inside drops into the dead band, valve stays open.
	next := state
	next.InsideTemperature = 22.5
	next.Bypass = result.Bypass
	result = Evaluate(next)
	assert.Equal(t, model.BypassOpen, result.Bypass)
}
