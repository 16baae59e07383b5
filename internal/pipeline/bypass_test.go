package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/homehab/hrv-controller/internal/model"
)

func TestUpdateBypass_HysteresisSweep(t *testing.T) {
	// preferred=22, hysteresis=2, outside=10: the valve must open above 23,
	// close below 21, and hold its position anywhere in [21,23].
	state := baseState()
	state.Bypass = model.BypassClosed

	sweep := []struct {
		inside   float64
		expected model.BypassState
	}{
		{20, model.BypassClosed},
		{21, model.BypassClosed},  // dead band, stays closed
		{22, model.BypassClosed},  // dead band
		{23, model.BypassClosed},  // dead band upper edge
		{23.5, model.BypassOpen},  // above band, opens
		{24, model.BypassOpen},
		{23, model.BypassOpen},    // back in band, stays open
		{22, model.BypassOpen},    // still in band
		{21, model.BypassOpen},    // lower edge, still open
		{20.5, model.BypassClosed}, // below band, closes
		{20, model.BypassClosed},
	}

	for _, step := range sweep {
		state.InsideTemperature = step.inside
		state = UpdateBypass(state)
		assert.Equal(t, step.expected, state.Bypass, "inside=%v", step.inside)
	}
}

func TestUpdateBypass_RequiresWarmerThanOutside(t *testing.T) {
	// Inside is hot but outside is hotter: opening the bypass would pull in
	// even warmer air, so the valve must not open.
	state := baseState()
	state.InsideTemperature = 26
	state.OutsideTemperature = 30
	state.Bypass = model.BypassClosed

	state = UpdateBypass(state)

	assert.Equal(t, model.BypassClosed, state.Bypass)
}

func TestUpdateBypass_ClosesWhenInsideColderThanOutside(t *testing.T) {
	state := baseState()
	state.InsideTemperature = 24
	state.OutsideTemperature = 30
	state.PreferredTemperature = 20
	state.Bypass = model.BypassOpen

	state = UpdateBypass(state)

	// inside < outside - half triggers the close condition even though
	// inside is above the preferred band.
	assert.Equal(t, model.BypassClosed, state.Bypass)
}

func TestUpdateBypass_ManualModeFreezesValve(t *testing.T) {
	for _, prior := range []model.BypassState{model.BypassOpen, model.BypassClosed} {
		state := baseState()
		state.ManualMode = true
		state.InsideTemperature = 30 // would open automatically
		state.Bypass = prior

		state = UpdateBypass(state)

		assert.Equal(t, prior, state.Bypass)
	}
}

func TestUpdateBypass_TemporaryManualModeFreezesValve(t *testing.T) {
	state := baseState()
	state.TemporaryManualMode = true
	state.InsideTemperature = 30
	state.Bypass = model.BypassClosed

	state = UpdateBypass(state)

	assert.Equal(t, model.BypassClosed, state.Bypass)
}
