package pipeline

import (
	"github.com/rs/zerolog/log"

	"github.com/homehab/hrv-controller/internal/model"
)

// UpdateBypass decides the bypass valve position with a dead band of
// BypassHysteresis degrees centered on the thresholds. Inside the band the
// valve keeps its previous position; the stay branch is what prevents the
// valve chattering when the inside temperature sits near a boundary.
func UpdateBypass(state model.ControlState) model.ControlState {
	// Manual modes suspend automatic bypass control entirely.
	if state.ManualMode || state.TemporaryManualMode {
		log.Debug().Msg("Bypass: manual mode active, skipping automatic control")
		return state
	}

	inside := state.InsideTemperature
	outside := state.OutsideTemperature
	preferred := state.PreferredTemperature
	half := state.BypassHysteresis / 2

	openCond := inside > preferred+half && inside > outside+half
	closeCond := inside < preferred-half || inside < outside-half

	switch {
	case openCond:
		log.Debug().
			Float64("inside", inside).
			Float64("preferred", preferred).
			Float64("outside", outside).
			Msg("Bypass opening")
		state.Bypass = model.BypassOpen
	case closeCond:
		log.Debug().
			Float64("inside", inside).
			Float64("preferred", preferred).
			Float64("outside", outside).
			Msg("Bypass closing")
		state.Bypass = model.BypassClosed
	default:
		// Inside the dead band: no transition.
		log.Debug().
			Float64("inside", inside).
			Float64("preferred", preferred).
			Float64("outside", outside).
			Str("current", string(state.Bypass)).
			Msg("Bypass unchanged (hysteresis)")
	}

	return state
}
