package pipeline

import (
	"github.com/rs/zerolog/log"

	"github.com/homehab/hrv-controller/internal/model"
)

// BalanceFlows derives the intake and exhaust motor levels from the base
// power and the signed intake/exhaust ratio. Ratio 0 is balanced flow, a
// positive ratio biases toward positive pressure (intake dominant), a
// negative ratio toward negative pressure.
func BalanceFlows(state model.ControlState) model.ControlState {
	base := state.OutputPower
	ratio := state.IntakeExhaustRatio

	state.OutputIntake = adjustPower(base, ratio)
	state.OutputExhaust = adjustPower(base, -ratio)

	log.Debug().
		Int("intake", state.OutputIntake).
		Int("exhaust", state.OutputExhaust).
		Int("base", base).
		Int("ratio", ratio).
		Msg("Calculated intake/exhaust levels")

	return state
}

// adjustPower saturates at the 0-100 duty range rather than wrapping.
func adjustPower(base, delta int) int {
	out := base + delta
	if out < 0 {
		return 0
	}
	if out > 100 {
		return 100
	}
	return out
}
