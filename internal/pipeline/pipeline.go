// Package pipeline turns one ControlState snapshot into actuator commands.
// Every stage is a pure function from snapshot to snapshot; each consumes
// only fields already valid at its position in the fixed order and writes
// only its own outputs.
package pipeline

import "github.com/homehab/hrv-controller/internal/model"

// Stage is one pure transformation of the snapshot.
type Stage func(model.ControlState) model.ControlState

// stages run in this exact order; RouteOutputs reads the balancer's results
// and ApplyCalibration reads the router's.
var stages = []Stage{
	ComputePower,
	UpdateBypass,
	BalanceFlows,
	RouteOutputs,
	ApplyCalibration,
}

// Evaluate runs one full tick over the snapshot. It holds no state of its
// own: re-running it on the same input (including the same prior bypass
// position) yields an identical result.
func Evaluate(state model.ControlState) model.ControlState {
	for _, stage := range stages {
		state = stage(state)
	}
	return state
}
