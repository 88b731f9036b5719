package navigation

import (
	"context"

	"github.com/themis-iprm/themis/internal/domain/model/wizard"
)

// StepState is how a step is shown in the progress sidebar
type StepState string

const (
	StateCompleted  StepState = "completed"
	StateCurrent    StepState = "current"
	StateAccessible StepState = "accessible"
	StateLocked     StepState = "locked"
)

// Gate answers which steps the user may visit, given the active flow,
// the step pointer and the captured data. All methods are pure.
type Gate struct {
	Steps   wizard.Flow
	Current int
	Data    wizard.StepData
}

// NewGate creates a Gate; nil steps or data are treated as empty
func NewGate(steps wizard.Flow, current int, data wizard.StepData) Gate {
	if steps == nil {
		steps = wizard.Flow{}
	}
	if data == nil {
		data = wizard.StepData{}
	}
	return Gate{Steps: steps, Current: current, Data: data}
}

// Total is the number of steps in the flow
func (g Gate) Total() int { return len(g.Steps) }

// IsStepAccessible reports whether step i may be visited: any step up to
// the current one, or the one directly after it.
// The upper bound against the flow length is not checked here.
func (g Gate) IsStepAccessible(i int) bool {
	return i >= 0 && (i <= g.Current || i == g.Current+1)
}

// IsStepCompleted reports whether step i has captured data and lies behind the pointer
func (g Gate) IsStepCompleted(i int) bool {
	if i < 0 || i >= len(g.Steps) {
		return false
	}
	return g.Data.Has(g.Steps[i].Key) && i < g.Current
}

func (g Gate) CanGoNext() bool { return g.Current < len(g.Steps)-1 }

func (g Gate) CanGoPrevious() bool { return g.Current > 0 }

// ProgressPercent is (Current+1)/Total*100, or 0 for an empty flow
func (g Gate) ProgressPercent() float64 {
	if len(g.Steps) == 0 {
		return 0
	}
	return float64(g.Current+1) / float64(len(g.Steps)) * 100
}

// CurrentStep returns the step under the pointer, if the pointer is inside the flow
func (g Gate) CurrentStep() (wizard.StepDefinition, bool) {
	if g.Current < 0 || g.Current >= len(g.Steps) {
		return wizard.StepDefinition{}, false
	}
	return g.Steps[g.Current], true
}

// State classifies step i for display
func (g Gate) State(i int) StepState {
	switch {
	case i == g.Current:
		return StateCurrent
	case g.IsStepCompleted(i):
		return StateCompleted
	case g.IsStepAccessible(i) && i < len(g.Steps):
		return StateAccessible
	default:
		return StateLocked
	}
}

// StepSetter moves the step pointer
type StepSetter interface {
	SetCurrentStep(ctx context.Context, index int)
}

// Next advances one step when the flow allows it
func Next(ctx context.Context, g Gate, s StepSetter) bool {
	if !g.CanGoNext() {
		return false
	}
	s.SetCurrentStep(ctx, g.Current+1)
	return true
}

// Previous goes back one step when possible
func Previous(ctx context.Context, g Gate, s StepSetter) bool {
	if !g.CanGoPrevious() {
		return false
	}
	s.SetCurrentStep(ctx, g.Current-1)
	return true
}

// JumpTo moves to step i when it is accessible and inside the flow.
// Rejected jumps leave the pointer untouched.
func JumpTo(ctx context.Context, g Gate, s StepSetter, i int) bool {
	if !g.IsStepAccessible(i) || i >= len(g.Steps) {
		return false
	}
	s.SetCurrentStep(ctx, i)
	return true
}
