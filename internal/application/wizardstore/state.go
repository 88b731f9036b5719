package wizardstore

import (
	"github.com/themis-iprm/themis/internal/domain/model/session"
	"github.com/themis-iprm/themis/internal/domain/model/wizard"
)

// State is a snapshot of the wizard record.
// Snapshots are copies; changing one never affects the Store.
type State struct {
	Role             wizard.Role
	Profile          wizard.Profile
	CurrentStepIndex int
	StepData         wizard.StepData
	Session          session.Session
}

// DefaultState returns the initial state: no role, step 0, no data, signed out
func DefaultState() State {
	return State{StepData: wizard.StepData{}}
}

func (s State) clone() State {
	s.StepData = s.StepData.Clone()
	return s
}

// withoutProgress clears role, profile, step pointer and captured data,
// keeping the session.
func (s State) withoutProgress() State {
	d := DefaultState()
	d.Session = s.Session
	return d
}
