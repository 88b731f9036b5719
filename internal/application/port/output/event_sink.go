package output

import (
	"context"
	"time"
)

// WizardEvent describes one effective mutation of the wizard state
type WizardEvent struct {
	Op           string
	At           time.Time
	Role         string
	Profile      string
	StepIndex    int
	StepKey      string
	SessionValid bool
}

// EventSink receives wizard events, e.g. an append-only journal
type EventSink interface {
	Record(ctx context.Context, event WizardEvent) error
}
