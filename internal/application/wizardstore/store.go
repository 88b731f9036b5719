package wizardstore

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/themis-iprm/themis/internal/app"
	"github.com/themis-iprm/themis/internal/application/port/output"
	"github.com/themis-iprm/themis/internal/domain/model/session"
	"github.com/themis-iprm/themis/internal/domain/model/wizard"
)

// Event operation names
const (
	OpSetAuthenticated = "set_authenticated"
	OpSetRole          = "set_role"
	OpSetProfile       = "set_profile"
	OpSelectRole       = "select_role"
	OpSetCurrentStep   = "set_current_step"
	OpUpdateStepData   = "update_step_data"
	OpResetWizard      = "reset_wizard"
	OpSignOut          = "sign_out"
)

// Store owns the wizard record of one running session.
//
// Every mutation is synchronous and total: it applies in memory, then writes
// the whole record through the repository. Persistence failures are logged and
// never returned, so a broken disk cannot block the wizard.
//
// The Role/Profile invariant is not checked by SetRole and SetProfile; callers
// of those setters own it. SelectRole is the checked entry point.
type Store struct {
	mu    sync.Mutex
	state State

	repo   output.StateRepository
	name   string
	now    func() time.Time
	ttl    time.Duration
	sink   output.EventSink
	logger app.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for session expiry
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRecordName stores the record under a different name
func WithRecordName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.name = name
		}
	}
}

// WithEventSink forwards every effective mutation to sink
func WithEventSink(sink output.EventSink) Option {
	return func(s *Store) { s.sink = sink }
}

// WithLogger overrides the app-layer logger
func WithLogger(l app.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open creates a Store from the persisted record, or from defaults when the
// record is missing, unreadable or fails validation. It never fails.
func Open(ctx context.Context, repo output.StateRepository, opts ...Option) *Store {
	s := &Store{
		state:  DefaultState(),
		repo:   repo,
		name:   DefaultRecordName,
		now:    time.Now,
		ttl:    session.DefaultTTL,
		logger: app.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = s.loadOrDefault(ctx)
	return s
}

func (s *Store) loadOrDefault(ctx context.Context) State {
	if s.repo == nil {
		return DefaultState()
	}

	data, err := s.repo.Load(ctx, s.name)
	if err != nil {
		if errors.Is(err, output.ErrStateNotFound) {
			s.logger.Debug("no wizard record %q yet, starting from defaults", s.name)
		} else {
			s.logger.Warn("failed to read wizard record %q, starting from defaults: %v", s.name, err)
		}
		return DefaultState()
	}

	st, err := decodeRecord(data)
	if err != nil {
		s.logger.Warn("discarding wizard record %q: %v", s.name, err)
		return DefaultState()
	}
	return st
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// IsSessionValid reports whether the session is authenticated and unexpired.
// It never mutates; expiry is only ever checked, not acted upon here.
func (s *Store) IsSessionValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Session.IsValid(s.now())
}

// IsAuthenticated reports the raw authenticated flag, regardless of expiry
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Session.Authenticated()
}

// CurrentRole returns the selected role, RoleNone when unset
func (s *Store) CurrentRole() wizard.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Role
}

// SetAuthenticated starts a session valid for the TTL, or clears it
func (s *Store) SetAuthenticated(ctx context.Context, authenticated bool) {
	s.mutate(ctx, OpSetAuthenticated, func(st *State) {
		if authenticated {
			st.Session = session.NewAuthenticated(s.now(), s.ttl)
		} else {
			st.Session = session.Session{}
		}
	})
}

// SetRole assigns the role as-is
func (s *Store) SetRole(ctx context.Context, role wizard.Role) {
	s.mutate(ctx, OpSetRole, func(st *State) {
		st.Role = role
	})
}

// SetProfile assigns the profile as-is; ProfileNone clears it
func (s *Store) SetProfile(ctx context.Context, profile wizard.Profile) {
	s.mutate(ctx, OpSetProfile, func(st *State) {
		st.Profile = profile
	})
}

// SelectRole records a role/profile choice and restarts at the first step.
// Invalid combinations are rejected without changing state.
func (s *Store) SelectRole(ctx context.Context, role wizard.Role, profile wizard.Profile) error {
	if err := wizard.ValidateSelection(role, profile); err != nil {
		return err
	}
	s.mutate(ctx, OpSelectRole, func(st *State) {
		st.Role = role
		st.Profile = profile
		st.CurrentStepIndex = 0
	})
	return nil
}

// SetCurrentStep moves the step pointer. Bounds against the active flow are
// the navigation gate's concern; only negative indices are ignored here.
func (s *Store) SetCurrentStep(ctx context.Context, index int) {
	if index < 0 {
		s.logger.Debug("ignoring negative step index %d", index)
		return
	}
	s.mutate(ctx, OpSetCurrentStep, func(st *State) {
		st.CurrentStepIndex = index
	})
}

// UpdateStepData stores payload under key and leaves every other key untouched.
// A nil payload removes the entry.
func (s *Store) UpdateStepData(ctx context.Context, key wizard.StepKey, payload wizard.Payload) {
	if key == "" {
		s.logger.Warn("ignoring step data without a step key")
		return
	}
	s.mutateStep(ctx, OpUpdateStepData, key, func(st *State) {
		if payload == nil {
			delete(st.StepData, key)
			return
		}
		st.StepData[key] = payload
	})
}

// ResetWizard clears role, profile, step pointer and captured data but keeps the session
func (s *Store) ResetWizard(ctx context.Context) {
	s.mutate(ctx, OpResetWizard, func(st *State) {
		*st = st.withoutProgress()
	})
}

// SignOut clears everything, including the session
func (s *Store) SignOut(ctx context.Context) {
	s.mutate(ctx, OpSignOut, func(st *State) {
		*st = DefaultState()
	})
}

func (s *Store) mutate(ctx context.Context, op string, fn func(st *State)) {
	s.mutateStep(ctx, op, "", fn)
}

// mutateStep applies fn to a copy of the state and commits it when it changed.
// key names the step the mutation touched, if any.
func (s *Store) mutateStep(ctx context.Context, op string, key wizard.StepKey, fn func(st *State)) {
	// held across the write so records reach the repository in mutation order
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	fn(&next)
	if reflect.DeepEqual(next, s.state) {
		return
	}
	s.state = next

	s.persist(ctx, next)
	s.emit(ctx, op, key, next)
}

func (s *Store) persist(ctx context.Context, st State) {
	if s.repo == nil {
		return
	}
	data, err := encodeRecord(st, s.now())
	if err != nil {
		s.logger.Error("failed to encode wizard record: %v", err)
		return
	}
	if err := s.repo.Save(ctx, s.name, data); err != nil {
		s.logger.Warn("failed to persist wizard record %q: %v", s.name, err)
	}
}

func (s *Store) emit(ctx context.Context, op string, key wizard.StepKey, st State) {
	if s.sink == nil {
		return
	}
	ev := output.WizardEvent{
		Op:           op,
		At:           s.now().UTC(),
		Role:         st.Role.String(),
		Profile:      st.Profile.String(),
		StepIndex:    st.CurrentStepIndex,
		StepKey:      string(key),
		SessionValid: st.Session.IsValid(s.now()),
	}
	if err := s.sink.Record(ctx, ev); err != nil {
		s.logger.Warn("failed to record %s event: %v", op, err)
	}
}
