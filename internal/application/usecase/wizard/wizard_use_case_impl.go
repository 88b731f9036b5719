package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/themis-iprm/themis/internal/application/dto"
	"github.com/themis-iprm/themis/internal/application/flow"
	"github.com/themis-iprm/themis/internal/application/navigation"
	"github.com/themis-iprm/themis/internal/application/routing"
	"github.com/themis-iprm/themis/internal/application/wizardstore"
	domainwizard "github.com/themis-iprm/themis/internal/domain/model/wizard"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a valid session
	ErrNotAuthenticated = errors.New("not signed in or session expired")
	// ErrNoRole is returned when an operation needs a selected role
	ErrNoRole = errors.New("no role selected")
	// ErrFlowNotReady is returned when the selected role/profile has no usable flow
	ErrFlowNotReady = errors.New("no usable flow for the selected role")
)

// WizardUseCaseImpl drives the wizard for one CLI run.
// Every entry point runs the routing guard first, so an expired session is
// reset before any state is read.
type WizardUseCaseImpl struct {
	store    *wizardstore.Store
	resolver *flow.Resolver
	now      func() time.Time
}

// NewWizardUseCaseImpl creates a new wizard use case implementation
func NewWizardUseCaseImpl(store *wizardstore.Store, resolver *flow.Resolver, now func() time.Time) *WizardUseCaseImpl {
	if now == nil {
		now = time.Now
	}
	return &WizardUseCaseImpl{store: store, resolver: resolver, now: now}
}

// Status returns the current view after guarding the session
func (uc *WizardUseCaseImpl) Status(ctx context.Context) dto.WizardView {
	route := routing.Guard(ctx, uc.store)
	return uc.view(route)
}

// Login starts a fresh session window
func (uc *WizardUseCaseImpl) Login(ctx context.Context) dto.WizardView {
	uc.store.SetAuthenticated(ctx, true)
	return uc.Status(ctx)
}

// SignOut clears the whole record, session included
func (uc *WizardUseCaseImpl) SignOut(ctx context.Context) dto.WizardView {
	uc.store.SignOut(ctx)
	return uc.view(routing.RouteAuth)
}

// SelectRole parses and records a role/profile choice and restarts at step 1
func (uc *WizardUseCaseImpl) SelectRole(ctx context.Context, roleIn, profileIn string) (dto.WizardView, error) {
	if routing.Guard(ctx, uc.store) == routing.RouteAuth {
		return uc.view(routing.RouteAuth), ErrNotAuthenticated
	}

	role, err := domainwizard.ParseRole(roleIn)
	if err != nil {
		return dto.WizardView{}, err
	}
	profile, err := domainwizard.ParseProfile(profileIn)
	if err != nil {
		return dto.WizardView{}, err
	}
	if err := uc.store.SelectRole(ctx, role, profile); err != nil {
		return dto.WizardView{}, err
	}
	return uc.Status(ctx), nil
}

// Reset clears role, profile, position and captured data but keeps the session
func (uc *WizardUseCaseImpl) Reset(ctx context.Context) (dto.WizardView, error) {
	if routing.Guard(ctx, uc.store) == routing.RouteAuth {
		return uc.view(routing.RouteAuth), ErrNotAuthenticated
	}
	uc.store.ResetWizard(ctx)
	return uc.Status(ctx), nil
}

// Next advances one step
func (uc *WizardUseCaseImpl) Next(ctx context.Context) (dto.MoveResult, error) {
	return uc.move(ctx, func(g navigation.Gate) bool {
		return navigation.Next(ctx, g, uc.store)
	}, "already at the last step")
}

// Previous goes back one step
func (uc *WizardUseCaseImpl) Previous(ctx context.Context) (dto.MoveResult, error) {
	return uc.move(ctx, func(g navigation.Gate) bool {
		return navigation.Previous(ctx, g, uc.store)
	}, "already at the first step")
}

// JumpTo moves to the 1-based step number
func (uc *WizardUseCaseImpl) JumpTo(ctx context.Context, number int) (dto.MoveResult, error) {
	return uc.move(ctx, func(g navigation.Gate) bool {
		return navigation.JumpTo(ctx, g, uc.store, number-1)
	}, fmt.Sprintf("step %d", number))
}

// move applies cmd through the gate. A refused move is not an error: the
// position is left as is and the result carries a notice instead.
func (uc *WizardUseCaseImpl) move(ctx context.Context, cmd func(navigation.Gate) bool, rejected string) (dto.MoveResult, error) {
	st, res, err := uc.requireWizard(ctx)
	if err != nil {
		return dto.MoveResult{}, err
	}

	g := navigation.NewGate(res.Steps, st.CurrentStepIndex, st.StepData)
	moved := cmd(g)
	result := dto.MoveResult{Moved: moved, View: uc.view(routing.RouteWizard)}
	if !moved {
		result.Notice = "step is not accessible: " + rejected
	}
	return result, nil
}

// SetStepData validates raw against the step's schema and stores it.
// Only steps of the active flow accept data.
func (uc *WizardUseCaseImpl) SetStepData(ctx context.Context, keyIn string, raw any) (dto.StepDataDTO, error) {
	_, res, err := uc.requireWizard(ctx)
	if err != nil {
		return dto.StepDataDTO{}, err
	}

	key, err := domainwizard.ParseStepKey(keyIn)
	if err != nil {
		return dto.StepDataDTO{}, err
	}
	idx := res.Steps.IndexOf(key)
	if idx < 0 {
		return dto.StepDataDTO{}, fmt.Errorf("%w: %q is not part of the active flow", domainwizard.ErrUnknownStep, key)
	}

	if def := res.Steps[idx]; def.HasSchema() {
		if err := def.Schema.Validate(raw); err != nil {
			return dto.StepDataDTO{}, err
		}
	}

	payload, err := domainwizard.DecodePayload(key, raw)
	if err != nil {
		return dto.StepDataDTO{}, err
	}
	uc.store.UpdateStepData(ctx, key, payload)
	return stepDataToDTO(key, payload), nil
}

// StepData returns captured data for key, or for every step when key is empty
func (uc *WizardUseCaseImpl) StepData(ctx context.Context, keyIn string) ([]dto.StepDataDTO, error) {
	if routing.Guard(ctx, uc.store) == routing.RouteAuth {
		return nil, ErrNotAuthenticated
	}
	st := uc.store.Snapshot()

	if keyIn == "" {
		out := make([]dto.StepDataDTO, 0, len(st.StepData))
		for _, k := range st.StepData.Keys() {
			out = append(out, stepDataToDTO(k, st.StepData[k]))
		}
		return out, nil
	}

	key, err := domainwizard.ParseStepKey(keyIn)
	if err != nil {
		return nil, err
	}
	if !st.StepData.Has(key) {
		return nil, fmt.Errorf("%w: no data captured for %q", domainwizard.ErrUnknownStep, key)
	}
	return []dto.StepDataDTO{stepDataToDTO(key, st.StepData[key])}, nil
}

// ListFlows returns the catalog flows, optionally narrowed to one role/profile.
// It needs no session.
func (uc *WizardUseCaseImpl) ListFlows(roleIn, profileIn string) ([]dto.FlowDTO, error) {
	role, err := domainwizard.ParseRole(roleIn)
	if err != nil {
		return nil, err
	}
	profile, err := domainwizard.ParseProfile(profileIn)
	if err != nil {
		return nil, err
	}
	if profile.IsSet() && role != domainwizard.RoleImplementer {
		if role.IsSet() {
			return nil, fmt.Errorf("%w: profile %q is only allowed for %s", domainwizard.ErrInvalidSelection, profile, domainwizard.RoleImplementer)
		}
		role = domainwizard.RoleImplementer
	}

	type combo struct {
		role    domainwizard.Role
		profile domainwizard.Profile
	}
	var combos []combo
	for _, r := range domainwizard.Roles {
		if role.IsSet() && r != role {
			continue
		}
		if r != domainwizard.RoleImplementer {
			combos = append(combos, combo{role: r})
			continue
		}
		for _, p := range domainwizard.Profiles {
			if profile.IsSet() && p != profile {
				continue
			}
			combos = append(combos, combo{role: r, profile: p})
		}
	}

	out := make([]dto.FlowDTO, 0, len(combos))
	for _, c := range combos {
		res := uc.resolver.Resolve(c.role, c.profile)
		steps := make([]dto.StepDTO, len(res.Steps))
		for i, s := range res.Steps {
			steps[i] = stepToDTO(i, s, "", false)
		}
		out = append(out, dto.FlowDTO{Role: c.role.String(), Profile: c.profile.String(), Steps: steps})
	}
	return out, nil
}

// requireWizard guards the session and returns the state and its valid flow
func (uc *WizardUseCaseImpl) requireWizard(ctx context.Context) (wizardstore.State, flow.Resolution, error) {
	switch routing.Guard(ctx, uc.store) {
	case routing.RouteAuth:
		return wizardstore.State{}, flow.Resolution{}, ErrNotAuthenticated
	case routing.RouteSelectRole:
		return wizardstore.State{}, flow.Resolution{}, ErrNoRole
	}

	st := uc.store.Snapshot()
	res := uc.resolver.Resolve(st.Role, st.Profile)
	if !res.IsValidConfig {
		return st, res, fmt.Errorf("%w: %s", ErrFlowNotReady, domainwizard.DisplayName(st.Role, st.Profile))
	}
	return st, res, nil
}

// view assembles the screen state without touching the store's mutators
func (uc *WizardUseCaseImpl) view(route routing.Route) dto.WizardView {
	st := uc.store.Snapshot()
	now := uc.now()

	v := dto.WizardView{
		Route:        string(route),
		DisplayName:  domainwizard.DisplayName(st.Role, st.Profile),
		Role:         st.Role.String(),
		Profile:      st.Profile.String(),
		CurrentIndex: st.CurrentStepIndex,
		Steps:        []dto.StepDTO{},
		Session: dto.SessionDTO{
			Authenticated: st.Session.Authenticated(),
			Valid:         st.Session.IsValid(now),
		},
	}
	if st.Session.Authenticated() {
		exp := st.Session.ExpiresAt()
		v.Session.ExpiresAt = &exp
		if rem := st.Session.RemainingTime(now); rem > 0 {
			v.Session.Remaining = rem.Round(time.Minute).String()
		}
	}

	if !st.Role.IsSet() {
		return v
	}

	res := uc.resolver.Resolve(st.Role, st.Profile)
	g := navigation.NewGate(res.Steps, st.CurrentStepIndex, st.StepData)

	v.IsValidConfig = res.IsValidConfig
	v.TotalSteps = res.TotalSteps
	v.Progress = g.ProgressPercent()
	v.CanGoNext = g.CanGoNext()
	v.CanGoPrevious = g.CanGoPrevious()
	for i, s := range res.Steps {
		v.Steps = append(v.Steps, stepToDTO(i, s, string(g.State(i)), st.StepData.Has(s.Key)))
	}
	if cur, ok := g.CurrentStep(); ok {
		d := stepToDTO(st.CurrentStepIndex, cur, string(navigation.StateCurrent), st.StepData.Has(cur.Key))
		v.Current = &d
	}
	return v
}

func stepToDTO(i int, s domainwizard.StepDefinition, state string, hasData bool) dto.StepDTO {
	d := dto.StepDTO{
		Number:  i + 1,
		Key:     s.Key.String(),
		Title:   s.Title,
		UI:      string(s.UIRef),
		State:   state,
		HasData: hasData,
	}
	if s.HasSchema() {
		d.Schema = s.Schema.Name()
	}
	return d
}

func stepDataToDTO(key domainwizard.StepKey, p domainwizard.Payload) dto.StepDataDTO {
	return dto.StepDataDTO{Key: key.String(), Kind: p.Kind(), Data: p.Map()}
}
