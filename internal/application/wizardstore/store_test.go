package wizardstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themis-iprm/themis/internal/application/port/output"
	"github.com/themis-iprm/themis/internal/domain/model/wizard"
)

// memRepo is an in-memory StateRepository
type memRepo struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	saveErr error
	loadErr error
}

func newMemRepo() *memRepo {
	return &memRepo{data: map[string][]byte{}}
}

func (r *memRepo) Load(_ context.Context, name string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	b, ok := r.data[name]
	if !ok {
		return nil, output.ErrStateNotFound
	}
	return append([]byte(nil), b...), nil
}

func (r *memRepo) Save(_ context.Context, name string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.data[name] = append([]byte(nil), data...)
	return nil
}

func (r *memRepo) persisted(t *testing.T, name string) map[string]any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.data[name]
	require.True(t, ok, "record %q was never saved", name)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

type recordingSink struct {
	events []output.WizardEvent
}

func (s *recordingSink) Record(_ context.Context, ev output.WizardEvent) error {
	s.events = append(s.events, ev)
	return nil
}

type captureLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *captureLogger) Debug(string, ...interface{}) {}
func (l *captureLogger) Info(string, ...interface{})  {}
func (l *captureLogger) Warn(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}
func (l *captureLogger) Error(format string, args ...interface{}) { l.Warn(format, args...) }

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}
}

func openStore(t *testing.T, repo *memRepo, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(&captureLogger{})}, opts...)
	return Open(context.Background(), repo, opts...)
}

func TestOpen_DefaultsWhenNothingPersisted(t *testing.T) {
	s := openStore(t, newMemRepo())

	st := s.Snapshot()
	assert.Equal(t, wizard.RoleNone, st.Role)
	assert.Equal(t, wizard.ProfileNone, st.Profile)
	assert.Equal(t, 0, st.CurrentStepIndex)
	assert.Empty(t, st.StepData)
	assert.False(t, st.Session.Authenticated())
	assert.False(t, s.IsSessionValid())
}

func TestOpen_CorruptedRecordFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{name: "unknown role", blob: `{"role":"not-a-role"}`},
		{name: "not json", blob: `{{{`},
		{name: "future version", blob: `{"version":9,"state":{"role":null,"profile":null,"currentStepIndex":0,"stepData":{},"isAuthenticated":false,"sessionExpiry":0}}`},
		{name: "role outside enumeration inside state", blob: `{"version":1,"state":{"role":"not-a-role","profile":null,"currentStepIndex":0,"stepData":{},"isAuthenticated":false,"sessionExpiry":0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			repo.data[DefaultRecordName] = []byte(tt.blob)
			logger := &captureLogger{}

			s := Open(context.Background(), repo, WithLogger(logger))

			assert.Equal(t, DefaultState(), s.Snapshot())
			assert.NotEmpty(t, logger.warns)
			// the bad record stays on disk until the next mutation
			assert.Equal(t, 0, repo.saves)
			assert.Equal(t, tt.blob, string(repo.data[DefaultRecordName]))
		})
	}
}

func TestOpen_ReadFailureFallsBackToDefaults(t *testing.T) {
	repo := newMemRepo()
	repo.loadErr = errors.New("disk on fire")
	logger := &captureLogger{}

	s := Open(context.Background(), repo, WithLogger(logger))

	assert.Equal(t, DefaultState(), s.Snapshot())
	require.Len(t, logger.warns, 1)
	assert.Contains(t, logger.warns[0], "disk on fire")
}

func TestStore_TesterFlowSurvivesReload(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	clock := newClock()

	s := openStore(t, repo, WithClock(clock.Now))
	s.SetAuthenticated(ctx, true)
	require.NoError(t, s.SelectRole(ctx, wizard.RoleImplementer, wizard.ProfileTester))
	s.UpdateStepData(ctx, wizard.StepSelectApp, wizard.SelectAppData{ApplicationID: "app-1", ApplicationName: "Customer Portal"})
	s.SetCurrentStep(ctx, 1)

	reloaded := openStore(t, repo, WithClock(clock.Now))
	st := reloaded.Snapshot()

	assert.Equal(t, wizard.RoleImplementer, st.Role)
	assert.Equal(t, wizard.ProfileTester, st.Profile)
	assert.Equal(t, 1, st.CurrentStepIndex)
	assert.Equal(t, wizard.SelectAppData{ApplicationID: "app-1", ApplicationName: "Customer Portal"}, st.StepData[wizard.StepSelectApp])
	assert.True(t, reloaded.IsSessionValid())
	assert.True(t, st.Session.ExpiresAt().Equal(clock.t.Add(24*time.Hour)))
}

func TestStore_SignOutClearsEverything(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := openStore(t, repo, WithClock(newClock().Now))

	s.SetRole(ctx, wizard.RoleAuthor)
	s.SetCurrentStep(ctx, 2)
	s.SetAuthenticated(ctx, true)
	require.True(t, s.IsSessionValid())

	s.SignOut(ctx)

	assert.Equal(t, DefaultState(), s.Snapshot())
	assert.False(t, s.IsSessionValid())

	rec := repo.persisted(t, DefaultRecordName)
	state := rec["state"].(map[string]any)
	assert.Nil(t, state["role"])
	assert.Nil(t, state["profile"])
	assert.Equal(t, float64(0), state["currentStepIndex"])
	assert.Equal(t, false, state["isAuthenticated"])
	assert.Equal(t, float64(0), state["sessionExpiry"])
	assert.Equal(t, map[string]any{}, state["stepData"])
}

func TestStore_ResetWizardKeepsSession(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := openStore(t, newMemRepo(), WithClock(clock.Now))

	s.SetAuthenticated(ctx, true)
	before := s.Snapshot().Session
	require.NoError(t, s.SelectRole(ctx, wizard.RoleAuthor, wizard.ProfileNone))
	s.SetCurrentStep(ctx, 3)
	s.UpdateStepData(ctx, wizard.StepDesign, wizard.GenericData{Fields: map[string]any{"notes": "draft"}})

	clock.Advance(time.Hour)
	s.ResetWizard(ctx)

	st := s.Snapshot()
	assert.Equal(t, wizard.RoleNone, st.Role)
	assert.Equal(t, wizard.ProfileNone, st.Profile)
	assert.Equal(t, 0, st.CurrentStepIndex)
	assert.Empty(t, st.StepData)
	assert.Equal(t, before, st.Session)
	assert.True(t, s.IsSessionValid())
}

func TestStore_UpdateStepDataMerges(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newMemRepo())

	app := wizard.SelectAppData{ApplicationID: "app-1", ApplicationName: "Customer Portal"}
	profile := wizard.IPRMProfileData{IPRMProfile: "standard", RiskLevel: wizard.RiskMedium}

	s.UpdateStepData(ctx, wizard.StepSelectApp, app)
	s.UpdateStepData(ctx, wizard.StepIPRMProfile, profile)

	st := s.Snapshot()
	assert.Equal(t, app, st.StepData[wizard.StepSelectApp])
	assert.Equal(t, profile, st.StepData[wizard.StepIPRMProfile])

	replaced := wizard.SelectAppData{ApplicationID: "app-2", ApplicationName: "Billing"}
	s.UpdateStepData(ctx, wizard.StepSelectApp, replaced)

	st = s.Snapshot()
	assert.Equal(t, replaced, st.StepData[wizard.StepSelectApp])
	assert.Equal(t, profile, st.StepData[wizard.StepIPRMProfile])

	s.UpdateStepData(ctx, wizard.StepSelectApp, nil)
	st = s.Snapshot()
	assert.False(t, st.StepData.Has(wizard.StepSelectApp))
	assert.True(t, st.StepData.Has(wizard.StepIPRMProfile))
}

func TestStore_SessionExpires(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := openStore(t, newMemRepo(), WithClock(clock.Now))

	s.SetAuthenticated(ctx, true)
	assert.True(t, s.IsSessionValid())

	clock.Advance(24*time.Hour - time.Millisecond)
	assert.True(t, s.IsSessionValid())

	clock.Advance(time.Millisecond)
	assert.False(t, s.IsSessionValid())
	// checking expiry never mutates
	assert.True(t, s.IsAuthenticated())
}

func TestStore_SetAuthenticatedRestartsWindow(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := openStore(t, newMemRepo(), WithClock(clock.Now))

	s.SetAuthenticated(ctx, true)
	clock.Advance(23 * time.Hour)
	s.SetAuthenticated(ctx, true)
	clock.Advance(2 * time.Hour)
	assert.True(t, s.IsSessionValid())

	s.SetAuthenticated(ctx, false)
	st := s.Snapshot()
	assert.False(t, st.Session.Authenticated())
	assert.True(t, st.Session.ExpiresAt().IsZero())
}

func TestStore_SelectRole(t *testing.T) {
	ctx := context.Background()

	t.Run("valid selection restarts at first step and keeps data", func(t *testing.T) {
		s := openStore(t, newMemRepo())
		s.UpdateStepData(ctx, wizard.StepSelectApp, wizard.SelectAppData{ApplicationID: "app-1"})
		s.SetCurrentStep(ctx, 4)

		require.NoError(t, s.SelectRole(ctx, wizard.RoleImplementer, wizard.ProfileDeveloper))

		st := s.Snapshot()
		assert.Equal(t, wizard.RoleImplementer, st.Role)
		assert.Equal(t, wizard.ProfileDeveloper, st.Profile)
		assert.Equal(t, 0, st.CurrentStepIndex)
		assert.True(t, st.StepData.Has(wizard.StepSelectApp))
	})

	t.Run("invalid selection is rejected without change", func(t *testing.T) {
		s := openStore(t, newMemRepo())
		s.SetCurrentStep(ctx, 2)

		err := s.SelectRole(ctx, wizard.RoleAuthor, wizard.ProfileTester)
		require.Error(t, err)
		assert.ErrorIs(t, err, wizard.ErrInvalidSelection)

		err = s.SelectRole(ctx, wizard.RoleImplementer, wizard.ProfileNone)
		require.Error(t, err)

		st := s.Snapshot()
		assert.Equal(t, wizard.RoleNone, st.Role)
		assert.Equal(t, 2, st.CurrentStepIndex)
	})
}

func TestStore_NoOpMutationsAreNotPersisted(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	sink := &recordingSink{}
	s := openStore(t, repo, WithEventSink(sink))

	s.SetRole(ctx, wizard.RoleAuthor)
	s.SetRole(ctx, wizard.RoleAuthor)
	s.SetCurrentStep(ctx, 0)
	s.SetCurrentStep(ctx, -3)
	s.UpdateStepData(ctx, "", wizard.GenericData{})
	s.ResetWizard(ctx)
	s.ResetWizard(ctx)

	assert.Equal(t, 2, repo.saves)
	require.Len(t, sink.events, 2)
	assert.Equal(t, OpSetRole, sink.events[0].Op)
	assert.Equal(t, "author", sink.events[0].Role)
	assert.Equal(t, OpResetWizard, sink.events[1].Op)
	assert.Equal(t, "", sink.events[1].Role)
}

func TestStore_SaveFailureIsNotSurfaced(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	repo.saveErr = errors.New("read-only filesystem")
	logger := &captureLogger{}

	s := Open(ctx, repo, WithLogger(logger))
	s.SetRole(ctx, wizard.RoleAuthor)

	assert.Equal(t, wizard.RoleAuthor, s.Snapshot().Role)
	require.Len(t, logger.warns, 1)
	assert.Contains(t, logger.warns[0], "read-only filesystem")
}

func TestStore_CustomRecordName(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()

	s := openStore(t, repo, WithRecordName("other-wizard"))
	s.SetRole(ctx, wizard.RoleAuthor)

	_, ok := repo.data["other-wizard"]
	assert.True(t, ok)
	_, ok = repo.data[DefaultRecordName]
	assert.False(t, ok)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newMemRepo())
	s.UpdateStepData(ctx, wizard.StepSelectApp, wizard.SelectAppData{ApplicationID: "app-1"})

	snap := s.Snapshot()
	delete(snap.StepData, wizard.StepSelectApp)

	assert.True(t, s.Snapshot().StepData.Has(wizard.StepSelectApp))
}

func TestStore_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newMemRepo())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := wizard.StepKey(fmt.Sprintf("step%d", i))
			s.UpdateStepData(ctx, key, wizard.GenericData{Fields: map[string]any{"n": i}})
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Snapshot().StepData, 20)
}
