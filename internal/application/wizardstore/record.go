package wizardstore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/themis-iprm/themis/internal/domain/model/session"
	"github.com/themis-iprm/themis/internal/domain/model/wizard"
	"github.com/themis-iprm/themis/internal/validator/common"
	statevalidator "github.com/themis-iprm/themis/internal/validator/state"
)

// DefaultRecordName is the key the wizard record is stored under
const DefaultRecordName = "themis-wizard-state"

// record is the persisted, versioned form of State
type record struct {
	Version int         `json:"version"`
	State   recordState `json:"state"`
	Meta    recordMeta  `json:"meta"`
}

type recordState struct {
	Role             *string                   `json:"role"`
	Profile          *string                   `json:"profile"`
	CurrentStepIndex int                       `json:"currentStepIndex"`
	StepData         map[string]map[string]any `json:"stepData"`
	IsAuthenticated  bool                      `json:"isAuthenticated"`
	SessionExpiry    int64                     `json:"sessionExpiry"` // Unix ms, 0 when signed out
}

type recordMeta struct {
	UpdatedAt string `json:"updated_at"`
}

// loadedState mirrors recordState but keeps payloads raw until they are decoded by step key
type loadedState struct {
	Role             *string        `json:"role"`
	Profile          *string        `json:"profile"`
	CurrentStepIndex int            `json:"currentStepIndex"`
	StepData         map[string]any `json:"stepData"`
	IsAuthenticated  bool           `json:"isAuthenticated"`
	SessionExpiry    int64          `json:"sessionExpiry"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// encodeRecord serializes s into the persisted record format
func encodeRecord(s State, now time.Time) ([]byte, error) {
	data := make(map[string]map[string]any, len(s.StepData))
	for k, p := range s.StepData {
		if p == nil {
			continue
		}
		data[string(k)] = p.Map()
	}

	rec := record{
		Version: statevalidator.RecordVersion,
		State: recordState{
			Role:             optional(string(s.Role)),
			Profile:          optional(string(s.Profile)),
			CurrentStepIndex: s.CurrentStepIndex,
			StepData:         data,
			IsAuthenticated:  s.Session.Authenticated(),
			SessionExpiry:    s.Session.ExpiresAtMillis(),
		},
		Meta: recordMeta{UpdatedAt: now.UTC().Format(time.RFC3339Nano)},
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wizard record: %w", err)
	}
	return b, nil
}

// decodeRecord parses, validates and converts a persisted record.
// Any problem is reported as an error; the caller substitutes defaults.
func decodeRecord(data []byte) (State, error) {
	issues := statevalidator.ValidateRecord(data)
	if common.HasErrors(issues) {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Type != "error" {
				continue
			}
			if issue.Field != "" {
				msgs = append(msgs, issue.Field+": "+issue.Message)
			} else {
				msgs = append(msgs, issue.Message)
			}
		}
		return State{}, fmt.Errorf("invalid wizard record: %s", strings.Join(msgs, "; "))
	}

	var raw struct {
		State loadedState `json:"state"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, fmt.Errorf("invalid wizard record: %w", err)
	}

	st := DefaultState()
	st.Role = wizard.Role(deref(raw.State.Role))
	st.Profile = wizard.Profile(deref(raw.State.Profile))
	st.CurrentStepIndex = raw.State.CurrentStepIndex
	st.Session = session.Reconstruct(raw.State.IsAuthenticated, session.FromMillis(raw.State.SessionExpiry))

	for k, v := range raw.State.StepData {
		p, err := wizard.DecodePayload(wizard.StepKey(k), v)
		if err != nil {
			return State{}, fmt.Errorf("invalid wizard record: %w", err)
		}
		st.StepData[wizard.StepKey(k)] = p
	}

	return st, nil
}
