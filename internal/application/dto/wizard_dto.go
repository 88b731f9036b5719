package dto

import "time"

// SessionDTO describes the authentication window
type SessionDTO struct {
	Authenticated bool       `json:"authenticated"`
	Valid         bool       `json:"valid"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Remaining     string     `json:"remaining,omitempty"`
}

// StepDTO is one step of the active flow as shown in the sidebar
type StepDTO struct {
	Number  int    `json:"number"` // 1-based
	Key     string `json:"key"`
	Title   string `json:"title"`
	UI      string `json:"ui"`
	Schema  string `json:"schema,omitempty"`
	State   string `json:"state"` // completed, current, accessible, locked
	HasData bool   `json:"has_data"`
}

// WizardView is everything the wizard screen needs
type WizardView struct {
	Route         string     `json:"route"`
	DisplayName   string     `json:"display_name"`
	Role          string     `json:"role,omitempty"`
	Profile       string     `json:"profile,omitempty"`
	Session       SessionDTO `json:"session"`
	IsValidConfig bool       `json:"is_valid_config"`
	CurrentIndex  int        `json:"current_index"`
	TotalSteps    int        `json:"total_steps"`
	Progress      float64    `json:"progress_percent"`
	CanGoNext     bool       `json:"can_go_next"`
	CanGoPrevious bool       `json:"can_go_previous"`
	Current       *StepDTO   `json:"current,omitempty"`
	Steps         []StepDTO  `json:"steps"`
}

// FlowDTO is one catalog flow
type FlowDTO struct {
	Role    string    `json:"role"`
	Profile string    `json:"profile,omitempty"`
	Steps   []StepDTO `json:"steps"`
}

// StepDataDTO is the captured payload of one step
type StepDataDTO struct {
	Key  string         `json:"key"`
	Kind string         `json:"kind"`
	Data map[string]any `json:"data"`
}

// MoveResult reports the outcome of a navigation command
type MoveResult struct {
	Moved  bool       `json:"moved"`
	Notice string     `json:"notice,omitempty"`
	View   WizardView `json:"view"`
}
