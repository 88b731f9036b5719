package flow

import (
	"strings"
	"sync"

	"github.com/themis-iprm/themis/internal/domain/model/wizard"
)

// Source supplies the ordered steps for a role/profile
type Source interface {
	Resolve(role wizard.Role, profile wizard.Profile) wizard.Flow
}

// UIRegistry reports whether the presentation layer can mount a component
type UIRegistry interface {
	Resolvable(ref wizard.UIRef) bool
}

// UISet is a UIRegistry backed by a fixed set of references
type UISet map[wizard.UIRef]struct{}

// NewUISet builds a UISet from refs
func NewUISet(refs ...wizard.UIRef) UISet {
	s := make(UISet, len(refs))
	for _, r := range refs {
		s[r] = struct{}{}
	}
	return s
}

// DefaultUIs returns the components bundled with the CLI presenter
func DefaultUIs() UISet {
	return NewUISet(wizard.KnownUIRefs...)
}

func (s UISet) Resolvable(ref wizard.UIRef) bool {
	_, ok := s[ref]
	return ok
}

// Resolution is the active flow for the current role/profile
type Resolution struct {
	Steps         wizard.Flow
	IsValidConfig bool
	TotalSteps    int
}

type cacheKey struct {
	role    wizard.Role
	profile wizard.Profile
}

// Resolver derives the active flow and whether it is well-formed.
// Results are memoized per (role, profile); Resolve has no other side effects.
type Resolver struct {
	source Source
	uis    UIRegistry

	mu    sync.Mutex
	cache map[cacheKey]Resolution
}

// NewResolver creates a resolver over source, checking UI references against uis
func NewResolver(source Source, uis UIRegistry) *Resolver {
	return &Resolver{
		source: source,
		uis:    uis,
		cache:  make(map[cacheKey]Resolution),
	}
}

// Resolve returns the steps for role/profile together with the validity gate
// the presentation layer uses to choose between the wizard and a not-ready state.
func (r *Resolver) Resolve(role wizard.Role, profile wizard.Profile) Resolution {
	k := cacheKey{role: role, profile: profile}

	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.cache[k]; ok {
		return copyResolution(res)
	}

	var steps wizard.Flow
	if role.IsSet() {
		steps = r.source.Resolve(role, profile)
	}
	if steps == nil {
		steps = wizard.Flow{}
	}

	res := Resolution{
		Steps:         steps,
		IsValidConfig: r.isValid(steps),
		TotalSteps:    len(steps),
	}
	r.cache[k] = res
	return copyResolution(res)
}

func (r *Resolver) isValid(steps wizard.Flow) bool {
	if len(steps) == 0 {
		return false
	}
	for _, s := range steps {
		if strings.TrimSpace(string(s.Key)) == "" || strings.TrimSpace(s.Title) == "" {
			return false
		}
		if s.UIRef == "" || r.uis == nil || !r.uis.Resolvable(s.UIRef) {
			return false
		}
	}
	return true
}

func copyResolution(res Resolution) Resolution {
	res.Steps = res.Steps.Clone()
	return res
}
