package wizard

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrUnknownRole is returned when a role string is not one of the known roles
	ErrUnknownRole = errors.New("unknown role")
	// ErrUnknownProfile is returned when a profile string is not one of the known profiles
	ErrUnknownProfile = errors.New("unknown profile")
	// ErrInvalidSelection is returned when a role/profile combination breaks the profile invariant
	ErrInvalidSelection = errors.New("invalid role/profile selection")
)

// Role represents the user role that drives which flow is shown.
// The zero value means no role has been selected.
type Role string

const (
	RoleNone        Role = ""
	RoleAuthor      Role = "author"
	RoleImplementer Role = "implementer"
	RoleQA          Role = "qa"
)

// Roles lists every known role in display order
var Roles = []Role{RoleAuthor, RoleImplementer, RoleQA}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is a known role. RoleNone is not valid.
func (r Role) IsValid() bool {
	switch r {
	case RoleAuthor, RoleImplementer, RoleQA:
		return true
	default:
		return false
	}
}

// IsSet reports whether a role has been selected
func (r Role) IsSet() bool {
	return r != RoleNone
}

// Profile is the implementer sub-profile. The zero value means absent.
type Profile string

const (
	ProfileNone      Profile = ""
	ProfileDeveloper Profile = "developer"
	ProfileTester    Profile = "tester"
	ProfileSupport   Profile = "support"
)

// Profiles lists every known implementer profile in display order
var Profiles = []Profile{ProfileDeveloper, ProfileTester, ProfileSupport}

// String returns the string representation
func (p Profile) String() string {
	return string(p)
}

// IsSet reports whether a profile has been selected
func (p Profile) IsSet() bool {
	return p != ProfileNone
}

// IsValid reports whether p is a known profile. ProfileNone is not valid.
func (p Profile) IsValid() bool {
	switch p {
	case ProfileDeveloper, ProfileTester, ProfileSupport:
		return true
	default:
		return false
	}
}

// ParseRole converts user input into a Role.
// Input is NFKC-normalized, trimmed and lower-cased; an empty string yields RoleNone.
func ParseRole(s string) (Role, error) {
	v := normalizeToken(s)
	if v == "" {
		return RoleNone, nil
	}
	r := Role(v)
	if !r.IsValid() {
		return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// ParseProfile converts user input into a Profile.
// An empty string yields ProfileNone.
func ParseProfile(s string) (Profile, error) {
	v := normalizeToken(s)
	if v == "" {
		return ProfileNone, nil
	}
	p := Profile(v)
	if !p.IsValid() {
		return ProfileNone, fmt.Errorf("%w: %q", ErrUnknownProfile, s)
	}
	return p, nil
}

// ValidateSelection checks the profile invariant:
// implementer needs a known profile, every other role must not carry one.
func ValidateSelection(role Role, profile Profile) error {
	if !role.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSelection, ErrUnknownRole, role)
	}
	if role == RoleImplementer {
		if !profile.IsValid() {
			return fmt.Errorf("%w: implementer requires a profile (one of %v)", ErrInvalidSelection, Profiles)
		}
		return nil
	}
	if profile != ProfileNone {
		return fmt.Errorf("%w: profile %q is only allowed for %s", ErrInvalidSelection, profile, RoleImplementer)
	}
	return nil
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
