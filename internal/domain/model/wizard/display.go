package wizard

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// acronyms are shown upper-case instead of title-cased
var acronyms = map[string]string{
	string(RoleQA): "QA",
}

func displayWord(s string) string {
	if a, ok := acronyms[s]; ok {
		return a
	}
	return titleCaser.String(s)
}

// DisplayName is the label shown for the signed-in user:
// "Implementer - Tester" for an implementer with a profile, the role name
// otherwise, and "User" before a role is chosen.
func DisplayName(role Role, profile Profile) string {
	if !role.IsSet() {
		return "User"
	}
	if role == RoleImplementer && profile.IsSet() {
		return displayWord(string(role)) + " - " + displayWord(string(profile))
	}
	return displayWord(string(role))
}
