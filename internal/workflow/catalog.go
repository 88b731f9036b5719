package workflow

import (
	"github.com/themis-iprm/themis/internal/domain/model/wizard"
	"github.com/themis-iprm/themis/internal/validator/stepdata"
)

// Catalog maps a role (and, for implementers, a profile) to its flow.
// A Catalog is immutable once built; Resolve hands out copies.
type Catalog struct {
	author      wizard.Flow
	implementer map[wizard.Profile]wizard.Flow
}

// NewCatalog builds a catalog from explicit flows
func NewCatalog(author wizard.Flow, implementer map[wizard.Profile]wizard.Flow) *Catalog {
	c := &Catalog{
		author:      author.Clone(),
		implementer: make(map[wizard.Profile]wizard.Flow, len(implementer)),
	}
	for p, f := range implementer {
		c.implementer[p] = f.Clone()
	}
	return c
}

// Resolve returns the ordered steps for role and profile.
//
//   - author: the author flow, profile ignored
//   - implementer with a known profile: that profile's flow
//   - implementer without a profile, qa, or no role: empty
//
// The same inputs always yield an identical list.
func (c *Catalog) Resolve(role wizard.Role, profile wizard.Profile) wizard.Flow {
	switch role {
	case wizard.RoleAuthor:
		return c.author.Clone()
	case wizard.RoleImplementer:
		if f, ok := c.implementer[profile]; ok {
			return f.Clone()
		}
		return wizard.Flow{}
	default:
		// qa is reserved and has no flow yet
		return wizard.Flow{}
	}
}

// Profiles returns the implementer profiles that have a flow, in display order
func (c *Catalog) Profiles() []wizard.Profile {
	var out []wizard.Profile
	for _, p := range wizard.Profiles {
		if _, ok := c.implementer[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func step(key wizard.StepKey, title string, ui wizard.UIRef, schema wizard.Schema) wizard.StepDefinition {
	return wizard.StepDefinition{Key: key, Title: title, UIRef: ui, Schema: schema}
}

// DefaultCatalog returns the built-in flows
func DefaultCatalog() *Catalog {
	selectApp := step(wizard.StepSelectApp, "Select Application", wizard.UISelectApp,
		stepdata.MustGet(stepdata.SchemaSelectApp))
	iprmProfile := step(wizard.StepIPRMProfile, "Select IPRM Profile", wizard.UISelectProfile,
		stepdata.MustGet(stepdata.SchemaIPRMProfile))

	author := wizard.Flow{
		selectApp,
		iprmProfile,
		step(wizard.StepSystemQuestions, "Answer System Questions", wizard.UISystemQuestions,
			stepdata.MustGet(stepdata.SchemaSystemQuestions)),
		step(wizard.StepDesign, "Upload Design Document", wizard.UIDesignUploader, nil),
		step(wizard.StepGenerateCRS, "Generate CRS", wizard.UICRSGenerator, nil),
		step(wizard.StepReview, "Review & Submit", wizard.UISubmitReview, nil),
	}

	implementer := map[wizard.Profile]wizard.Flow{
		wizard.ProfileDeveloper: {
			selectApp,
			iprmProfile,
			step(wizard.StepSysReqs, "Generate Requirements", wizard.UIReqGenerator, nil),
			step(wizard.StepTrace, "Check Traceability", wizard.UITraceabilityCheck, nil),
		},
		wizard.ProfileTester: {
			selectApp,
			iprmProfile,
			step(wizard.StepScenarios, "Generate Test Scenarios", wizard.UITestScenarioGen, nil),
			step(wizard.StepTrace, "Check Traceability to Scripts", wizard.UITraceabilityCheck, nil),
		},
		wizard.ProfileSupport: {
			selectApp,
			iprmProfile,
			step(wizard.StepPeriodicOps, "Generate Ops List", wizard.UIOpsListForm, nil),
			step(wizard.StepTrace, "Check Traceability to Support Plan", wizard.UITraceabilityCheck, nil),
		},
	}

	return NewCatalog(author, implementer)
}
