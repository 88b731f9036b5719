package workflow

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/themis-iprm/themis/internal/application/flow"
	"github.com/themis-iprm/themis/internal/domain/model/wizard"
	"github.com/themis-iprm/themis/internal/validator/common"
	"github.com/themis-iprm/themis/internal/validator/stepdata"
	catalog "github.com/themis-iprm/themis/internal/workflow"
)

// ValidateFlowsFile checks a flow catalog file the way the wizard will use it.
// A missing file is a warning since the built-in flows apply then.
func ValidateFlowsFile(fs afero.Fs, path string, schemas *stepdata.Registry, uis flow.UIRegistry) (*common.ValidationResult, error) {
	result := common.NewValidationResult()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			result.AddFileResult(common.FileResult{
				File: path,
				Issues: []common.ValidationIssue{
					{Type: "warn", Message: "file not found, built-in flows are used"},
				},
			})
			return result, nil
		}
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	c, err := catalog.ParseCatalog(data, schemas)
	if err != nil {
		result.AddFileResult(common.FileResult{
			File:   path,
			Issues: []common.ValidationIssue{{Type: "error", Message: err.Error()}},
		})
		return result, nil
	}

	result.AddFileResult(common.FileResult{File: path, Issues: ValidateCatalog(c, uis)})
	return result, nil
}

// ValidateCatalog reports flows the wizard would show as not ready.
// QA has no flow by design and is not reported.
func ValidateCatalog(c *catalog.Catalog, uis flow.UIRegistry) []common.ValidationIssue {
	var issues []common.ValidationIssue

	check := func(field string, steps wizard.Flow) {
		if len(steps) == 0 {
			issues = append(issues, common.ValidationIssue{
				Type:    "warn",
				Field:   field,
				Message: "no steps, the wizard shows this selection as not ready",
			})
			return
		}
		for i, s := range steps {
			if uis == nil || !uis.Resolvable(s.UIRef) {
				issues = append(issues, common.ValidationIssue{
					Type:    "error",
					Field:   fmt.Sprintf("%s[%d].ui", field, i),
					Message: fmt.Sprintf("unknown ui %q for step %s", s.UIRef, s.Key),
				})
			}
		}
	}

	check("author", c.Resolve(wizard.RoleAuthor, wizard.ProfileNone))
	for _, p := range wizard.Profiles {
		check("implementer."+p.String(), c.Resolve(wizard.RoleImplementer, p))
	}
	return issues
}
