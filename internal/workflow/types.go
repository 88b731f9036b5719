package workflow

import (
	"gopkg.in/yaml.v3"

	"github.com/themis-iprm/themis/internal/domain/model/wizard"
)

// StepSpec is one step entry in a catalog file
type StepSpec struct {
	Key    string `yaml:"key"`
	Title  string `yaml:"title"`
	UI     string `yaml:"ui"`
	Schema string `yaml:"schema,omitempty"`
}

// CatalogSpec is the on-disk form of a flow catalog.
// The author flow is a single list; implementer flows are keyed by profile.
type CatalogSpec struct {
	Author      []StepSpec            `yaml:"author"`
	Implementer map[string][]StepSpec `yaml:"implementer"`
}

// Spec converts the catalog back into its on-disk form
func (c *Catalog) Spec() CatalogSpec {
	spec := CatalogSpec{
		Author:      toStepSpecs(c.author),
		Implementer: make(map[string][]StepSpec, len(c.implementer)),
	}
	for p, f := range c.implementer {
		spec.Implementer[string(p)] = toStepSpecs(f)
	}
	return spec
}

func toStepSpecs(f wizard.Flow) []StepSpec {
	out := make([]StepSpec, len(f))
	for i, s := range f {
		out[i] = StepSpec{Key: string(s.Key), Title: s.Title, UI: string(s.UIRef)}
		if s.HasSchema() {
			out[i].Schema = s.Schema.Name()
		}
	}
	return out
}

// MarshalCatalog renders c as a YAML catalog that ParseCatalog accepts
func MarshalCatalog(c *Catalog) ([]byte, error) {
	return yaml.Marshal(c.Spec())
}
