package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/themis-iprm/themis/internal/domain/model/wizard"
	"github.com/themis-iprm/themis/internal/validator/stepdata"
)

// LoadCatalog loads and validates a flow catalog from a YAML file
func LoadCatalog(fs afero.Fs, path string, schemas *stepdata.Registry) (*Catalog, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	return ParseCatalog(data, schemas)
}

// ParseCatalog decodes catalog YAML with strict field checking and validates it
func ParseCatalog(data []byte, schemas *stepdata.Registry) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Fail on unknown fields
	var spec CatalogSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	if len(spec.Author) == 0 && len(spec.Implementer) == 0 {
		return nil, errors.New(`catalog: at least one of "author" or "implementer" is required`)
	}

	author, err := buildFlow("catalog.author", spec.Author, schemas)
	if err != nil {
		return nil, err
	}

	implementer := make(map[wizard.Profile]wizard.Flow, len(spec.Implementer))
	for name, steps := range spec.Implementer {
		profile := wizard.Profile(name)
		if !profile.IsValid() {
			return nil, fmt.Errorf(`catalog.implementer: unknown profile "%s" (allowed=%v)`, name, wizard.Profiles)
		}
		if len(steps) == 0 {
			return nil, fmt.Errorf(`catalog.implementer.%s: steps must be a non-empty array`, name)
		}
		flow, err := buildFlow("catalog.implementer."+name, steps, schemas)
		if err != nil {
			return nil, err
		}
		implementer[profile] = flow
	}

	return NewCatalog(author, implementer), nil
}

// buildFlow validates one list of step specs and converts it to a Flow
func buildFlow(prefix string, specs []StepSpec, schemas *stepdata.Registry) (wizard.Flow, error) {
	flow := make(wizard.Flow, 0, len(specs))
	seen := make(map[string]struct{})

	for i, s := range specs {
		idx := fmt.Sprintf("%s[%d]", prefix, i)

		key := strings.TrimSpace(s.Key)
		if key == "" {
			return nil, fmt.Errorf(`%s: "key" is required`, idx)
		}
		if _, exists := seen[key]; exists {
			return nil, fmt.Errorf(`%s: duplicate key "%s"`, idx, key)
		}
		seen[key] = struct{}{}

		if strings.TrimSpace(s.Title) == "" {
			return nil, fmt.Errorf(`%s: "title" is required`, idx)
		}
		if strings.TrimSpace(s.UI) == "" {
			return nil, fmt.Errorf(`%s: "ui" is required`, idx)
		}

		def := wizard.StepDefinition{
			Key:   wizard.StepKey(key),
			Title: s.Title,
			UIRef: wizard.UIRef(strings.TrimSpace(s.UI)),
		}

		if name := strings.TrimSpace(s.Schema); name != "" {
			if schemas == nil {
				return nil, fmt.Errorf(`%s: schema "%s" given but no schema registry is available`, idx, name)
			}
			schema, ok := schemas.Get(name)
			if !ok {
				return nil, fmt.Errorf(`%s: unknown schema "%s" (allowed=%v)`, idx, name, schemas.Names())
			}
			def.Schema = schema
		}

		flow = append(flow, def)
	}

	return flow, nil
}
