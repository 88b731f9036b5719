package stepdata

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/themis-iprm/themis/internal/domain/model/wizard"
)

// Names of the bundled step schemas
const (
	SchemaSelectApp       = "select_app"
	SchemaIPRMProfile     = "iprm_profile"
	SchemaSystemQuestions = "system_questions"
)

//go:embed schemas/*.json
var bundled embed.FS

// ValidationError lists every field that failed schema validation
type ValidationError struct {
	Schema string
	Fields []FieldError
}

// FieldError is a single failed rule
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("data for schema %q failed to validate: %s", e.Schema, strings.Join(parts, "; "))
}

// JSONSchema implements wizard.Schema with a compiled JSON schema
type JSONSchema struct {
	name   string
	schema *gojsonschema.Schema
}

// NewJSONSchema compiles a schema document
func NewJSONSchema(name string, doc []byte) (*JSONSchema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &JSONSchema{name: name, schema: s}, nil
}

func (j *JSONSchema) Name() string {
	return j.name
}

// Validate checks data against the schema. Payload values are validated
// through their plain map form.
func (j *JSONSchema) Validate(data any) error {
	if p, ok := data.(wizard.Payload); ok {
		data = p.Map()
	}

	result, err := j.schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("validate against %s: %w", j.name, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: j.name}
	for _, re := range result.Errors() {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   re.Field(),
			Message: re.Description(),
		})
	}
	return verr
}

// Registry resolves schema names used by flow definitions
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*JSONSchema
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*JSONSchema)}
}

// Register adds or replaces a schema
func (r *Registry) Register(s *JSONSchema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Name()] = s
}

// Get returns the schema registered under name
func (r *Registry) Get(name string) (*JSONSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns the registered names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry holding the bundled step schemas.
// The bundled documents are compiled once; a broken document is a build defect.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg := NewRegistry()
		for name, file := range map[string]string{
			SchemaSelectApp:       "schemas/select_app.json",
			SchemaIPRMProfile:     "schemas/iprm_profile.json",
			SchemaSystemQuestions: "schemas/system_questions.json",
		} {
			doc, err := bundled.ReadFile(file)
			if err != nil {
				panic(fmt.Sprintf("stepdata: read bundled schema %s: %v", file, err))
			}
			s, err := NewJSONSchema(name, doc)
			if err != nil {
				panic(fmt.Sprintf("stepdata: %v", err))
			}
			reg.Register(s)
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// MustGet returns a bundled schema by name
func MustGet(name string) *JSONSchema {
	s, ok := Default().Get(name)
	if !ok {
		panic(fmt.Sprintf("stepdata: schema %q is not registered", name))
	}
	return s
}
