// Package schema generates the JSON Schema of pilot's metadata document and
// validates documents against it.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	ijsonschema "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"

	pilerrors "github.com/grovetools/pilot/errors"
	"github.com/grovetools/pilot/pkg/store"
)

const resourceName = "pilot.schema.json"

// document mirrors store.Document with the typed settings view.
type document struct {
	Settings store.Settings               `json:"settings,omitempty" jsonschema:"description=Tool settings"`
	Sessions map[string]store.SessionMeta `json:"sessions,omitempty" jsonschema:"description=Session metadata keyed by qualified tmux session name"`
	Projects map[string]store.ProjectMeta `json:"projects,omitempty" jsonschema:"description=Project naming overlay keyed by absolute path"`
}

// Generate returns the JSON Schema of the metadata document. Unknown keys
// are allowed everywhere so records written by other versions validate.
func Generate() ([]byte, error) {
	r := &ijsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		DoNotReference:            true,
		Anonymous:                 true,
	}

	s := r.Reflect(&document{})
	s.Title = "pilot metadata"
	s.Description = "Sessions, project names and settings persisted by pilot."
	s.Version = "http://json-schema.org/draft-07/schema#"
	s.Required = nil

	return json.MarshalIndent(s, "", "  ")
}

// Validator validates documents against the generated schema.
type Validator struct {
	schema *jsonschema.Schema
}

var (
	defaultValidator     *Validator
	defaultValidatorErr  error
	defaultValidatorOnce sync.Once
)

// NewValidator compiles the generated schema once per process.
func NewValidator() (*Validator, error) {
	defaultValidatorOnce.Do(func() {
		data, err := Generate()
		if err != nil {
			defaultValidatorErr = fmt.Errorf("failed to generate schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(resourceName, bytes.NewReader(data)); err != nil {
			defaultValidatorErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiled, err := compiler.Compile(resourceName)
		if err != nil {
			defaultValidatorErr = fmt.Errorf("failed to compile schema: %w", err)
			return
		}
		defaultValidator = &Validator{schema: compiled}
	})
	return defaultValidator, defaultValidatorErr
}

// ValidateJSON validates raw document bytes.
func (v *Validator) ValidateJSON(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return pilerrors.Wrap(err, pilerrors.ErrCodeConfigInvalid, "document is not valid JSON")
	}
	return v.validate(doc)
}

// Validate validates any value that marshals to a document.
func (v *Validator) Validate(value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal document for validation: %w", err)
	}
	return v.ValidateJSON(data)
}

func (v *Validator) validate(doc interface{}) error {
	if err := v.schema.Validate(doc); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			var messages []string
			collectErrors(validationErr, &messages)
			return pilerrors.New(pilerrors.ErrCodeConfigInvalid,
				"schema validation failed:\n"+strings.Join(messages, "\n")).
				WithDetail("errors", messages)
		}
		return pilerrors.Wrap(err, pilerrors.ErrCodeConfigInvalid, "schema validation failed")
	}
	return nil
}

// collectErrors flattens the leaf validation errors.
func collectErrors(err *jsonschema.ValidationError, messages *[]string) {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		*messages = append(*messages, fmt.Sprintf("- %s: %s", location, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectErrors(cause, messages)
	}
}
