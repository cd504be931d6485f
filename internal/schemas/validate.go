// Package schemas provides JSON Schema validation for the payloads returned by the
// generation engine, so malformed responses are rejected before unmarshaling.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.json
var schemaFiles embed.FS

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "response does not match schema %s:", ve.Schema)
	for _, fe := range ve.Errors {
		fmt.Fprintf(&sb, "\n  %s: %s", fe.Field, fe.Message)
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself.
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Validate checks a JSON document against an embedded schema (e.g. "essence.json").
// Returns a ValidationError listing every violated field, or nil when the document
// conforms.
func Validate(schemaName, jsonText string) error {
	data, err := schemaFiles.ReadFile(schemaName)
	if err != nil {
		return &SchemaLoadError{Name: schemaName, Message: "schema not embedded", Cause: err}
	}

	schemaLoader := gojsonschema.NewBytesLoader(data)
	documentLoader := gojsonschema.NewStringLoader(jsonText)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{Name: schemaName, Message: "validation could not run", Cause: err}
	}

	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: schemaName}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return ve
}
