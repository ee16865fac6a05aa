package grid

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed grid.schema.json
var bundledSchema string

const schemaURL = "grid.schema.json"

// BundledSchema returns the JSON Schema used by Validate.
func BundledSchema() []byte {
	return []byte(bundledSchema)
}

// ValidationError locates a single validation failure.
type ValidationError struct {
	Path string // e.g. "[1][2]"
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid  bool
	Errors []error
}

// Validate checks that g is rectangular and that every cell is -1, 0 or 1.
func Validate(g Grid) *ValidationResult {
	result := &ValidationResult{Valid: true}

	cols := g.Cols()
	for r, row := range g {
		if len(row) != cols {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: fmt.Sprintf("[%d]", r),
				Err:  fmt.Errorf("expected %d cells, got %d", cols, len(row)),
			})
		}
	}

	schema, err := compileSchema()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("compile grid schema: %w", err))
		return result
	}

	// Round-trip through JSON so the validator sees plain decoded values.
	data, err := json.Marshal(g)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("marshal grid for validation: %w", err))
		return result
	}
	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("unmarshal grid for validation: %w", err))
		return result
	}

	if err := schema.Validate(instance); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
	return result
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(bundledSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath turns "/1/2" into "[1][2]".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
