package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/amirbrooks/tasklist/internal/store"
	"github.com/amirbrooks/tasklist/internal/templates"
)

// ErrInvalidFile is matched by errors returned for template files that do
// not follow the template file schema.
var ErrInvalidFile = errors.New("invalid template file")

const templateSchemaURL = "tasklist://template-file.json"

const templateSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "minProperties": 1,
  "propertyNames": {"minLength": 1},
  "additionalProperties": {
    "type": "object",
    "required": ["title"],
    "properties": {
      "title": {"type": "string", "minLength": 1, "maxLength": 100},
      "priority": {"enum": ["high", "medium", "low"]},
      "category": {"type": ["string", "null"]},
      "tags": {
        "type": ["array", "null"],
        "items": {"type": "string", "minLength": 1}
      }
    }
  }
}`

// SchemaError points at the first offending value in a template file.
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidFile, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidFile, e.Path, e.Message)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidFile
}

// TemplateFileName is the default export name for one template, or for the
// whole collection when name is empty. The name is sanitized with
// safeFileName.
func TemplateFileName(name string) string {
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("templates_%s.json", store.NewULID())
	}
	safe := safeFileName(name, 50)
	if safe == "" {
		return fmt.Sprintf("template_%s.json", store.NewULID())
	}
	return fmt.Sprintf("template_%s.json", safe)
}

// TemplatesFile writes items as a name-keyed JSON object and returns the
// path written.
func TemplatesFile(path string, items map[string]templates.Template) (string, error) {
	if len(items) == 0 {
		return "", ErrEmpty
	}
	path = withExt(path, ".json")
	b, err := store.Marshal(store.FormatJSON, items)
	if err != nil {
		return "", fmt.Errorf("encode templates: %w", err)
	}
	if err := store.WriteFileAtomic(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ReadTemplatesFile loads a template file, validating it before decoding.
func ReadTemplatesFile(path string) (map[string]templates.Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseTemplates(b)
}

func ParseTemplates(b []byte) (map[string]templates.Template, error) {
	var doc interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, &SchemaError{Message: err.Error()}
	}
	schema, err := jsonschema.CompileString(templateSchemaURL, templateSchema)
	if err != nil {
		return nil, fmt.Errorf("compile template schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}
	var items map[string]templates.Template
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, &SchemaError{Message: err.Error()}
	}
	return items, nil
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &SchemaError{Message: err.Error()}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return &SchemaError{Path: leaf.InstanceLocation, Message: leaf.Message}
}
