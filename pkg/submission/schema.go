package submission

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/model"
)

// ErrInvalidSubmission wraps every schema violation reported by Validate.
var ErrInvalidSubmission = errors.New("submission: invalid payload")

// Schema returns the object schema of the payload for doc. Only required
// ordinary fields are listed as required; which questions get answered
// depends on the path taken.
func Schema(doc model.Document) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = doc.Title

	for _, field := range doc.Reindexed().Fields {
		key := field.Identity.Key()
		schema.WithProperty(key, fieldSchema(field))
		if field.IsRequired && !field.IsQuestion() {
			schema.Required = append(schema.Required, key)
		}
	}
	return schema
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var s *openapi3.Schema
	switch field.Type {
	case model.FieldTypeNumber:
		s = openapi3.NewFloat64Schema()
	case model.FieldTypeEmail:
		s = openapi3.NewStringSchema().WithFormat("email")
	case model.FieldTypeDate:
		s = openapi3.NewStringSchema().WithFormat("date")
	case model.FieldTypeCheckbox:
		s = openapi3.NewArraySchema().WithItems(optionEnum(field))
		s.UniqueItems = true
	case model.FieldTypeSelect, model.FieldTypeRadio, model.FieldTypeQuestion:
		s = optionEnum(field)
	default:
		s = openapi3.NewStringSchema()
	}
	s.Title = field.Label
	s.Description = field.Note
	if field.IsRequired && field.Type == model.FieldTypeCheckbox {
		s.MinItems = 1
	}
	if field.IsRequired && s.Type.Is(openapi3.TypeString) && len(s.Enum) == 0 {
		s.MinLength = 1
	}
	return s
}

func optionEnum(field model.Field) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	values := make([]any, 0, len(field.Options))
	seen := make(map[string]bool, len(field.Options))
	for _, opt := range field.Options {
		if seen[opt.Value] {
			continue
		}
		seen[opt.Value] = true
		values = append(values, opt.Value)
	}
	if len(values) > 0 {
		s.WithEnum(values...)
	}
	return s
}

// Payload builds the submission of a session from its recorded answers and
// values. Number fields are sent as numbers when they parse, checkbox
// values are split on commas and empty values are omitted.
func Payload(s *flow.Session) map[string]any {
	doc := s.Engine().Document()
	out := make(map[string]any)
	for ref, value := range s.Answers() {
		out[ref.Key()] = value
	}
	for ref, value := range s.Values() {
		if value == "" {
			continue
		}
		field, _, err := doc.FieldByIdentity(ref)
		if err != nil {
			continue
		}
		out[ref.Key()] = typedValue(field.Type, value)
	}
	return out
}

func typedValue(t model.FieldType, value string) any {
	switch t {
	case model.FieldTypeNumber:
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	case model.FieldTypeCheckbox:
		parts := strings.Split(value, ",")
		items := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		return items
	}
	return value
}

// Validate checks payload against the schema of doc.
func Validate(doc model.Document, payload map[string]any) error {
	if err := Schema(doc).VisitJSON(payload, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	return nil
}
