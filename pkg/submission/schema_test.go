package submission

import (
	"errors"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/model"
)

func sampleDoc() model.Document {
	return model.Document{
		Title: "Order",
		Fields: []model.Field{
			{Identity: model.Persisted(1), Type: model.FieldTypeQuestion, Label: "Delivery?", IsRequired: true, Options: []model.Option{
				{Label: "Yes", Value: "yes"},
				{Label: "No", Value: "no", IsEnd: true},
			}},
			{Identity: model.Persisted(2), Type: model.FieldTypeEmail, Label: "Email", IsRequired: true},
			{Identity: model.Persisted(3), Type: model.FieldTypeNumber, Label: "Quantity"},
			{Identity: model.Persisted(4), Type: model.FieldTypeCheckbox, Label: "Extras", Options: []model.Option{
				{Label: "Gift wrap", Value: "wrap"},
				{Label: "Card", Value: "card"},
			}},
			{Identity: model.Persisted(5), Type: model.FieldTypeText, Label: "Notes"},
		},
	}
}

func TestSchema(t *testing.T) {
	s := Schema(sampleDoc())
	if !s.Type.Is(openapi3.TypeObject) {
		t.Fatalf("expected object schema, got %v", s.Type)
	}
	if diff := cmp.Diff([]string{"2"}, s.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if got := len(s.Properties); got != 5 {
		t.Fatalf("expected 5 properties, got %d", got)
	}

	question := s.Properties["1"].Value
	if diff := cmp.Diff([]any{"yes", "no"}, question.Enum); diff != "" {
		t.Fatalf("question enum mismatch (-want +got):\n%s", diff)
	}
	if question.Title != "Delivery?" {
		t.Fatalf("unexpected title %q", question.Title)
	}
	if !s.Properties["3"].Value.Type.Is(openapi3.TypeNumber) {
		t.Fatalf("quantity should be a number")
	}
	extras := s.Properties["4"].Value
	if !extras.Type.Is(openapi3.TypeArray) || !extras.UniqueItems {
		t.Fatalf("extras should be a unique array")
	}
	if s.Properties["2"].Value.MinLength != 1 {
		t.Fatalf("required email should not accept empty strings")
	}
}

func TestPayloadAndValidate(t *testing.T) {
	doc := sampleDoc()
	session := flow.NewSession(doc)
	if _, err := session.Answer("yes"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	for ref, v := range map[model.Ref]string{
		model.Persisted(2): "ada@example.com",
		model.Persisted(3): " 3 ",
		model.Persisted(4): "wrap, card",
		model.Persisted(5): "",
	} {
		if err := session.SetValue(ref, v); err != nil {
			t.Fatalf("set value: %v", err)
		}
	}

	payload := Payload(session)
	want := map[string]any{
		"1": "yes",
		"2": "ada@example.com",
		"3": float64(3),
		"4": []any{"wrap", "card"},
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if err := Validate(doc, payload); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	doc := sampleDoc()
	cases := map[string]map[string]any{
		"missing required": {"1": "yes"},
		"unknown answer":   {"1": "maybe", "2": "ada@example.com"},
		"wrong type":       {"2": "ada@example.com", "3": "three"},
		"unknown extra":    {"2": "ada@example.com", "4": []any{"balloons"}},
		"empty required":   {"2": ""},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			if err := Validate(doc, payload); !errors.Is(err, ErrInvalidSubmission) {
				t.Fatalf("expected ErrInvalidSubmission, got %v", err)
			}
		})
	}
}
