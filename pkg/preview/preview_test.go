package preview

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/model"
)

func sampleDoc() model.Document {
	return model.Document{
		Title:       "Intake",
		Description: "About <you>",
		Fields: []model.Field{
			{Identity: model.Persisted(1), Type: model.FieldTypeQuestion, Label: "Returning?", Options: []model.Option{
				{Label: "Yes", Value: "yes", NextQuestion: model.RefPtr(model.Persisted(3))},
				{Label: "No", Value: "no"},
			}},
			{Identity: model.Persisted(2), Type: model.FieldTypeQuestion, Label: "How did you hear?", Options: []model.Option{
				{Label: "Friend", Value: "friend"},
			}},
			{Identity: model.Persisted(3), Type: model.FieldTypeQuestion, Label: "Plan?", Options: []model.Option{
				{Label: "Pro & Team", Value: "pro", IsEnd: true},
			}},
			{Identity: model.Persisted(4), Type: model.FieldTypeName, Label: "Name", IsRequired: true},
			{Identity: model.Persisted(5), Type: model.FieldTypeSelect, Label: "Size", Options: []model.Option{
				{Label: "Large", Value: "l"},
			}},
		},
	}
}

func TestFromSession(t *testing.T) {
	s := flow.NewSession(sampleDoc())
	for _, v := range []string{"yes", "pro"} {
		if _, err := s.Answer(v); err != nil {
			t.Fatalf("answer %s: %v", v, err)
		}
	}
	if err := s.SetValue(model.Persisted(5), "l"); err != nil {
		t.Fatalf("set value: %v", err)
	}

	got := FromSession(s)
	want := Summary{
		Title:       "Intake",
		Description: "About <you>",
		Questions: []Entry{
			{Ref: "1", Label: "Returning?", Value: "yes", Answer: "Yes"},
			{Ref: "3", Label: "Plan?", Value: "pro", Answer: "Pro & Team"},
		},
		Fields: []Entry{
			{Ref: "4", Label: "Name", Required: true, Missing: true},
			{Ref: "5", Label: "Size", Value: "l", Answer: "Large"},
		},
		Ended: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_AnswersOffPathKeepDocumentOrder(t *testing.T) {
	answers := map[model.Ref]string{model.Persisted(3): "pro", model.Persisted(2): "friend"}
	got := Build(sampleDoc(), nil, answers, nil)
	labels := []string{}
	for _, e := range got.Questions {
		labels = append(labels, e.Label)
	}
	if diff := cmp.Diff([]string{"How did you hear?", "Plan?"}, labels); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_Text(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s := flow.NewSession(sampleDoc())
	s.Answer("yes")
	s.Answer("pro")

	out, err := r.String(FromSession(s), FormatText)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, line := range []string{"Intake", "- Returning?: Yes", "- Plan?: Pro & Team", "- Name: (missing)", "- Size: -"} {
		if !strings.Contains(out, line) {
			t.Fatalf("expected %q in output:\n%s", line, out)
		}
	}
}

func TestRenderer_HTMLEscapes(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := r.String(Build(sampleDoc(), nil, map[model.Ref]string{model.Persisted(3): "pro"}, nil), FormatHTML)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<you>") {
		t.Fatalf("description not escaped:\n%s", out)
	}
	if !strings.Contains(out, "Pro &amp; Team") {
		t.Fatalf("answer not escaped:\n%s", out)
	}
	if !strings.Contains(out, `class="is-missing"`) {
		t.Fatalf("missing marker absent:\n%s", out)
	}
}

func TestRenderer_Override(t *testing.T) {
	r, err := New(WithTemplate(FormatText, "{{ summary.Title }}:{{ summary.Questions|length }}"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := r.String(Summary{Title: "T", Questions: []Entry{{}, {}}}, FormatText)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "T:2" {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := r.String(Summary{}, Format("pdf")); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := New(WithTemplate(FormatHTML, "{% if %}")); err == nil {
		t.Fatalf("expected parse error")
	}
}
