package builder

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstudio/pkg/model"
)

func TestUpdateOption_IsEndAlwaysClearsTarget(t *testing.T) {
	isEnd := true
	for _, prior := range []*model.Ref{nil, model.RefPtr(model.Persisted(2)), model.RefPtr(model.Ephemeral("x"))} {
		doc := branchingDoc()
		doc.Fields[0].Options[1].NextQuestion = prior

		out, err := UpdateOption(doc, 0, 1, OptionPatch{IsEnd: &isEnd})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		opt := out.Fields[0].Options[1]
		if !opt.IsEnd || opt.NextQuestion != nil {
			t.Fatalf("prior %v: expected end without target, got %+v", prior, opt)
		}
	}

	// Setting both in one patch keeps the end marker.
	target := model.Persisted(2)
	out, err := UpdateOption(branchingDoc(), 0, 1, OptionPatch{IsEnd: &isEnd, NextQuestion: &target})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if opt := out.Fields[0].Options[1]; !opt.IsEnd || opt.NextQuestion != nil {
		t.Fatalf("expected end to win, got %+v", opt)
	}
}

func TestUpdateOption_TargetClearsEnd(t *testing.T) {
	target := model.Persisted(2)
	out, err := UpdateOption(branchingDoc(), 0, 0, OptionPatch{NextQuestion: &target})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	opt := out.Fields[0].Options[0]
	if opt.IsEnd || opt.NextQuestion == nil || *opt.NextQuestion != target {
		t.Fatalf("unexpected option: %+v", opt)
	}

	out, err = UpdateOption(out, 0, 0, OptionPatch{ClearNextQuestion: true})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if out.Fields[0].Options[0].NextQuestion != nil {
		t.Fatalf("target not cleared")
	}
}

func TestUpdateOption_ValueAndImage(t *testing.T) {
	label, value := "Blue", "blue"
	img := model.MediaRef{ID: "17", URL: "https://cdn.example.com/blue.png"}
	out, err := UpdateOption(branchingDoc(), 1, 0, OptionPatch{Label: &label, Value: &value, Image: &img})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	opt := out.Fields[1].Options[0]
	if opt.Label != label || opt.Value != value || opt.Image == nil || *opt.Image != img {
		t.Fatalf("patch not applied: %+v", opt)
	}

	out, err = UpdateOption(out, 1, 0, OptionPatch{ClearImage: true})
	if err != nil {
		t.Fatalf("clear image: %v", err)
	}
	if out.Fields[1].Options[0].Image != nil {
		t.Fatalf("image not cleared")
	}
}

func TestAddRemoveMoveOption(t *testing.T) {
	doc, err := AddOption(branchingDoc(), 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	opts := doc.Fields[1].Options
	if len(opts) != 2 || opts[1].Label != "Option 2" || opts[1].Value != "option-2" {
		t.Fatalf("unexpected options after add: %+v", opts)
	}

	doc, err = MoveOption(doc, 1, 1, 0)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := optionValues(doc.Fields[1]); !cmp.Equal(got, []string{"option-2", "c"}) {
		t.Fatalf("unexpected order after move: %v", got)
	}

	doc, err = RemoveOption(doc, 1, 0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := optionValues(doc.Fields[1]); !cmp.Equal(got, []string{"c"}) {
		t.Fatalf("unexpected options after remove: %v", got)
	}
}

func TestOptionOperations_RejectBadCoordinates(t *testing.T) {
	original := branchingDoc()
	label := "x"

	cases := map[string]func() (model.Document, error){
		"add on missing field":  func() (model.Document, error) { return AddOption(original, 5) },
		"update missing option": func() (model.Document, error) { return UpdateOption(original, 0, 9, OptionPatch{Label: &label}) },
		"remove negative":       func() (model.Document, error) { return RemoveOption(original, 0, -1) },
		"move target too far":   func() (model.Document, error) { return MoveOption(original, 0, 0, 2) },
	}
	for name, run := range cases {
		doc, err := run()
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("%s: expected ErrIndexOutOfRange, got %v", name, err)
		}
		if diff := cmp.Diff(original, doc); diff != "" {
			t.Fatalf("%s: document changed:\n%s", name, diff)
		}
	}

	if _, err := AddOption(threeFieldDoc(), 0); !errors.Is(err, ErrNotChoiceField) {
		t.Fatalf("expected ErrNotChoiceField, got %v", err)
	}
}

func optionValues(field model.Field) []string {
	out := make([]string, len(field.Options))
	for i, opt := range field.Options {
		out[i] = opt.Value
	}
	return out
}
