// Package storetest holds a conformance suite every store.Store
// implementation runs from its own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstudio/pkg/codec"
	"github.com/goliatone/go-formstudio/pkg/model"
	"github.com/goliatone/go-formstudio/pkg/store"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run exercises the store contract against fresh stores from newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("save assigns ids", func(t *testing.T) { testSaveAssignsIDs(t, newStore(t)) })
	t.Run("load unknown", func(t *testing.T) { testLoadUnknown(t, newStore(t)) })
	t.Run("update fields", func(t *testing.T) { testUpdateFields(t, newStore(t)) })
	t.Run("validation", func(t *testing.T) { testValidation(t, newStore(t)) })
	t.Run("foreign field ids", func(t *testing.T) { testForeignFieldIDs(t, newStore(t)) })
	t.Run("slug taken", func(t *testing.T) { testSlugTaken(t, newStore(t)) })
	t.Run("list", func(t *testing.T) { testList(t, newStore(t)) })
}

// SampleForm is an unsaved two-question form with one ordinary field.
func SampleForm() codec.PersistedForm {
	return codec.PersistedForm{
		Title:       "Intake",
		Slug:        "intake",
		Description: "Tell us about you",
		Status:      "draft",
		Fields: []codec.PersistedField{
			{Type: "question", Label: "Returning?", IsRequired: true, OrderIndex: 7, Options: []codec.PersistedOption{
				{Label: "Yes", Value: "yes", IsEnd: true},
				{Label: "No", Value: "no", Image: &model.MediaRef{ID: "m1", URL: "/media/m1.png"}},
			}},
			{Type: "email", Label: "Email", Placeholder: "you@example.com", Note: "We never share it"},
			{Type: "select", Label: "Plan", Options: []codec.PersistedOption{{Label: "Free", Value: "free"}}},
		},
	}
}

func mustSave(t *testing.T, s store.Store, form codec.PersistedForm) codec.PersistedForm {
	t.Helper()
	saved, err := s.Save(context.Background(), form)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	return saved
}

func testSaveAssignsIDs(t *testing.T, s store.Store) {
	saved := mustSave(t, s, SampleForm())
	if saved.ID == nil {
		t.Fatalf("expected form id")
	}
	seen := map[int64]bool{}
	for i, f := range saved.Fields {
		if f.ID == nil {
			t.Fatalf("field %d has no id", i)
		}
		if seen[*f.ID] {
			t.Fatalf("field id %d reused", *f.ID)
		}
		seen[*f.ID] = true
		if f.OrderIndex != i {
			t.Fatalf("field %d has orderIndex %d", i, f.OrderIndex)
		}
	}

	loaded, err := s.Load(context.Background(), *saved.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(saved, loaded); diff != "" {
		t.Fatalf("loaded form differs (-saved +loaded):\n%s", diff)
	}
}

func testLoadUnknown(t *testing.T, s store.Store) {
	if _, err := s.Load(context.Background(), 4242); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	form := SampleForm()
	id := int64(4242)
	form.ID = &id
	if _, err := s.Save(context.Background(), form); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on save, got %v", err)
	}
}

func testUpdateFields(t *testing.T, s store.Store) {
	saved := mustSave(t, s, SampleForm())
	question := *saved.Fields[0].ID

	// Drop the email field, move the select first and branch to the question.
	next := saved.Clone()
	next.Title = "Intake v2"
	next.Status = "published"
	next.Fields = []codec.PersistedField{next.Fields[2], next.Fields[0], {Type: "date", Label: "Start"}}
	next.Fields[0].Options[0].NextQuestionID = &question

	updated := mustSave(t, s, next)
	if *updated.ID != *saved.ID {
		t.Fatalf("form id changed from %d to %d", *saved.ID, *updated.ID)
	}
	if *updated.Fields[0].ID != *saved.Fields[2].ID || *updated.Fields[1].ID != question {
		t.Fatalf("existing field ids not kept: %+v", updated.Fields)
	}
	if updated.Fields[2].ID == nil {
		t.Fatalf("new field got no id")
	}

	loaded, err := s.Load(context.Background(), *saved.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(updated, loaded); diff != "" {
		t.Fatalf("loaded form differs (-saved +loaded):\n%s", diff)
	}
	if got := loaded.Fields[0].Options[0].NextQuestionID; got == nil || *got != question {
		t.Fatalf("branch target lost: %v", got)
	}
}

func testValidation(t *testing.T, s store.Store) {
	form := SampleForm()
	form.Title = "  "
	form.Fields[0].Options[0].NextQuestionID = new(int64)
	_, err := s.Save(context.Background(), form)

	var verr *store.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	paths := make([]string, 0, len(verr.Problems))
	for _, p := range verr.Problems {
		paths = append(paths, p.Path)
	}
	want := []string{"title", "fields[0].options[0]"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("unexpected problems (-want +got):\n%s", diff)
	}
}

func testForeignFieldIDs(t *testing.T, s store.Store) {
	first := mustSave(t, s, SampleForm())

	other := SampleForm()
	other.Slug = "other"
	other.Fields[1].ID = first.Fields[1].ID
	if _, err := s.Save(context.Background(), other); !store.IsValidation(err) {
		t.Fatalf("expected ValidationError for a foreign field id, got %v", err)
	}
}

func testSlugTaken(t *testing.T, s store.Store) {
	mustSave(t, s, SampleForm())
	if _, err := s.Save(context.Background(), SampleForm()); !store.IsValidation(err) {
		t.Fatalf("expected ValidationError for a taken slug, got %v", err)
	}
	unslugged := SampleForm()
	unslugged.Slug = ""
	mustSave(t, s, unslugged)
	mustSave(t, s, unslugged)
}

func testList(t *testing.T, s store.Store) {
	lister, ok := s.(store.Lister)
	if !ok {
		t.Skip("store does not list")
	}
	a := mustSave(t, s, SampleForm())
	second := SampleForm()
	second.Slug = "second"
	second.Title = "Second"
	b := mustSave(t, s, second)

	got, err := lister.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []store.Summary{
		{ID: *a.ID, Title: "Intake", Slug: "intake", Status: "draft"},
		{ID: *b.ID, Title: "Second", Slug: "second", Status: "draft"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}
