package store_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-formstudio/pkg/codec"
	"github.com/goliatone/go-formstudio/pkg/store"
	"github.com/goliatone/go-formstudio/pkg/store/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return store.NewMemory() })
}

func TestPrepare(t *testing.T) {
	form := storetest.SampleForm()
	form.Status = ""
	form.Fields[0].Type = "Question"

	out, err := store.Prepare(form)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if out.Status != "draft" || out.Fields[0].Type != "question" {
		t.Fatalf("expected normalised status and type, got %q %q", out.Status, out.Fields[0].Type)
	}
	for i, f := range out.Fields {
		if f.OrderIndex != i {
			t.Fatalf("field %d has orderIndex %d", i, f.OrderIndex)
		}
	}
	if form.Fields[0].OrderIndex != 7 {
		t.Fatalf("input mutated")
	}
}

func TestPrepare_Problems(t *testing.T) {
	form := storetest.SampleForm()
	form.Slug = "Not A Slug"
	form.Status = "archived"
	form.Fields[1].Type = "slider"
	form.Fields[1].Options = []codec.PersistedOption{{Label: "x", Value: "x"}}
	form.Fields[2].Type = "text"
	form.Fields[2].Options[0].Value = ""

	_, err := store.Prepare(form)
	var verr *store.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]bool{
		"slug":                       true,
		"status":                     true,
		"fields[1].type":             true,
		"fields[2].options":          true,
		"fields[2].options[0].value": true,
	}
	if len(verr.Problems) != len(want) {
		t.Fatalf("expected %d problems, got %+v", len(want), verr.Problems)
	}
	for _, p := range verr.Problems {
		if !want[p.Path] {
			t.Fatalf("unexpected problem %+v", p)
		}
	}
}
