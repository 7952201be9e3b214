// Package testsupport holds fixture and golden file helpers shared by tests.
package testsupport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstudio/pkg/codec"
	"github.com/goliatone/go-formstudio/pkg/model"
)

// LoadForm reads a JSON or YAML fixture in the stored form shape.
func LoadForm(t *testing.T, path string) codec.PersistedForm {
	t.Helper()

	form, err := LoadFormFromPath(path)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadFormFromPath returns a stored form without requiring testing.T, so
// fixtures can be wired in setup functions.
func LoadFormFromPath(path string) (codec.PersistedForm, error) {
	if path == "" {
		return codec.PersistedForm{}, errors.New("testsupport: form path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return codec.PersistedForm{}, fmt.Errorf("testsupport: read form: %w", err)
	}
	form, err := codec.Decode(data)
	if err != nil {
		return codec.PersistedForm{}, fmt.Errorf("testsupport: decode form: %w", err)
	}
	return form, nil
}

// LoadDocument reads a fixture and hydrates the editable document.
func LoadDocument(t *testing.T, path string) model.Document {
	t.Helper()

	doc, err := codec.FromPersisted(LoadForm(t, path))
	if err != nil {
		t.Fatalf("hydrate document: %v", err)
	}
	return doc
}

// WriteGolden writes the form as indented JSON when UPDATE_GOLDENS is set.
// It returns true when the golden was written and the test should stop.
func WriteGolden(t *testing.T, path string, form codec.PersistedForm) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := codec.Encode(form, codec.FormatJSON)
	if err != nil {
		t.Fatalf("encode golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}
