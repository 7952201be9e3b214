package builder

import (
	"github.com/goliatone/go-formstudio/pkg/model"
)

// Editor is a single-writer editing session over one document. Each call
// replaces the held document only when the underlying operation succeeds.
type Editor struct {
	builder *Builder
	doc     model.Document
	dirty   bool
}

// NewEditor starts a session over doc. A nil builder uses New().
func NewEditor(b *Builder, doc model.Document) *Editor {
	if b == nil {
		b = New()
	}
	return &Editor{builder: b, doc: doc.Reindexed()}
}

// Document returns a copy of the current document.
func (e *Editor) Document() model.Document {
	return e.doc.Reindexed()
}

// Dirty reports whether the document changed since the session started or
// since MarkSaved.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// MarkSaved swaps in the saved document (with persisted identities) and
// clears the dirty flag.
func (e *Editor) MarkSaved(saved model.Document) {
	e.doc = saved.Reindexed()
	e.dirty = false
}

// Insert adds a palette field at atIndex and returns its identity.
func (e *Editor) Insert(t model.FieldType, atIndex int) (model.Ref, error) {
	doc, ref, err := e.builder.InsertFromCatalog(e.doc, t, atIndex)
	if err != nil {
		return model.Ref{}, err
	}
	e.commit(doc)
	return ref, nil
}

// Move reorders an existing field.
func (e *Editor) Move(from, to int) error {
	return e.apply(func(doc model.Document) (model.Document, error) {
		return MoveField(doc, from, to)
	})
}

// Remove deletes a field.
func (e *Editor) Remove(index int) error {
	return e.apply(func(doc model.Document) (model.Document, error) {
		return RemoveField(doc, index)
	})
}

// Update patches a field.
func (e *Editor) Update(index int, patch FieldPatch) error {
	return e.apply(func(doc model.Document) (model.Document, error) {
		return UpdateField(doc, index, patch)
	})
}

// AddOption appends a default option.
func (e *Editor) AddOption(fieldIndex int) error {
	return e.apply(func(doc model.Document) (model.Document, error) {
		return AddOption(doc, fieldIndex)
	})
}

// UpdateOption patches an option.
func (e *Editor) UpdateOption(fieldIndex, optionIndex int, patch OptionPatch) error {
	return e.apply(func(doc model.Document) (model.Document, error) {
		return UpdateOption(doc, fieldIndex, optionIndex, patch)
	})
}

// RemoveOption deletes an option.
func (e *Editor) RemoveOption(fieldIndex, optionIndex int) error {
	return e.apply(func(doc model.Document) (model.Document, error) {
		return RemoveOption(doc, fieldIndex, optionIndex)
	})
}

// MoveOption reorders an option.
func (e *Editor) MoveOption(fieldIndex, from, to int) error {
	return e.apply(func(doc model.Document) (model.Document, error) {
		return MoveOption(doc, fieldIndex, from, to)
	})
}

// SetMeta replaces the document level attributes.
func (e *Editor) SetMeta(title, slug, description string, status model.Status) {
	doc := e.doc.Clone()
	doc.Title, doc.Slug, doc.Description, doc.Status = title, slug, description, status
	e.commit(doc)
}

// Lint reports authoring problems in the current document.
func (e *Editor) Lint() []Issue {
	return Lint(e.doc)
}

func (e *Editor) apply(op func(model.Document) (model.Document, error)) error {
	doc, err := op(e.doc)
	if err != nil {
		return err
	}
	e.commit(doc)
	return nil
}

func (e *Editor) commit(doc model.Document) {
	e.doc = doc
	e.dirty = true
}
