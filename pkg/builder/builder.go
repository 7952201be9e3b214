package builder

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-formstudio/pkg/catalog"
	"github.com/goliatone/go-formstudio/pkg/model"
)

// IDGenerator returns fresh local ids for ephemeral fields.
type IDGenerator func() string

// Option configures a Builder.
type Option func(*Builder)

// WithCatalog overrides the palette used by InsertFromCatalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(b *Builder) {
		if c != nil {
			b.catalog = c
		}
	}
}

// WithIDGenerator overrides how ephemeral identities are minted.
func WithIDGenerator(fn IDGenerator) Option {
	return func(b *Builder) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// Builder carries the collaborators palette insertion needs. The remaining
// operations are package functions since they only touch the document.
type Builder struct {
	catalog *catalog.Catalog
	newID   IDGenerator
}

// New constructs a Builder backed by the default catalog and uuid identities.
func New(options ...Option) *Builder {
	b := &Builder{
		catalog: catalog.Default(),
		newID:   uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Catalog exposes the palette in use.
func (b *Builder) Catalog() *catalog.Catalog {
	return b.catalog
}

// InsertFromCatalog instantiates a field of type t and inserts it at atIndex,
// clamped to [0, len(fields)]. The new field gets a fresh ephemeral identity
// which is returned alongside the new document.
func (b *Builder) InsertFromCatalog(doc model.Document, t model.FieldType, atIndex int) (model.Document, model.Ref, error) {
	tpl, err := b.catalog.Lookup(t)
	if err != nil {
		return doc, model.Ref{}, err
	}

	ref := model.Ephemeral(b.newID())
	field := tpl.NewField(ref)

	out := doc.Clone()
	atIndex = clamp(atIndex, 0, len(out.Fields))
	out.Fields = append(out.Fields, model.Field{})
	copy(out.Fields[atIndex+1:], out.Fields[atIndex:])
	out.Fields[atIndex] = field

	return reindex(out), ref, nil
}

// MoveField splices the field at from out of the list and back in at to. The
// target index is read against the list after removal. from == to is a no-op.
func MoveField(doc model.Document, from, to int) (model.Document, error) {
	n := len(doc.Fields)
	if from < 0 || from >= n {
		return doc, outOfRange("field", from, n)
	}
	if to < 0 || to >= n {
		return doc, outOfRange("target", to, n)
	}
	out := doc.Clone()
	if from == to {
		return reindex(out), nil
	}
	out.Fields = move(out.Fields, from, to)
	return reindex(out), nil
}

// RemoveField drops the field at index and clears every option branch that
// targeted it.
func RemoveField(doc model.Document, index int) (model.Document, error) {
	if index < 0 || index >= len(doc.Fields) {
		return doc, outOfRange("field", index, len(doc.Fields))
	}
	out := doc.Clone()
	removed := out.Fields[index].Identity
	out.Fields = append(out.Fields[:index], out.Fields[index+1:]...)
	clearReferences(out.Fields, removed)
	return reindex(out), nil
}

// FieldPatch lists field attributes to replace. Nil members are left alone.
type FieldPatch struct {
	Type        *model.FieldType
	Label       *string
	Placeholder *string
	IsRequired  *bool
	Note        *string
	Expanded    *bool
}

// UpdateField applies patch to the field at index. Changing the type to one
// without options drops the options; changing a question into anything else
// clears the branches that targeted it and the branching data of its options.
func UpdateField(doc model.Document, index int, patch FieldPatch) (model.Document, error) {
	if index < 0 || index >= len(doc.Fields) {
		return doc, outOfRange("field", index, len(doc.Fields))
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return doc, fmt.Errorf("%w: %q", catalog.ErrUnknownFieldType, *patch.Type)
	}

	out := doc.Clone()
	field := &out.Fields[index]

	if patch.Label != nil {
		field.Label = *patch.Label
	}
	if patch.Placeholder != nil {
		field.Placeholder = *patch.Placeholder
	}
	if patch.IsRequired != nil {
		field.IsRequired = *patch.IsRequired
	}
	if patch.Note != nil {
		field.Note = *patch.Note
	}
	if patch.Expanded != nil {
		field.Expanded = *patch.Expanded
	}
	if patch.Type != nil && *patch.Type != field.Type {
		wasQuestion := field.IsQuestion()
		field.Type = *patch.Type
		switch {
		case !field.Type.HasOptions():
			field.Options = nil
		case len(field.Options) == 0:
			field.Options = []model.Option{newOption(1)}
		}
		if wasQuestion && !field.IsQuestion() {
			for i := range field.Options {
				field.Options[i].NextQuestion = nil
				field.Options[i].IsEnd = false
			}
			clearReferences(out.Fields, field.Identity)
		}
	}

	return reindex(out), nil
}

func clearReferences(fields []model.Field, target model.Ref) {
	for i := range fields {
		for j := range fields[i].Options {
			next := fields[i].Options[j].NextQuestion
			if next != nil && *next == target {
				fields[i].Options[j].NextQuestion = nil
			}
		}
	}
}

func reindex(doc model.Document) model.Document {
	for i := range doc.Fields {
		doc.Fields[i].OrderIndex = i
		for j := range doc.Fields[i].Options {
			doc.Fields[i].Options[j] = doc.Fields[i].Options[j].Normalized()
		}
	}
	return doc
}

func move[T any](items []T, from, to int) []T {
	item := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items, item)
	copy(items[to+1:], items[to:])
	items[to] = item
	return items
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
