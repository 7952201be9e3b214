package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-formstudio/pkg/model"
)

// ErrUnknownFieldType is returned when a lookup misses the table.
var ErrUnknownFieldType = errors.New("catalog: unknown field type")

// Template describes the defaults a field kind starts with.
type Template struct {
	Type               model.FieldType
	DefaultLabel       string
	DefaultPlaceholder string
	DefaultIsRequired  bool
	DefaultNote        string
	HasOptions         bool
	DefaultOptions     []model.Option
}

// NewField instantiates a field from the template with the given identity.
// Choice fields receive a copy of the default options.
func (t Template) NewField(identity model.Ref) model.Field {
	field := model.Field{
		Identity:    identity,
		Type:        t.Type,
		Label:       t.DefaultLabel,
		Placeholder: t.DefaultPlaceholder,
		IsRequired:  t.DefaultIsRequired,
		Note:        t.DefaultNote,
		Expanded:    true,
	}
	if t.HasOptions {
		field.Options = cloneOptions(t.DefaultOptions)
	}
	return field
}

// Catalog is an immutable lookup table of templates.
type Catalog struct {
	order     []model.FieldType
	templates map[model.FieldType]Template
}

// New builds a catalog from the supplied templates. Later duplicates of a
// type are rejected, as are types outside the model enumeration.
func New(templates ...Template) (*Catalog, error) {
	c := &Catalog{templates: make(map[model.FieldType]Template, len(templates))}
	for _, tpl := range templates {
		if !tpl.Type.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFieldType, tpl.Type)
		}
		if _, exists := c.templates[tpl.Type]; exists {
			return nil, fmt.Errorf("catalog: duplicate template %q", tpl.Type)
		}
		if tpl.HasOptions != tpl.Type.HasOptions() {
			return nil, fmt.Errorf("catalog: template %q disagrees on options", tpl.Type)
		}
		tpl.DefaultOptions = cloneOptions(tpl.DefaultOptions)
		c.templates[tpl.Type] = tpl
		c.order = append(c.order, tpl.Type)
	}
	return c, nil
}

// Lookup returns the template registered for t.
func (c *Catalog) Lookup(t model.FieldType) (Template, error) {
	if c == nil {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, t)
	}
	tpl, ok := c.templates[t]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, t)
	}
	tpl.DefaultOptions = cloneOptions(tpl.DefaultOptions)
	return tpl, nil
}

// Types lists the registered field types in palette order.
func (c *Catalog) Types() []model.FieldType {
	if c == nil {
		return nil
	}
	return append([]model.FieldType(nil), c.order...)
}

// Templates lists every template in palette order.
func (c *Catalog) Templates() []Template {
	if c == nil {
		return nil
	}
	out := make([]Template, 0, len(c.order))
	for _, t := range c.order {
		tpl, _ := c.Lookup(t)
		out = append(out, tpl)
	}
	return out
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog covering every model.FieldType.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(builtinTemplates()...)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func builtinTemplates() []Template {
	return []Template{
		{Type: model.FieldTypeText, DefaultLabel: "Text", DefaultPlaceholder: "Enter text"},
		{Type: model.FieldTypeTextarea, DefaultLabel: "Paragraph", DefaultPlaceholder: "Enter a longer answer"},
		{Type: model.FieldTypeEmail, DefaultLabel: "Email", DefaultPlaceholder: "name@example.com"},
		{Type: model.FieldTypeNumber, DefaultLabel: "Number", DefaultPlaceholder: "0"},
		{Type: model.FieldTypeSelect, DefaultLabel: "Dropdown", DefaultPlaceholder: "Choose an option", HasOptions: true, DefaultOptions: defaultChoice()},
		{Type: model.FieldTypeCheckbox, DefaultLabel: "Checkboxes", HasOptions: true, DefaultOptions: defaultChoice()},
		{Type: model.FieldTypeRadio, DefaultLabel: "Multiple choice", HasOptions: true, DefaultOptions: defaultChoice()},
		{Type: model.FieldTypeFile, DefaultLabel: "File upload", DefaultNote: "Upload a single file"},
		{Type: model.FieldTypeDate, DefaultLabel: "Date", DefaultPlaceholder: "YYYY-MM-DD"},
		{Type: model.FieldTypeName, DefaultLabel: "Full name", DefaultPlaceholder: "Jane Doe"},
		{Type: model.FieldTypePhone, DefaultLabel: "Phone", DefaultPlaceholder: "+1 555 0100"},
		{Type: model.FieldTypeQuestion, DefaultLabel: "Question", DefaultIsRequired: true, HasOptions: true, DefaultOptions: defaultChoice()},
	}
}

func defaultChoice() []model.Option {
	return []model.Option{{Label: "Option 1", Value: "option-1"}}
}

func cloneOptions(src []model.Option) []model.Option {
	if src == nil {
		return nil
	}
	out := make([]model.Option, len(src))
	for i, opt := range src {
		out[i] = opt.Clone()
	}
	return out
}
