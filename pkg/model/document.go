package model

import "fmt"

// Option is one selectable choice of a choice-bearing field.
type Option struct {
	Label string
	Value string
	Image *MediaRef
	// NextQuestion optionally names the question asked after this option is
	// picked. Nil means "continue in document order".
	NextQuestion *Ref
	// IsEnd terminates the question flow. It excludes NextQuestion.
	IsEnd bool
}

// Normalized returns o with the IsEnd invariant applied.
func (o Option) Normalized() Option {
	if o.IsEnd {
		o.NextQuestion = nil
	}
	return o
}

// Clone deep copies the option.
func (o Option) Clone() Option {
	if o.Image != nil {
		img := *o.Image
		o.Image = &img
	}
	if o.NextQuestion != nil {
		o.NextQuestion = RefPtr(*o.NextQuestion)
	}
	return o
}

// Field is one input definition of a form.
type Field struct {
	Identity    Ref
	Type        FieldType
	Label       string
	Placeholder string
	IsRequired  bool
	Note        string
	OrderIndex  int
	Options     []Option
	// Expanded is editor-only UI state and never persisted.
	Expanded bool
}

// IsQuestion reports whether the field takes part in the question flow.
func (f Field) IsQuestion() bool {
	return f.Type == FieldTypeQuestion
}

// Clone deep copies the field including its options.
func (f Field) Clone() Field {
	if f.Options != nil {
		opts := make([]Option, len(f.Options))
		for i, opt := range f.Options {
			opts[i] = opt.Clone()
		}
		f.Options = opts
	}
	return f
}

// OptionByValue returns the first option whose value matches.
func (f Field) OptionByValue(value string) (Option, bool) {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// Document is the editable representation of a form.
type Document struct {
	ID          *int64
	Title       string
	Slug        string
	Description string
	Status      Status
	Fields      []Field
}

// Clone deep copies the document.
func (d Document) Clone() Document {
	if d.ID != nil {
		id := *d.ID
		d.ID = &id
	}
	if d.Fields != nil {
		fields := make([]Field, len(d.Fields))
		for i, field := range d.Fields {
			fields[i] = field.Clone()
		}
		d.Fields = fields
	}
	return d
}

// Reindexed returns a copy whose OrderIndex values match slice positions and
// whose options satisfy the IsEnd invariant.
func (d Document) Reindexed() Document {
	out := d.Clone()
	for i := range out.Fields {
		out.Fields[i].OrderIndex = i
		for j := range out.Fields[i].Options {
			out.Fields[i].Options[j] = out.Fields[i].Options[j].Normalized()
		}
	}
	return out
}

// QuestionFields returns the question fields in document order.
func (d Document) QuestionFields() []Field {
	return d.filter(func(f Field) bool { return f.IsQuestion() })
}

// OrdinaryFields returns the non-question fields in document order.
func (d Document) OrdinaryFields() []Field {
	return d.filter(func(f Field) bool { return !f.IsQuestion() })
}

func (d Document) filter(keep func(Field) bool) []Field {
	var out []Field
	for i, field := range d.Fields {
		if !keep(field) {
			continue
		}
		field = field.Clone()
		field.OrderIndex = i
		out = append(out, field)
	}
	return out
}

// FieldByIdentity returns the field identified by ref and its position.
func (d Document) FieldByIdentity(ref Ref) (Field, int, error) {
	if idx := d.IndexOf(ref); idx >= 0 {
		field := d.Fields[idx].Clone()
		field.OrderIndex = idx
		return field, idx, nil
	}
	return Field{}, -1, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// IndexOf returns the position of the field identified by ref, or -1.
func (d Document) IndexOf(ref Ref) int {
	if ref.IsZero() {
		return -1
	}
	for i, field := range d.Fields {
		if field.Identity == ref {
			return i
		}
	}
	return -1
}

// ResolveQuestion resolves a branch target. It reports false when ref is nil
// or points at a missing or non-question field.
func (d Document) ResolveQuestion(ref *Ref) (Field, bool) {
	if ref == nil {
		return Field{}, false
	}
	field, _, err := d.FieldByIdentity(*ref)
	if err != nil || !field.IsQuestion() {
		return Field{}, false
	}
	return field, true
}
