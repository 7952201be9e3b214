package codec

import "github.com/goliatone/go-formstudio/pkg/model"

// PersistedForm is the canonical stored shape of a form.
type PersistedForm struct {
	ID          *int64           `json:"id" yaml:"id,omitempty"`
	Title       string           `json:"title" yaml:"title"`
	Slug        string           `json:"slug" yaml:"slug"`
	Description string           `json:"description" yaml:"description"`
	Status      string           `json:"status" yaml:"status"`
	Fields      []PersistedField `json:"fields" yaml:"fields"`
}

// PersistedField is one stored field. ID is nil until storage assigns one.
type PersistedField struct {
	ID          *int64            `json:"id" yaml:"id,omitempty"`
	Type        string            `json:"type" yaml:"type"`
	Label       string            `json:"label" yaml:"label"`
	Placeholder string            `json:"placeholder" yaml:"placeholder"`
	IsRequired  bool              `json:"isRequired" yaml:"isRequired"`
	OrderIndex  int               `json:"orderIndex" yaml:"orderIndex"`
	Note        string            `json:"note" yaml:"note"`
	Options     []PersistedOption `json:"options" yaml:"options,omitempty"`
}

// PersistedOption is one stored option.
type PersistedOption struct {
	Label          string          `json:"label" yaml:"label"`
	Value          string          `json:"value" yaml:"value"`
	Image          *model.MediaRef `json:"image" yaml:"image,omitempty"`
	NextQuestionID *int64          `json:"nextQuestionId" yaml:"nextQuestionId,omitempty"`
	IsEnd          bool            `json:"isEnd" yaml:"isEnd"`
}

// Unresolved locates an option whose target was nulled on the way out.
type Unresolved struct {
	FieldIndex  int
	OptionIndex int
	Target      model.Ref
}

// Report lists what ToPersisted changed while producing the stored shape.
type Report struct {
	UnresolvedReferences []Unresolved
	// GeneratedValues counts empty option values filled from their label.
	GeneratedValues int
}

// Clean reports whether nothing was rewritten.
func (r Report) Clean() bool {
	return len(r.UnresolvedReferences) == 0 && r.GeneratedValues == 0
}

// Clone deep copies the form.
func (f PersistedForm) Clone() PersistedForm {
	f.ID = cloneID(f.ID)
	if f.Fields == nil {
		return f
	}
	fields := make([]PersistedField, len(f.Fields))
	for i, field := range f.Fields {
		field.ID = cloneID(field.ID)
		if field.Options != nil {
			opts := make([]PersistedOption, len(field.Options))
			for j, opt := range field.Options {
				opt.NextQuestionID = cloneID(opt.NextQuestionID)
				if opt.Image != nil {
					img := *opt.Image
					opt.Image = &img
				}
				opts[j] = opt
			}
			field.Options = opts
		}
		fields[i] = field
	}
	f.Fields = fields
	return f
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
