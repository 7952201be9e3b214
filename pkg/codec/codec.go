package codec

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/goliatone/go-formstudio/pkg/model"
)

// ToPersisted produces the stored shape of doc.
func ToPersisted(doc model.Document) (PersistedForm, Report) {
	doc = doc.Reindexed()

	status := doc.Status
	if status == "" {
		status = model.StatusDraft
	}

	var report Report
	form := PersistedForm{
		ID:          cloneID(doc.ID),
		Title:       doc.Title,
		Slug:        doc.Slug,
		Description: sanitizeRichText(doc.Description),
		Status:      string(status),
		Fields:      make([]PersistedField, 0, len(doc.Fields)),
	}

	for i, field := range doc.Fields {
		pf := PersistedField{
			Type:        string(field.Type),
			Label:       field.Label,
			Placeholder: field.Placeholder,
			IsRequired:  field.IsRequired,
			OrderIndex:  i,
			Note:        sanitizeRichText(field.Note),
		}
		if field.Identity.IsPersisted() {
			id := field.Identity.ID
			pf.ID = &id
		}
		if field.Type.HasOptions() {
			pf.Options = make([]PersistedOption, 0, len(field.Options))
			for j, opt := range field.Options {
				pf.Options = append(pf.Options, persistOption(i, j, opt, &report))
			}
		}
		form.Fields = append(form.Fields, pf)
	}
	return form, report
}

func persistOption(fieldIndex, optionIndex int, opt model.Option, report *Report) PersistedOption {
	opt = opt.Clone()
	po := PersistedOption{
		Label: opt.Label,
		Value: opt.Value,
		Image: opt.Image,
		IsEnd: opt.IsEnd,
	}
	if strings.TrimSpace(po.Value) == "" {
		po.Value = slugify(opt.Label, optionIndex)
		report.GeneratedValues++
	}

	ref := opt.NextQuestion
	switch {
	case ref == nil || opt.IsEnd:
	case ref.IsPersisted():
		id := ref.ID
		po.NextQuestionID = &id
	default:
		report.UnresolvedReferences = append(report.UnresolvedReferences, Unresolved{
			FieldIndex:  fieldIndex,
			OptionIndex: optionIndex,
			Target:      *ref,
		})
	}
	return po
}

// FromPersisted hydrates an editable document. Fields are ordered by their
// stored orderIndex (ties keep array order) and reindexed. Fields without an
// id yet get an ephemeral identity. Editor state starts collapsed.
func FromPersisted(form PersistedForm) (model.Document, error) {
	status, err := model.ParseStatus(form.Status)
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	stored := append([]PersistedField(nil), form.Fields...)
	sort.SliceStable(stored, func(i, j int) bool {
		return stored[i].OrderIndex < stored[j].OrderIndex
	})

	doc := model.Document{
		ID:          cloneID(form.ID),
		Title:       form.Title,
		Slug:        form.Slug,
		Description: form.Description,
		Status:      status,
		Fields:      make([]model.Field, 0, len(stored)),
	}

	seen := make(map[int64]struct{}, len(stored))
	for i, pf := range stored {
		t, err := model.ParseFieldType(pf.Type)
		if err != nil {
			return model.Document{}, fmt.Errorf("%w: field %d: %v", ErrInvalidDocument, i, err)
		}

		identity := model.Ephemeral(fmt.Sprintf("unsaved-%d", i))
		if pf.ID != nil {
			if _, dup := seen[*pf.ID]; dup {
				return model.Document{}, fmt.Errorf("%w: duplicate field id %d", ErrInvalidDocument, *pf.ID)
			}
			seen[*pf.ID] = struct{}{}
			identity = model.Persisted(*pf.ID)
		}

		field := model.Field{
			Identity:    identity,
			Type:        t,
			Label:       pf.Label,
			Placeholder: pf.Placeholder,
			IsRequired:  pf.IsRequired,
			Note:        pf.Note,
		}
		if t.HasOptions() {
			field.Options = make([]model.Option, 0, len(pf.Options))
			for _, po := range pf.Options {
				field.Options = append(field.Options, hydrateOption(po))
			}
		}
		doc.Fields = append(doc.Fields, field)
	}
	return doc.Reindexed(), nil
}

func hydrateOption(po PersistedOption) model.Option {
	opt := model.Option{
		Label: po.Label,
		Value: po.Value,
		IsEnd: po.IsEnd,
	}
	if po.Image != nil {
		img := *po.Image
		opt.Image = &img
	}
	if po.NextQuestionID != nil {
		opt.NextQuestion = model.RefPtr(model.Persisted(*po.NextQuestionID))
	}
	return opt.Normalized()
}

// slugify derives an option value from its label.
func slugify(label string, index int) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return fmt.Sprintf("option-%d", index+1)
	}
	return slug
}
