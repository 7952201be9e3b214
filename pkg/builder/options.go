package builder

import (
	"fmt"

	"github.com/goliatone/go-formstudio/pkg/model"
)

// OptionPatch lists option attributes to replace. Nil members are left
// alone; the Clear flags reset optional members to nil.
type OptionPatch struct {
	Label             *string
	Value             *string
	Image             *model.MediaRef
	ClearImage        bool
	NextQuestion      *model.Ref
	ClearNextQuestion bool
	IsEnd             *bool
}

// AddOption appends a default option to the choice field at fieldIndex.
func AddOption(doc model.Document, fieldIndex int) (model.Document, error) {
	if err := checkChoiceField(doc, fieldIndex); err != nil {
		return doc, err
	}
	out := doc.Clone()
	field := &out.Fields[fieldIndex]
	field.Options = append(field.Options, newOption(len(field.Options)+1))
	return reindex(out), nil
}

// UpdateOption applies patch to one option. Picking a branch target clears
// IsEnd unless the same patch sets it; setting IsEnd always drops the target.
func UpdateOption(doc model.Document, fieldIndex, optionIndex int, patch OptionPatch) (model.Document, error) {
	if err := checkOption(doc, fieldIndex, optionIndex); err != nil {
		return doc, err
	}
	out := doc.Clone()
	opt := &out.Fields[fieldIndex].Options[optionIndex]

	if patch.Label != nil {
		opt.Label = *patch.Label
	}
	if patch.Value != nil {
		opt.Value = *patch.Value
	}
	if patch.ClearImage {
		opt.Image = nil
	}
	if patch.Image != nil {
		img := *patch.Image
		opt.Image = &img
	}
	if patch.ClearNextQuestion {
		opt.NextQuestion = nil
	}
	if patch.NextQuestion != nil {
		opt.NextQuestion = model.RefPtr(*patch.NextQuestion)
		if patch.IsEnd == nil {
			opt.IsEnd = false
		}
	}
	if patch.IsEnd != nil {
		opt.IsEnd = *patch.IsEnd
	}
	*opt = opt.Normalized()

	return reindex(out), nil
}

// RemoveOption drops one option from a choice field.
func RemoveOption(doc model.Document, fieldIndex, optionIndex int) (model.Document, error) {
	if err := checkOption(doc, fieldIndex, optionIndex); err != nil {
		return doc, err
	}
	out := doc.Clone()
	field := &out.Fields[fieldIndex]
	field.Options = append(field.Options[:optionIndex], field.Options[optionIndex+1:]...)
	return reindex(out), nil
}

// MoveOption reorders options within one field using the same splice
// semantics as MoveField.
func MoveOption(doc model.Document, fieldIndex, from, to int) (model.Document, error) {
	if err := checkOption(doc, fieldIndex, from); err != nil {
		return doc, err
	}
	n := len(doc.Fields[fieldIndex].Options)
	if to < 0 || to >= n {
		return doc, outOfRange("option target", to, n)
	}
	out := doc.Clone()
	if from != to {
		field := &out.Fields[fieldIndex]
		field.Options = move(field.Options, from, to)
	}
	return reindex(out), nil
}

func checkChoiceField(doc model.Document, fieldIndex int) error {
	if fieldIndex < 0 || fieldIndex >= len(doc.Fields) {
		return outOfRange("field", fieldIndex, len(doc.Fields))
	}
	if field := doc.Fields[fieldIndex]; !field.Type.HasOptions() {
		return fmt.Errorf("%w: field %d has type %q", ErrNotChoiceField, fieldIndex, field.Type)
	}
	return nil
}

func checkOption(doc model.Document, fieldIndex, optionIndex int) error {
	if err := checkChoiceField(doc, fieldIndex); err != nil {
		return err
	}
	if n := len(doc.Fields[fieldIndex].Options); optionIndex < 0 || optionIndex >= n {
		return outOfRange("option", optionIndex, n)
	}
	return nil
}

func newOption(n int) model.Option {
	return model.Option{
		Label: fmt.Sprintf("Option %d", n),
		Value: fmt.Sprintf("option-%d", n),
	}
}
