package model

import (
	"fmt"
	"strings"
)

// FieldType enumerates the field kinds a form can hold.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeFile     FieldType = "file"
	FieldTypeDate     FieldType = "date"
	FieldTypeName     FieldType = "name"
	FieldTypePhone    FieldType = "phone"
	FieldTypeQuestion FieldType = "question"
)

// FieldTypes lists every known field type in palette order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeTextarea,
		FieldTypeEmail,
		FieldTypeNumber,
		FieldTypeSelect,
		FieldTypeCheckbox,
		FieldTypeRadio,
		FieldTypeFile,
		FieldTypeDate,
		FieldTypeName,
		FieldTypePhone,
		FieldTypeQuestion,
	}
}

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeEmail, FieldTypeNumber,
		FieldTypeSelect, FieldTypeCheckbox, FieldTypeRadio, FieldTypeFile,
		FieldTypeDate, FieldTypeName, FieldTypePhone, FieldTypeQuestion:
		return true
	default:
		return false
	}
}

// HasOptions reports whether fields of this type carry an option list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeSelect, FieldTypeCheckbox, FieldTypeRadio, FieldTypeQuestion:
		return true
	default:
		return false
	}
}

// ParseFieldType normalises raw input into a FieldType.
func ParseFieldType(raw string) (FieldType, error) {
	t := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("model: unknown field type %q", raw)
	}
	return t, nil
}

// Status is the publication state of a form.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ParseStatus normalises raw input into a Status. Empty input yields draft.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return StatusDraft, nil
	case StatusDraft, StatusPublished:
		return s, nil
	default:
		return "", fmt.Errorf("model: unknown status %q", raw)
	}
}
