package gormstore

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/goliatone/go-formstudio/pkg/codec"
)

type formRecord struct {
	ID          int64         `gorm:"primaryKey"`
	Title       string        `gorm:"size:255;not null"`
	Slug        *string       `gorm:"size:255;uniqueIndex"`
	Description string        `gorm:"type:text"`
	Status      string        `gorm:"size:16;not null;default:draft"`
	Fields      []fieldRecord `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (formRecord) TableName() string { return "forms" }

type fieldRecord struct {
	ID          int64          `gorm:"primaryKey"`
	FormID      int64          `gorm:"index:idx_form_fields_order,priority:1;not null"`
	Type        string         `gorm:"size:32;not null"`
	Label       string         `gorm:"type:text"`
	Placeholder string         `gorm:"type:text"`
	IsRequired  bool           `gorm:"not null;default:false"`
	OrderIndex  int            `gorm:"index:idx_form_fields_order,priority:2;not null"`
	Note        string         `gorm:"type:text"`
	Options     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (fieldRecord) TableName() string { return "form_fields" }

func (r formRecord) persisted() (codec.PersistedForm, error) {
	id := r.ID
	form := codec.PersistedForm{
		ID:          &id,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Fields:      make([]codec.PersistedField, 0, len(r.Fields)),
	}
	if r.Slug != nil {
		form.Slug = *r.Slug
	}
	for _, fr := range r.Fields {
		fieldID := fr.ID
		field := codec.PersistedField{
			ID:          &fieldID,
			Type:        fr.Type,
			Label:       fr.Label,
			Placeholder: fr.Placeholder,
			IsRequired:  fr.IsRequired,
			OrderIndex:  fr.OrderIndex,
			Note:        fr.Note,
		}
		if len(fr.Options) > 0 {
			if err := json.Unmarshal(fr.Options, &field.Options); err != nil {
				return codec.PersistedForm{}, fmt.Errorf("gormstore: options of field %d: %w", fr.ID, err)
			}
		}
		form.Fields = append(form.Fields, field)
	}
	return form, nil
}

func fieldColumns(field codec.PersistedField) (map[string]any, error) {
	var options datatypes.JSON
	if field.Options != nil {
		raw, err := json.Marshal(field.Options)
		if err != nil {
			return nil, fmt.Errorf("gormstore: encode options: %w", err)
		}
		options = datatypes.JSON(raw)
	}
	return map[string]any{
		"type":        field.Type,
		"label":       field.Label,
		"placeholder": field.Placeholder,
		"is_required": field.IsRequired,
		"order_index": field.OrderIndex,
		"note":        field.Note,
		"options":     options,
	}, nil
}

func slugColumn(slug string) *string {
	if slug == "" {
		return nil
	}
	return &slug
}
