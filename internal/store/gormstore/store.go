// Package gormstore stores forms in PostgreSQL through gorm. Options are kept
// inline as a jsonb column.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goliatone/go-formstudio/pkg/codec"
	"github.com/goliatone/go-formstudio/pkg/store"
)

// Open connects to PostgreSQL. Gorm's own logging goes through slog at warn.
func Open(dsn string, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.Default()
	}
	gormLogger := logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gormstore: sql handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Migrate creates or updates the form tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&formRecord{}, &fieldRecord{}); err != nil {
		return fmt.Errorf("gormstore: migrate: %w", err)
	}
	return nil
}

// Store implements store.Store on gorm.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for save diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wraps db. Migrate must have run.
func New(db *gorm.DB, options ...Option) *Store {
	s := &Store{db: db, logger: slog.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Lister = (*Store)(nil)
)

// Load reads a form with its fields ordered by orderIndex.
func (s *Store) Load(ctx context.Context, id int64) (codec.PersistedForm, error) {
	var rec formRecord
	err := s.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("order_index, id") }).
		First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return codec.PersistedForm{}, fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	if err != nil {
		return codec.PersistedForm{}, fmt.Errorf("gormstore: load form %d: %w", id, err)
	}
	return rec.persisted()
}

// Save validates form and writes it in one transaction.
func (s *Store) Save(ctx context.Context, form codec.PersistedForm) (codec.PersistedForm, error) {
	form, err := store.Prepare(form)
	if err != nil {
		return codec.PersistedForm{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.save(tx, &form)
	})
	if err != nil {
		return codec.PersistedForm{}, err
	}
	s.logger.DebugContext(ctx, "form saved", "form_id", *form.ID, "fields", len(form.Fields))
	return form, nil
}

func (s *Store) save(tx *gorm.DB, form *codec.PersistedForm) error {
	var formID int64
	existing := map[int64]struct{}{}
	if form.ID != nil {
		formID = *form.ID
		var rec formRecord
		if err := tx.Select("id").First(&rec, formID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", store.ErrNotFound, formID)
			}
			return fmt.Errorf("gormstore: check form %d: %w", formID, err)
		}
		var ids []int64
		if err := tx.Model(&fieldRecord{}).Where("form_id = ?", formID).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("gormstore: list fields of %d: %w", formID, err)
		}
		for _, id := range ids {
			existing[id] = struct{}{}
		}
	}

	if err := checkConflicts(tx, formID, *form, existing); err != nil {
		return err
	}

	if form.ID == nil {
		rec := formRecord{
			Title:       form.Title,
			Slug:        slugColumn(form.Slug),
			Description: form.Description,
			Status:      form.Status,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("gormstore: insert form: %w", err)
		}
		formID = rec.ID
		form.ID = &formID
	} else {
		err := tx.Model(&formRecord{ID: formID}).Updates(map[string]any{
			"title":       form.Title,
			"slug":        slugColumn(form.Slug),
			"description": form.Description,
			"status":      form.Status,
		}).Error
		if err != nil {
			return fmt.Errorf("gormstore: update form %d: %w", formID, err)
		}
	}

	kept := make([]int64, 0, len(form.Fields))
	for i := range form.Fields {
		if err := writeField(tx, formID, &form.Fields[i]); err != nil {
			return err
		}
		kept = append(kept, *form.Fields[i].ID)
	}

	stale := tx.Where("form_id = ?", formID)
	if len(kept) > 0 {
		stale = stale.Where("id NOT IN ?", kept)
	}
	if err := stale.Delete(&fieldRecord{}).Error; err != nil {
		return fmt.Errorf("gormstore: delete removed fields: %w", err)
	}
	return nil
}

// List returns every form ordered by id.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	var recs []formRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list forms: %w", err)
	}
	out := make([]store.Summary, 0, len(recs))
	for _, rec := range recs {
		sum := store.Summary{ID: rec.ID, Title: rec.Title, Status: rec.Status}
		if rec.Slug != nil {
			sum.Slug = *rec.Slug
		}
		out = append(out, sum)
	}
	return out, nil
}

func checkConflicts(tx *gorm.DB, formID int64, form codec.PersistedForm, existing map[int64]struct{}) error {
	verr := &store.ValidationError{}
	if form.Slug != "" {
		var taken int64
		if err := tx.Model(&formRecord{}).Where("slug = ? AND id <> ?", form.Slug, formID).Count(&taken).Error; err != nil {
			return fmt.Errorf("gormstore: check slug: %w", err)
		}
		if taken > 0 {
			verr.Add("slug", "%q is taken", form.Slug)
		}
	}
	for i, field := range form.Fields {
		if field.ID == nil {
			continue
		}
		if _, ok := existing[*field.ID]; !ok {
			verr.Add(fmt.Sprintf("fields[%d].id", i), "unknown field %d", *field.ID)
		}
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

func writeField(tx *gorm.DB, formID int64, field *codec.PersistedField) error {
	columns, err := fieldColumns(*field)
	if err != nil {
		return err
	}
	if field.ID != nil {
		if err := tx.Model(&fieldRecord{ID: *field.ID}).Updates(columns).Error; err != nil {
			return fmt.Errorf("gormstore: update field %d: %w", *field.ID, err)
		}
		return nil
	}

	rec := fieldRecord{
		FormID:      formID,
		Type:        field.Type,
		Label:       field.Label,
		Placeholder: field.Placeholder,
		IsRequired:  field.IsRequired,
		OrderIndex:  field.OrderIndex,
		Note:        field.Note,
		Options:     columns["options"].(datatypes.JSON),
	}
	if err := tx.Create(&rec).Error; err != nil {
		return fmt.Errorf("gormstore: insert field: %w", err)
	}
	field.ID = &rec.ID
	return nil
}
