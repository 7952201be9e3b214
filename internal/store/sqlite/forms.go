package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goliatone/go-formstudio/pkg/codec"
	"github.com/goliatone/go-formstudio/pkg/store"
)

// Store implements store.Store on a migrated SQLite database.
type Store struct {
	db     *sql.DB
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
func New(db *sql.DB, options ...Option) *Store {
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

// Load reads a form and its fields ordered by orderIndex.
func (s *Store) Load(ctx context.Context, id int64) (codec.PersistedForm, error) {
	var (
		form codec.PersistedForm
		slug sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT title, slug, description, status FROM forms WHERE id = ?`, id,
	).Scan(&form.Title, &slug, &form.Description, &form.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return codec.PersistedForm{}, fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	if err != nil {
		return codec.PersistedForm{}, fmt.Errorf("sqlite: load form %d: %w", id, err)
	}
	form.ID = &id
	form.Slug = slug.String

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, label, placeholder, is_required, order_index, note, options
		 FROM form_fields WHERE form_id = ? ORDER BY order_index, id`, id)
	if err != nil {
		return codec.PersistedForm{}, fmt.Errorf("sqlite: load fields of %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			field   codec.PersistedField
			fieldID int64
			options sql.NullString
		)
		if err := rows.Scan(&fieldID, &field.Type, &field.Label, &field.Placeholder,
			&field.IsRequired, &field.OrderIndex, &field.Note, &options); err != nil {
			return codec.PersistedForm{}, fmt.Errorf("sqlite: scan field: %w", err)
		}
		field.ID = &fieldID
		if options.Valid {
			if err := json.Unmarshal([]byte(options.String), &field.Options); err != nil {
				return codec.PersistedForm{}, fmt.Errorf("sqlite: options of field %d: %w", fieldID, err)
			}
		}
		form.Fields = append(form.Fields, field)
	}
	if err := rows.Err(); err != nil {
		return codec.PersistedForm{}, fmt.Errorf("sqlite: iterate fields: %w", err)
	}
	if form.Fields == nil {
		form.Fields = []codec.PersistedField{}
	}
	return form, nil
}

// Save validates form and writes it in one transaction.
func (s *Store) Save(ctx context.Context, form codec.PersistedForm) (codec.PersistedForm, error) {
	form, err := store.Prepare(form)
	if err != nil {
		return codec.PersistedForm{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return codec.PersistedForm{}, fmt.Errorf("sqlite: begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var formID int64
	if form.ID != nil {
		formID = *form.ID
		var found int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM forms WHERE id = ?`, formID).Scan(&found); err != nil {
			return codec.PersistedForm{}, fmt.Errorf("sqlite: check form %d: %w", formID, err)
		}
		if found == 0 {
			return codec.PersistedForm{}, fmt.Errorf("%w: %d", store.ErrNotFound, formID)
		}
	}

	existing, err := fieldIDs(ctx, tx, formID)
	if err != nil {
		return codec.PersistedForm{}, err
	}
	if err := checkConflicts(ctx, tx, formID, form, existing); err != nil {
		return codec.PersistedForm{}, err
	}

	ts := now()
	slug := sql.NullString{String: form.Slug, Valid: form.Slug != ""}
	if form.ID == nil {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO forms (title, slug, description, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			form.Title, slug, form.Description, form.Status, ts, ts)
		if err != nil {
			return codec.PersistedForm{}, fmt.Errorf("sqlite: insert form: %w", err)
		}
		if formID, err = res.LastInsertId(); err != nil {
			return codec.PersistedForm{}, fmt.Errorf("sqlite: last insert id: %w", err)
		}
		form.ID = &formID
	} else if _, err := tx.ExecContext(ctx,
		`UPDATE forms SET title = ?, slug = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		form.Title, slug, form.Description, form.Status, ts, formID); err != nil {
		return codec.PersistedForm{}, fmt.Errorf("sqlite: update form %d: %w", formID, err)
	}

	kept := make(map[int64]struct{}, len(form.Fields))
	for i := range form.Fields {
		if err := writeField(ctx, tx, formID, &form.Fields[i]); err != nil {
			return codec.PersistedForm{}, err
		}
		kept[*form.Fields[i].ID] = struct{}{}
	}
	removed := 0
	for id := range existing {
		if _, ok := kept[id]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM form_fields WHERE id = ?`, id); err != nil {
			return codec.PersistedForm{}, fmt.Errorf("sqlite: delete field %d: %w", id, err)
		}
		removed++
	}

	if err := tx.Commit(); err != nil {
		return codec.PersistedForm{}, fmt.Errorf("sqlite: commit save: %w", err)
	}
	s.logger.DebugContext(ctx, "form saved", "form_id", formID, "fields", len(form.Fields), "removed_fields", removed)
	return form, nil
}

// List returns every form ordered by id.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, COALESCE(slug, ''), status FROM forms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list forms: %w", err)
	}
	defer rows.Close()

	out := []store.Summary{}
	for rows.Next() {
		var sum store.Summary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Slug, &sum.Status); err != nil {
			return nil, fmt.Errorf("sqlite: scan form: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func fieldIDs(ctx context.Context, tx *sql.Tx, formID int64) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	if formID == 0 {
		return ids, nil
	}
	rows, err := tx.QueryContext(ctx, `SELECT id FROM form_fields WHERE form_id = ?`, formID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list fields of %d: %w", formID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan field id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func checkConflicts(ctx context.Context, tx *sql.Tx, formID int64, form codec.PersistedForm, existing map[int64]struct{}) error {
	verr := &store.ValidationError{}
	if form.Slug != "" {
		var taken int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM forms WHERE slug = ? AND id != ?`, form.Slug, formID,
		).Scan(&taken); err != nil {
			return fmt.Errorf("sqlite: check slug: %w", err)
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

func writeField(ctx context.Context, tx *sql.Tx, formID int64, field *codec.PersistedField) error {
	var options sql.NullString
	if field.Options != nil {
		raw, err := json.Marshal(field.Options)
		if err != nil {
			return fmt.Errorf("sqlite: encode options: %w", err)
		}
		options = sql.NullString{String: string(raw), Valid: true}
	}

	if field.ID != nil {
		_, err := tx.ExecContext(ctx,
			`UPDATE form_fields SET type = ?, label = ?, placeholder = ?, is_required = ?,
			 order_index = ?, note = ?, options = ? WHERE id = ?`,
			field.Type, field.Label, field.Placeholder, field.IsRequired,
			field.OrderIndex, field.Note, options, *field.ID)
		if err != nil {
			return fmt.Errorf("sqlite: update field %d: %w", *field.ID, err)
		}
		return nil
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO form_fields (form_id, type, label, placeholder, is_required, order_index, note, options)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		formID, field.Type, field.Label, field.Placeholder, field.IsRequired,
		field.OrderIndex, field.Note, options)
	if err != nil {
		return fmt.Errorf("sqlite: insert field: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: last insert id: %w", err)
	}
	field.ID = &id
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
