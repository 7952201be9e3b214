package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-formstudio/pkg/codec"
)

// Memory is a process-local Store.
type Memory struct {
	mu        sync.RWMutex
	forms     map[int64]codec.PersistedForm
	owners    map[int64]int64
	nextForm  int64
	nextField int64
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		forms:  make(map[int64]codec.PersistedForm),
		owners: make(map[int64]int64),
	}
}

var (
	_ Store  = (*Memory)(nil)
	_ Lister = (*Memory)(nil)
)

// Load returns the form stored under id.
func (m *Memory) Load(ctx context.Context, id int64) (codec.PersistedForm, error) {
	if err := ctx.Err(); err != nil {
		return codec.PersistedForm{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	form, ok := m.forms[id]
	if !ok {
		return codec.PersistedForm{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return form.Clone(), nil
}

// Save validates and stores form.
func (m *Memory) Save(ctx context.Context, form codec.PersistedForm) (codec.PersistedForm, error) {
	if err := ctx.Err(); err != nil {
		return codec.PersistedForm{}, err
	}
	form, err := Prepare(form)
	if err != nil {
		return codec.PersistedForm{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var formID int64
	if form.ID != nil {
		formID = *form.ID
		if _, ok := m.forms[formID]; !ok {
			return codec.PersistedForm{}, fmt.Errorf("%w: %d", ErrNotFound, formID)
		}
	}

	verr := &ValidationError{}
	if form.Slug != "" {
		for id, other := range m.forms {
			if id != formID && other.Slug == form.Slug {
				verr.Add("slug", "%q is taken", form.Slug)
			}
		}
	}
	for i, field := range form.Fields {
		if field.ID == nil {
			continue
		}
		if owner, ok := m.owners[*field.ID]; !ok || owner != formID {
			verr.Add(fmt.Sprintf("fields[%d].id", i), "unknown field %d", *field.ID)
		}
	}
	if len(verr.Problems) > 0 {
		return codec.PersistedForm{}, verr
	}

	if form.ID == nil {
		m.nextForm++
		formID = m.nextForm
		form.ID = &formID
	}

	kept := make(map[int64]struct{}, len(form.Fields))
	for i := range form.Fields {
		if form.Fields[i].ID == nil {
			m.nextField++
			id := m.nextField
			form.Fields[i].ID = &id
			m.owners[id] = formID
		}
		kept[*form.Fields[i].ID] = struct{}{}
	}
	for fieldID, owner := range m.owners {
		if _, ok := kept[fieldID]; owner == formID && !ok {
			delete(m.owners, fieldID)
		}
	}

	m.forms[formID] = form.Clone()
	return form, nil
}

// List returns every stored form ordered by id.
func (m *Memory) List(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.forms))
	for id, form := range m.forms {
		out = append(out, Summary{ID: id, Title: form.Title, Slug: form.Slug, Status: form.Status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
