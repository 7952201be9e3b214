package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-formstudio/pkg/model"
)

// Snapshot is the serialisable progress of a Session. Field references are
// stored as model.Ref keys.
type Snapshot struct {
	FormID        *int64            `json:"formId,omitempty"`
	Phase         Phase             `json:"phase"`
	Terminal      bool              `json:"terminal"`
	Question      string            `json:"question,omitempty"`
	Path          []string          `json:"path,omitempty"`
	Answers       map[string]string `json:"answers,omitempty"`
	Values        map[string]string `json:"values,omitempty"`
	Step          int               `json:"step"`
	CycleDetected bool              `json:"cycleDetected,omitempty"`
}

// Snapshot captures the session progress.
func (s *Session) Snapshot() Snapshot {
	e := s.engine
	snap := Snapshot{
		FormID:        e.doc.ID,
		Phase:         s.phase,
		Terminal:      e.state.Terminal,
		Step:          s.pager.Step(),
		CycleDetected: e.cycle,
	}
	if !e.state.Terminal {
		snap.Question = e.state.Question.Key()
	}
	for _, ref := range e.path {
		snap.Path = append(snap.Path, ref.Key())
	}
	if len(e.answers) > 0 {
		snap.Answers = make(map[string]string, len(e.answers))
		for ref, v := range e.answers {
			snap.Answers[ref.Key()] = v
		}
	}
	if len(s.values) > 0 {
		snap.Values = make(map[string]string, len(s.values))
		for ref, v := range s.values {
			snap.Values[ref.Key()] = v
		}
	}
	return snap
}

// Restore rebuilds a session for doc from a snapshot. It fails with
// ErrStaleSnapshot when the snapshot names fields doc no longer has.
func Restore(doc model.Document, snap Snapshot, options ...Option) (*Session, error) {
	s := NewSession(doc, options...)
	e := s.engine

	question := func(key string) (model.Ref, error) {
		ref, err := model.ParseRefKey(key)
		if err != nil {
			return model.Ref{}, fmt.Errorf("%w: %v", ErrStaleSnapshot, err)
		}
		if _, ok := e.position[ref]; !ok {
			return model.Ref{}, fmt.Errorf("%w: %s is not a question", ErrStaleSnapshot, ref)
		}
		return ref, nil
	}

	if snap.Terminal {
		e.state = TerminalState()
	} else {
		ref, err := question(snap.Question)
		if err != nil {
			return nil, err
		}
		e.state = AtQuestion(ref)
	}
	for _, key := range snap.Path {
		ref, err := question(key)
		if err != nil {
			return nil, err
		}
		e.path = append(e.path, ref)
	}
	for key, v := range snap.Answers {
		ref, err := question(key)
		if err != nil {
			return nil, err
		}
		e.answers[ref] = v
	}
	for key, v := range snap.Values {
		ref, err := model.ParseRefKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStaleSnapshot, err)
		}
		if err := s.SetValue(ref, v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStaleSnapshot, err)
		}
	}
	e.cycle = snap.CycleDetected

	switch snap.Phase {
	case PhaseFields:
		if !e.state.Terminal {
			return nil, fmt.Errorf("%w: field phase outside terminal state", ErrStaleSnapshot)
		}
		s.phase = PhaseFields
		s.pager.Seek(snap.Step)
	default:
		s.phase = PhaseQuestions
		if e.state.Terminal {
			s.phase = PhaseFields
		}
	}
	return s, nil
}

// SnapshotStore parks session progress between requests.
type SnapshotStore interface {
	Get(ctx context.Context, id string) (Snapshot, error)
	Set(ctx context.Context, id string, snap Snapshot) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a process-local SnapshotStore.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Snapshot
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Snapshot)}
}

var _ SnapshotStore = (*MemoryStore)(nil)

// Get returns the snapshot stored under id.
func (m *MemoryStore) Get(ctx context.Context, id string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.items[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return snap, nil
}

// Set stores snap under id.
func (m *MemoryStore) Set(ctx context.Context, id string, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = snap
	return nil
}

// Delete removes the snapshot stored under id.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}
