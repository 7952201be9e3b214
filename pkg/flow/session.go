package flow

import (
	"fmt"

	"github.com/goliatone/go-formstudio/pkg/model"
)

// Phase names the stage a Session is in.
type Phase string

const (
	// PhaseQuestions: the branching question stage.
	PhaseQuestions Phase = "questions"
	// PhaseFields: the sequential ordinary field stage.
	PhaseFields Phase = "fields"
)

// Session drives a whole fill: questions first, then ordinary fields page
// by page.
type Session struct {
	engine   *Engine
	pager    *Pager
	ordinary []model.Field
	values   map[model.Ref]string
	phase    Phase
}

// NewSession starts filling doc.
func NewSession(doc model.Document, options ...Option) *Session {
	engine := NewEngine(doc, options...)
	ordinary := engine.doc.OrdinaryFields()
	s := &Session{
		engine:   engine,
		pager:    NewPager(len(ordinary), engine.cfg.stepSize),
		ordinary: ordinary,
		values:   make(map[model.Ref]string),
		phase:    PhaseQuestions,
	}
	if engine.State().Terminal {
		s.phase = PhaseFields
	}
	return s
}

// Engine exposes the question-stage engine.
func (s *Session) Engine() *Engine {
	return s.engine
}

// Phase returns the current stage.
func (s *Session) Phase() Phase {
	return s.phase
}

// State returns the question-stage state.
func (s *Session) State() State {
	return s.engine.State()
}

// Pager exposes the ordinary field cursor.
func (s *Session) Pager() *Pager {
	return s.pager
}

// Answer picks the option with value on the current question.
func (s *Session) Answer(value string) (Transition, error) {
	if s.phase != PhaseQuestions {
		return Transition{}, fmt.Errorf("%w: answer in %s", ErrWrongPhase, s.phase)
	}
	tr, err := s.engine.Select(value)
	if err != nil {
		return Transition{}, err
	}
	s.afterTransition(tr)
	return tr, nil
}

// AnswerIndex picks the option at index on the current question.
func (s *Session) AnswerIndex(index int) (Transition, error) {
	if s.phase != PhaseQuestions {
		return Transition{}, fmt.Errorf("%w: answer in %s", ErrWrongPhase, s.phase)
	}
	tr, err := s.engine.SelectIndex(index)
	if err != nil {
		return Transition{}, err
	}
	s.afterTransition(tr)
	return tr, nil
}

// Skip moves past a question without options as if an option with no
// target had been picked. The recorded answer is empty.
func (s *Session) Skip() (Transition, error) {
	if s.phase != PhaseQuestions {
		return Transition{}, fmt.Errorf("%w: skip in %s", ErrWrongPhase, s.phase)
	}
	current, ok := s.engine.Current()
	if !ok {
		return Transition{}, ErrTerminal
	}
	if len(current.Options) > 0 {
		return Transition{}, fmt.Errorf("%w: %s", ErrHasOptions, current.Identity)
	}
	tr, err := s.engine.Advance(model.Option{})
	if err != nil {
		return Transition{}, err
	}
	s.afterTransition(tr)
	return tr, nil
}

func (s *Session) afterTransition(tr Transition) {
	if tr.To.Terminal {
		s.phase = PhaseFields
		s.pager.Reset()
	}
}

// Next shows the next page of ordinary fields.
func (s *Session) Next() (bool, error) {
	if s.phase != PhaseFields {
		return false, fmt.Errorf("%w: next in %s", ErrWrongPhase, s.phase)
	}
	return s.pager.Next(), nil
}

// Previous goes back one step. On the first field page it re-enters the
// question flow through Engine.Back; in the question stage it is Back.
func (s *Session) Previous() bool {
	if s.phase == PhaseQuestions {
		return s.engine.Back()
	}
	if s.pager.Previous() {
		return true
	}
	if s.engine.Back() {
		s.phase = PhaseQuestions
		return true
	}
	return false
}

// Page returns the ordinary fields on the current page. It is empty while
// questions are still being asked.
func (s *Session) Page() []model.Field {
	if s.phase != PhaseFields {
		return nil
	}
	start, end := s.pager.Bounds()
	out := make([]model.Field, 0, end-start)
	for _, f := range s.ordinary[start:end] {
		out = append(out, f.Clone())
	}
	return out
}

// OrdinaryFields returns every ordinary field in order.
func (s *Session) OrdinaryFields() []model.Field {
	out := make([]model.Field, len(s.ordinary))
	for i, f := range s.ordinary {
		out[i] = f.Clone()
	}
	return out
}

// SetValue records the value typed into an ordinary field.
func (s *Session) SetValue(field model.Ref, value string) error {
	if !s.isOrdinary(field) {
		return fmt.Errorf("%w: %s", ErrNotOrdinaryField, field)
	}
	s.values[field] = value
	return nil
}

// Values returns the recorded ordinary field values.
func (s *Session) Values() map[model.Ref]string {
	out := make(map[model.Ref]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Answers returns the recorded question answers.
func (s *Session) Answers() map[model.Ref]string {
	return s.engine.Answers()
}

// Complete reports whether the session sits on the last ordinary page.
func (s *Session) Complete() bool {
	return s.phase == PhaseFields && s.pager.IsLast()
}

func (s *Session) isOrdinary(ref model.Ref) bool {
	for _, f := range s.ordinary {
		if f.Identity == ref {
			return true
		}
	}
	return false
}
