package flow

import (
	"fmt"

	"github.com/goliatone/go-formstudio/pkg/model"
)

// Option configures an Engine or Session.
type Option func(*config)

type config struct {
	structuralBack bool
	stepSize       int
}

// WithStructuralBack makes Back step through questions in document order
// (Terminal goes back to the last question) instead of replaying the path
// that was actually visited.
func WithStructuralBack() Option {
	return func(c *config) {
		c.structuralBack = true
	}
}

// WithStepSize sets how many ordinary fields a Session shows per page.
// Values below one show every ordinary field on a single page.
func WithStepSize(n int) Option {
	return func(c *config) {
		c.stepSize = n
	}
}

func newConfig(options []Option) config {
	var cfg config
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// Engine is the question-stage state machine for one fill session.
type Engine struct {
	doc       model.Document
	questions []model.Field
	position  map[model.Ref]int

	cfg     config
	state   State
	path    []model.Ref
	answers map[model.Ref]string
	cycle   bool
}

// NewEngine starts a session positioned on the first question of doc.
func NewEngine(doc model.Document, options ...Option) *Engine {
	doc = doc.Reindexed()
	questions := doc.QuestionFields()
	position := make(map[model.Ref]int, len(questions))
	for i, q := range questions {
		position[q.Identity] = i
	}
	return &Engine{
		doc:       doc,
		questions: questions,
		position:  position,
		cfg:       newConfig(options),
		state:     Initial(doc),
		answers:   make(map[model.Ref]string),
	}
}

// Document returns the form being walked.
func (e *Engine) Document() model.Document {
	return e.doc.Clone()
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Current returns the question currently asked. It reports false at Terminal.
func (e *Engine) Current() (model.Field, bool) {
	if e.state.Terminal {
		return model.Field{}, false
	}
	return e.questions[e.position[e.state.Question]].Clone(), true
}

// Questions returns the question fields in document order.
func (e *Engine) Questions() []model.Field {
	out := make([]model.Field, len(e.questions))
	for i, q := range e.questions {
		out[i] = q.Clone()
	}
	return out
}

// Answer returns the recorded value for a question.
func (e *Engine) Answer(question model.Ref) (string, bool) {
	v, ok := e.answers[question]
	return v, ok
}

// Answers returns a copy of every recorded answer keyed by question.
func (e *Engine) Answers() map[model.Ref]string {
	out := make(map[model.Ref]string, len(e.answers))
	for k, v := range e.answers {
		out[k] = v
	}
	return out
}

// Path returns the questions answered on the way to the current state.
func (e *Engine) Path() []model.Ref {
	return append([]model.Ref(nil), e.path...)
}

// CycleDetected reports whether the flow was cut short by a question loop.
func (e *Engine) CycleDetected() bool {
	return e.cycle
}

// Select advances using the option of the current question whose value
// matches. The first matching option wins.
func (e *Engine) Select(value string) (Transition, error) {
	current, ok := e.Current()
	if !ok {
		return Transition{}, ErrTerminal
	}
	opt, ok := current.OptionByValue(value)
	if !ok {
		return Transition{}, fmt.Errorf("%w: %q on %s", ErrUnknownOption, value, current.Identity)
	}
	return e.Advance(opt)
}

// SelectIndex advances using the option at index of the current question.
func (e *Engine) SelectIndex(index int) (Transition, error) {
	current, ok := e.Current()
	if !ok {
		return Transition{}, ErrTerminal
	}
	if index < 0 || index >= len(current.Options) {
		return Transition{}, fmt.Errorf("%w: index %d on %s", ErrUnknownOption, index, current.Identity)
	}
	return e.Advance(current.Options[index])
}

// Advance records opt.Value as the answer to the current question and moves
// to the next state.
func (e *Engine) Advance(opt model.Option) (Transition, error) {
	if e.state.Terminal {
		return Transition{}, ErrTerminal
	}
	from := e.state
	e.answers[from.Question] = opt.Value
	e.path = append(e.path, from.Question)

	// Revisits are allowed until the path outgrows every question plus one
	// hop; past that the flow is looping and ends.
	to, reason := Next(e.doc, from.Question, opt)
	if !to.Terminal && len(e.path) > len(e.questions)+1 {
		to, reason = TerminalState(), ReasonCycle
		e.cycle = true
	}
	e.state = to

	return Transition{From: from, To: to, Answer: opt.Value, Reason: reason}, nil
}

// Back moves one question back and reports whether the state changed.
// Recorded answers are kept.
func (e *Engine) Back() bool {
	if e.cfg.structuralBack {
		return e.structuralBack()
	}
	if len(e.path) == 0 {
		return false
	}
	last := e.path[len(e.path)-1]
	e.path = e.path[:len(e.path)-1]
	e.state = AtQuestion(last)
	e.cycle = false
	return true
}

func (e *Engine) structuralBack() bool {
	if len(e.questions) == 0 {
		return false
	}
	var target model.Ref
	if e.state.Terminal {
		target = e.questions[len(e.questions)-1].Identity
	} else {
		pos := e.position[e.state.Question]
		if pos == 0 {
			return false
		}
		target = e.questions[pos-1].Identity
	}
	// Keep only the answers given before target in document order.
	limit := e.position[target]
	for i, ref := range e.path {
		if ref == target || e.position[ref] >= limit {
			e.path = e.path[:i]
			break
		}
	}
	e.state = AtQuestion(target)
	e.cycle = false
	return true
}
