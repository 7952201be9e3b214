package flow

import (
	"fmt"

	"github.com/goliatone/go-formstudio/pkg/model"
)

// State is either a question of the form or Terminal.
type State struct {
	Terminal bool
	Question model.Ref
}

// AtQuestion returns the state positioned on the given question.
func AtQuestion(ref model.Ref) State {
	return State{Question: ref}
}

// TerminalState returns the end-of-questions state.
func TerminalState() State {
	return State{Terminal: true}
}

func (s State) String() string {
	if s.Terminal {
		return "terminal"
	}
	return fmt.Sprintf("question(%s)", s.Question.Key())
}

// Reason explains which rule produced a transition.
type Reason string

const (
	// ReasonEnd: the picked option ends the flow.
	ReasonEnd Reason = "end"
	// ReasonExplicit: the picked option names an existing question.
	ReasonExplicit Reason = "explicit"
	// ReasonSequential: no target, continue in document order.
	ReasonSequential Reason = "sequential"
	// ReasonDangling: the target no longer resolves, continue in order.
	ReasonDangling Reason = "dangling"
	// ReasonCycle: the path outgrew the hop limit; the flow ends.
	ReasonCycle Reason = "cycle"
)

// Transition describes one Advance.
type Transition struct {
	From   State
	To     State
	Answer string
	Reason Reason
}

// Fallback reports whether the transition ignored an explicit target.
func (t Transition) Fallback() bool {
	return t.Reason == ReasonDangling
}

// Next is the pure transition function. It computes the state following
// question from when opt is picked, without recording anything.
func Next(doc model.Document, from model.Ref, opt model.Option) (State, Reason) {
	if opt.IsEnd {
		return TerminalState(), ReasonEnd
	}
	if target, ok := doc.ResolveQuestion(opt.NextQuestion); ok {
		return AtQuestion(target.Identity), ReasonExplicit
	}

	reason := ReasonSequential
	if opt.NextQuestion != nil {
		reason = ReasonDangling
	}

	questions := doc.QuestionFields()
	for i, q := range questions {
		if q.Identity != from {
			continue
		}
		if i+1 < len(questions) {
			return AtQuestion(questions[i+1].Identity), reason
		}
		return TerminalState(), reason
	}
	return TerminalState(), reason
}

// Initial returns the first question of doc, or Terminal when it has none.
func Initial(doc model.Document) State {
	questions := doc.QuestionFields()
	if len(questions) == 0 {
		return TerminalState()
	}
	return AtQuestion(questions[0].Identity)
}
