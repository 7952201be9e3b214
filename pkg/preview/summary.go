package preview

import (
	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/model"
)

// Entry is one answered question or ordinary field.
type Entry struct {
	Ref      string
	Label    string
	Value    string
	Answer   string
	Required bool
	Missing  bool
}

// Summary is the data handed to the templates.
type Summary struct {
	Title       string
	Description string
	Questions   []Entry
	Fields      []Entry
	Ended       bool
	Cycle       bool
}

// Build summarises doc. Questions are listed in the order given by path,
// falling back to document order for answered questions not on it. Answers
// show the label of the picked option.
func Build(doc model.Document, path []model.Ref, answers, values map[model.Ref]string) Summary {
	sum := Summary{Title: doc.Title, Description: doc.Description}

	listed := make(map[model.Ref]bool, len(answers))
	addQuestion := func(q model.Field) {
		value, ok := answers[q.Identity]
		if !ok || listed[q.Identity] {
			return
		}
		listed[q.Identity] = true
		entry := Entry{Ref: q.Identity.Key(), Label: q.Label, Value: value, Answer: value, Required: q.IsRequired}
		if opt, ok := q.OptionByValue(value); ok {
			entry.Answer = opt.Label
		}
		sum.Questions = append(sum.Questions, entry)
	}
	for _, ref := range path {
		if q, ok := doc.ResolveQuestion(&ref); ok {
			addQuestion(q)
		}
	}
	for _, q := range doc.QuestionFields() {
		addQuestion(q)
	}

	for _, f := range doc.OrdinaryFields() {
		value := values[f.Identity]
		entry := Entry{Ref: f.Identity.Key(), Label: f.Label, Value: value, Answer: value, Required: f.IsRequired}
		if opt, ok := f.OptionByValue(value); ok {
			entry.Answer = opt.Label
		}
		entry.Missing = f.IsRequired && value == ""
		sum.Fields = append(sum.Fields, entry)
	}
	return sum
}

// FromSession summarises a running or finished session.
func FromSession(s *flow.Session) Summary {
	engine := s.Engine()
	sum := Build(engine.Document(), engine.Path(), s.Answers(), s.Values())
	sum.Ended = engine.State().Terminal
	sum.Cycle = engine.CycleDetected()
	return sum
}
