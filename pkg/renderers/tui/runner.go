// Package tui fills forms in a terminal. Questions are asked one at a time
// following the conditional flow, then ordinary fields page by page.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/model"
)

const (
	defaultBackLabel = "« Back"
	skipLabel        = "(skip)"
	continueLabel    = "Continue"
	finishLabel      = "Finish"
)

// Runner drives flow sessions through a PromptDriver.
type Runner struct {
	driver      PromptDriver
	theme       Theme
	backLabel   string
	flowOptions []flow.Option
}

// New constructs a runner with the survey driver on stdout.
func New(options ...Option) *Runner {
	r := &Runner{
		driver:    NewSurveyDriver(nil),
		backLabel: defaultBackLabel,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Fill runs a complete session over doc and returns it once the last page
// of ordinary fields has been answered.
func (r *Runner) Fill(ctx context.Context, doc model.Document) (*flow.Session, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	session := flow.NewSession(doc, r.flowOptions...)
	if err := r.Resume(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Resume continues session until it is complete.
func (r *Runner) Resume(ctx context.Context, session *flow.Session) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if session.Phase() == flow.PhaseQuestions {
			if err := r.askQuestion(ctx, session); err != nil {
				return err
			}
			continue
		}

		page := session.Page()
		for _, field := range page {
			value, err := r.askField(ctx, field)
			if err != nil {
				return err
			}
			if err := session.SetValue(field.Identity, value); err != nil {
				return err
			}
		}
		if len(page) > 0 {
			back, err := r.askPageNav(ctx, session)
			if err != nil {
				return err
			}
			if back && session.Previous() {
				continue
			}
		}
		if session.Complete() {
			return nil
		}
		if _, err := session.Next(); err != nil {
			return err
		}
	}
}

// askPageNav reports whether the user chose to go back after a page. The
// first page steps back into the question flow.
func (r *Runner) askPageNav(ctx context.Context, session *flow.Session) (bool, error) {
	pager := session.Pager()
	canBack := pager.Step() > 0 || len(session.Engine().Path()) > 0
	if r.backLabel == "" || !canBack {
		return false, nil
	}
	forward := continueLabel
	if session.Complete() {
		forward = finishLabel
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message: fmt.Sprintf("Page %d of %d", pager.Step()+1, pager.Pages()),
		Options: []string{forward, r.backLabel},
	})
	if err != nil {
		return false, err
	}
	return idx == 1, nil
}

func (r *Runner) askQuestion(ctx context.Context, session *flow.Session) error {
	engine := session.Engine()
	question, ok := engine.Current()
	if !ok {
		return fmt.Errorf("tui: no current question in %s", session.State())
	}
	if len(question.Options) == 0 {
		tr, err := session.Skip()
		if err != nil {
			return err
		}
		return r.afterAnswer(ctx, tr)
	}

	labels := optionLabels(question.Options)
	canBack := r.backLabel != "" && len(engine.Path()) > 0
	if canBack {
		labels = append(labels, r.backLabel)
	}
	defaultIndex := 0
	if prev, ok := engine.Answer(question.Identity); ok {
		for i, opt := range question.Options {
			if opt.Value == prev {
				defaultIndex = i
				break
			}
		}
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      question.Label,
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         question.Note,
	})
	if err != nil {
		return err
	}
	if canBack && idx == len(labels)-1 {
		session.Previous()
		return nil
	}
	if idx < 0 || idx >= len(question.Options) {
		return fmt.Errorf("%w: %d", ErrNoSelection, idx)
	}

	tr, err := session.AnswerIndex(idx)
	if err != nil {
		return err
	}
	return r.afterAnswer(ctx, tr)
}

func (r *Runner) afterAnswer(ctx context.Context, tr flow.Transition) error {
	if tr.Reason == flow.ReasonCycle {
		return r.info(ctx, "The question flow looped back on itself; moving on to the remaining fields.")
	}
	return nil
}

func (r *Runner) askField(ctx context.Context, field model.Field) (string, error) {
	label := field.Label
	if field.IsRequired {
		label += " *"
	}

	switch field.Type {
	case model.FieldTypeSelect, model.FieldTypeRadio:
		labels := optionLabels(field.Options)
		if !field.IsRequired {
			labels = append(labels, skipLabel)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: labels, Help: field.Note})
		if err != nil {
			return "", err
		}
		if idx >= 0 && idx < len(field.Options) {
			return field.Options[idx].Value, nil
		}
		if !field.IsRequired {
			return "", nil
		}
		return "", fmt.Errorf("%w: %d", ErrNoSelection, idx)

	case model.FieldTypeCheckbox:
		for {
			picked, err := r.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: optionLabels(field.Options), Help: field.Note})
			if err != nil {
				return "", err
			}
			values := make([]string, 0, len(picked))
			for _, idx := range picked {
				if idx >= 0 && idx < len(field.Options) {
					values = append(values, field.Options[idx].Value)
				}
			}
			if field.IsRequired && len(values) == 0 {
				if err := r.problem(ctx, field, errRequired); err != nil {
					return "", err
				}
				continue
			}
			return strings.Join(values, ","), nil
		}

	case model.FieldTypeTextarea:
		validate := fieldValidator(field)
		for {
			text, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Help: field.Note})
			if err != nil {
				return "", err
			}
			if err := validate(text); err != nil {
				if err := r.problem(ctx, field, err); err != nil {
					return "", err
				}
				continue
			}
			return text, nil
		}

	default:
		validate := fieldValidator(field)
		for {
			text, err := r.driver.Input(ctx, InputConfig{Message: label, Help: helpText(field), Validator: validate})
			if err != nil {
				return "", err
			}
			// Drivers without inline validation land here.
			if err := validate(text); err != nil {
				if err := r.problem(ctx, field, err); err != nil {
					return "", err
				}
				continue
			}
			return strings.TrimSpace(text), nil
		}
	}
}

func (r *Runner) problem(ctx context.Context, field model.Field, err error) error {
	return r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %v", r.theme.ErrorPrefix, field.Label, err))
}

func (r *Runner) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func optionLabels(options []model.Option) []string {
	labels := make([]string, len(options))
	for i, opt := range options {
		labels[i] = opt.Label
	}
	return labels
}

func helpText(field model.Field) string {
	switch {
	case field.Note != "" && field.Placeholder != "":
		return field.Note + " (e.g. " + field.Placeholder + ")"
	case field.Placeholder != "":
		return "e.g. " + field.Placeholder
	default:
		return field.Note
	}
}
