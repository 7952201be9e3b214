package tui

import "github.com/goliatone/go-formstudio/pkg/flow"

// Theme captures optional message prefixes the runner applies when printing.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithFlowOptions configures the sessions the runner starts.
func WithFlowOptions(options ...flow.Option) Option {
	return func(r *Runner) {
		r.flowOptions = append(r.flowOptions, options...)
	}
}

// WithBackLabel renames the extra choice that steps back a question.
// An empty label hides it.
func WithBackLabel(label string) Option {
	return func(r *Runner) {
		r.backLabel = label
	}
}
