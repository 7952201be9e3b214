package preview

import (
	"bytes"
	"embed"
	"fmt"
	"io"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var builtinTemplates embed.FS

// Format selects the summary template.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

var templateFiles = map[Format]string{
	FormatText: "templates/summary.txt.tpl",
	FormatHTML: "templates/summary.html.tpl",
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	overrides map[Format]string
}

// WithTemplate replaces the built-in template for format with source.
func WithTemplate(format Format, source string) Option {
	return func(c *config) {
		if c.overrides == nil {
			c.overrides = make(map[Format]string)
		}
		c.overrides[format] = source
	}
}

// Renderer executes summary templates. It is safe for concurrent use.
type Renderer struct {
	templates map[Format]*pongo2.Template
}

// New compiles the built-in templates and any overrides.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	set := pongo2.NewSet("preview", pongo2.NewFSLoader(builtinTemplates))
	r := &Renderer{templates: make(map[Format]*pongo2.Template, len(templateFiles))}
	for format, file := range templateFiles {
		tpl, err := set.FromFile(file)
		if err != nil {
			return nil, fmt.Errorf("preview: parse %s: %w", file, err)
		}
		r.templates[format] = tpl
	}
	for format, source := range cfg.overrides {
		tpl, err := set.FromString(source)
		if err != nil {
			return nil, fmt.Errorf("preview: parse %s override: %w", format, err)
		}
		r.templates[format] = tpl
	}
	return r, nil
}

// Render writes the summary in format to w.
func (r *Renderer) Render(w io.Writer, summary Summary, format Format) error {
	tpl, ok := r.templates[format]
	if !ok {
		return fmt.Errorf("preview: unknown format %q", format)
	}
	if err := tpl.ExecuteWriter(pongo2.Context{"summary": summary}, w); err != nil {
		return fmt.Errorf("preview: render %s: %w", format, err)
	}
	return nil
}

// String renders the summary in format and returns it.
func (r *Renderer) String(summary Summary, format Format) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, summary, format); err != nil {
		return "", err
	}
	return buf.String(), nil
}
