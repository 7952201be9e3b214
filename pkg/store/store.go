package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-formstudio/pkg/codec"
	"github.com/goliatone/go-formstudio/pkg/model"
)

// ErrNotFound is returned when a form id is unknown.
var ErrNotFound = errors.New("store: form not found")

// Store loads and saves persisted forms. Save assigns ids to the form and to
// fields that have none and returns the stored form.
type Store interface {
	Load(ctx context.Context, id int64) (codec.PersistedForm, error)
	Save(ctx context.Context, form codec.PersistedForm) (codec.PersistedForm, error)
}

// Summary is a listing entry.
type Summary struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

// Lister is implemented by stores that can enumerate forms.
type Lister interface {
	List(ctx context.Context) ([]Summary, error)
}

// Problem is one rejected attribute of a form.
type Problem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports why a form was rejected on save.
type ValidationError struct {
	Problems []Problem
}

// Empty reports whether no problem was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Problems) == 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Path+": "+p.Message)
	}
	return "store: invalid form: " + strings.Join(parts, "; ")
}

// Add records a problem at path.
func (e *ValidationError) Add(path, format string, args ...any) {
	e.Problems = append(e.Problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Prepare validates form and returns the copy a store should write: status
// defaulted, orderIndex rewritten from position. Stores call it before any
// id bookkeeping.
func Prepare(form codec.PersistedForm) (codec.PersistedForm, error) {
	out := form.Clone()
	verr := &ValidationError{}

	out.Title = strings.TrimSpace(out.Title)
	if out.Title == "" {
		verr.Add("title", "required")
	}
	if out.Slug != "" && !slugPattern.MatchString(out.Slug) {
		verr.Add("slug", "must be lowercase words separated by dashes")
	}
	status, err := model.ParseStatus(out.Status)
	if err != nil {
		verr.Add("status", "must be draft or published")
	}
	out.Status = string(status)

	seen := make(map[int64]struct{}, len(out.Fields))
	for i := range out.Fields {
		field := &out.Fields[i]
		field.OrderIndex = i
		path := fmt.Sprintf("fields[%d]", i)

		t, err := model.ParseFieldType(field.Type)
		if err != nil {
			verr.Add(path+".type", "unknown field type %q", field.Type)
		}
		field.Type = string(t)
		if field.ID != nil {
			if _, dup := seen[*field.ID]; dup {
				verr.Add(path+".id", "duplicate id %d", *field.ID)
			}
			seen[*field.ID] = struct{}{}
		}
		if len(field.Options) > 0 && t != "" && !t.HasOptions() {
			verr.Add(path+".options", "%s fields take no options", t)
		}
		for j, opt := range field.Options {
			optPath := fmt.Sprintf("%s.options[%d]", path, j)
			if strings.TrimSpace(opt.Value) == "" {
				verr.Add(optPath+".value", "required")
			}
			if opt.IsEnd && opt.NextQuestionID != nil {
				verr.Add(optPath, "isEnd excludes nextQuestionId")
			}
		}
	}

	if len(verr.Problems) > 0 {
		return codec.PersistedForm{}, verr
	}
	return out, nil
}
