package httpapi

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-formstudio/pkg/builder"
	"github.com/goliatone/go-formstudio/pkg/codec"
	"github.com/goliatone/go-formstudio/pkg/model"
	"github.com/goliatone/go-formstudio/pkg/store"
	"github.com/goliatone/go-formstudio/pkg/submission"
)

type templateView struct {
	Type        model.FieldType `json:"type"`
	Label       string          `json:"label"`
	Placeholder string          `json:"placeholder"`
	IsRequired  bool            `json:"isRequired"`
	Note        string          `json:"note"`
	HasOptions  bool            `json:"hasOptions"`
	Options     []optionView    `json:"options,omitempty"`
}

type unresolvedView struct {
	FieldIndex  int    `json:"fieldIndex"`
	OptionIndex int    `json:"optionIndex"`
	Target      string `json:"target"`
}

type issueView struct {
	Kind        builder.IssueKind `json:"kind"`
	Field       string            `json:"field"`
	FieldIndex  int               `json:"fieldIndex"`
	OptionIndex int               `json:"optionIndex"`
	Path        []string          `json:"path,omitempty"`
	Message     string            `json:"message"`
}

// formResponse carries a stored form plus what was rewritten on the way in
// and what the author should look at.
type formResponse struct {
	Form            codec.PersistedForm `json:"form"`
	Unresolved      []unresolvedView    `json:"unresolved,omitempty"`
	GeneratedValues int                 `json:"generatedValues,omitempty"`
	Issues          []issueView         `json:"issues,omitempty"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	templates := s.builder.Catalog().Templates()
	out := make([]templateView, 0, len(templates))
	for _, tpl := range templates {
		view := templateView{
			Type:        tpl.Type,
			Label:       tpl.DefaultLabel,
			Placeholder: tpl.DefaultPlaceholder,
			IsRequired:  tpl.DefaultIsRequired,
			Note:        tpl.DefaultNote,
			HasOptions:  tpl.HasOptions,
		}
		for _, opt := range tpl.DefaultOptions {
			view.Options = append(view.Options, optionView{Label: opt.Label, Value: opt.Value})
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.forms.(store.Lister)
	if !ok {
		writeJSON(w, http.StatusNotImplemented, errorBody{
			Status:        "error",
			Message:       "form listing is not supported by this store",
			Category:      categoryBadRequest,
			CorrelationID: CorrelationID(r.Context()),
		})
		return
	}
	forms, err := lister.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if forms == nil {
		forms = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, forms)
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	var form codec.PersistedForm
	if err := decodeBody(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}
	form.ID = nil
	resp, err := s.save(r, form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	id, err := formID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	form, err := s.forms.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := codec.FromPersisted(form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, formResponse{Form: form, Issues: issues(builder.Lint(doc))})
}

func (s *Server) handlePutForm(w http.ResponseWriter, r *http.Request) {
	id, err := formID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var form codec.PersistedForm
	if err := decodeBody(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}
	form.ID = &id
	resp, err := s.save(r, form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmissionSchema(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDocument(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submission.Schema(doc))
}

type insertRequest struct {
	Type  string `json:"type"`
	Index *int   `json:"index"`
}

func (s *Server) handleInsertField(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := model.ParseFieldType(req.Type)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	s.edit(w, r, func(doc model.Document) (model.Document, error) {
		index := len(doc.Fields)
		if req.Index != nil {
			index = *req.Index
		}
		out, _, err := s.builder.InsertFromCatalog(doc, t, index)
		return out, err
	})
}

type fieldPatchRequest struct {
	Type        *string `json:"type"`
	Label       *string `json:"label"`
	Placeholder *string `json:"placeholder"`
	IsRequired  *bool   `json:"isRequired"`
	Note        *string `json:"note"`
}

func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "field")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req fieldPatchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	patch := builder.FieldPatch{
		Label:       req.Label,
		Placeholder: req.Placeholder,
		IsRequired:  req.IsRequired,
		Note:        req.Note,
	}
	if req.Type != nil {
		t, err := model.ParseFieldType(*req.Type)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		patch.Type = &t
	}
	s.edit(w, r, func(doc model.Document) (model.Document, error) {
		return builder.UpdateField(doc, index, patch)
	})
}

func (s *Server) handleRemoveField(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "field")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.edit(w, r, func(doc model.Document) (model.Document, error) {
		return builder.RemoveField(doc, index)
	})
}

type moveRequest struct {
	To int `json:"to"`
}

func (s *Server) handleMoveField(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "field")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.edit(w, r, func(doc model.Document) (model.Document, error) {
		return builder.MoveField(doc, index, req.To)
	})
}

func (s *Server) handleAddOption(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "field")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.edit(w, r, func(doc model.Document) (model.Document, error) {
		return builder.AddOption(doc, index)
	})
}

type optionPatchRequest struct {
	Label        *string         `json:"label"`
	Value        *string         `json:"value"`
	Image        *model.MediaRef `json:"image"`
	ClearImage   bool            `json:"clearImage"`
	NextQuestion *string         `json:"nextQuestion"`
	ClearNext    bool            `json:"clearNextQuestion"`
	IsEnd        *bool           `json:"isEnd"`
}

func (s *Server) handleUpdateOption(w http.ResponseWriter, r *http.Request) {
	fieldIndex, err := pathInt(r, "field")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	optionIndex, err := pathInt(r, "option")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req optionPatchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	patch := builder.OptionPatch{
		Label:             req.Label,
		Value:             req.Value,
		Image:             req.Image,
		ClearImage:        req.ClearImage,
		ClearNextQuestion: req.ClearNext,
		IsEnd:             req.IsEnd,
	}
	if req.NextQuestion != nil {
		ref, err := model.ParseRefKey(*req.NextQuestion)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		patch.NextQuestion = &ref
	}
	s.edit(w, r, func(doc model.Document) (model.Document, error) {
		return builder.UpdateOption(doc, fieldIndex, optionIndex, patch)
	})
}

func (s *Server) handleRemoveOption(w http.ResponseWriter, r *http.Request) {
	fieldIndex, err := pathInt(r, "field")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	optionIndex, err := pathInt(r, "option")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.edit(w, r, func(doc model.Document) (model.Document, error) {
		return builder.RemoveOption(doc, fieldIndex, optionIndex)
	})
}

func (s *Server) handleMoveOption(w http.ResponseWriter, r *http.Request) {
	fieldIndex, err := pathInt(r, "field")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	optionIndex, err := pathInt(r, "option")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.edit(w, r, func(doc model.Document) (model.Document, error) {
		return builder.MoveOption(doc, fieldIndex, optionIndex, req.To)
	})
}

// edit loads the form named in the path, applies op to its document and
// saves the result.
func (s *Server) edit(w http.ResponseWriter, r *http.Request, op func(model.Document) (model.Document, error)) {
	doc, err := s.loadDocument(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err = op(doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	form, report := codec.ToPersisted(doc)
	resp, err := s.save(r, form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp.withReport(report)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) loadDocument(r *http.Request) (model.Document, error) {
	id, err := formID(r)
	if err != nil {
		return model.Document{}, err
	}
	form, err := s.forms.Load(r.Context(), id)
	if err != nil {
		return model.Document{}, err
	}
	return codec.FromPersisted(form)
}

// save runs a wire form through the codec so option values are generated
// and rich text is sanitised exactly as for edits, then stores it.
func (s *Server) save(r *http.Request, form codec.PersistedForm) (formResponse, error) {
	doc, err := codec.FromPersisted(form)
	if err != nil {
		return formResponse{}, err
	}
	normalized, report := codec.ToPersisted(doc)
	normalized.ID = form.ID
	saved, err := s.forms.Save(r.Context(), normalized)
	if err != nil {
		return formResponse{}, err
	}
	savedDoc, err := codec.FromPersisted(saved)
	if err != nil {
		return formResponse{}, fmt.Errorf("httpapi: stored form does not decode: %w", err)
	}
	resp := formResponse{Form: saved, Issues: issues(builder.Lint(savedDoc))}
	resp.withReport(report)
	return resp, nil
}

func (resp *formResponse) withReport(report codec.Report) {
	resp.GeneratedValues += report.GeneratedValues
	for _, u := range report.UnresolvedReferences {
		resp.Unresolved = append(resp.Unresolved, unresolvedView{
			FieldIndex:  u.FieldIndex,
			OptionIndex: u.OptionIndex,
			Target:      u.Target.Key(),
		})
	}
}

func issues(found []builder.Issue) []issueView {
	out := make([]issueView, 0, len(found))
	for _, is := range found {
		view := issueView{
			Kind:        is.Kind,
			Field:       is.Field.Key(),
			FieldIndex:  is.FieldIndex,
			OptionIndex: is.OptionIndex,
			Message:     is.Message,
		}
		for _, ref := range is.Path {
			view.Path = append(view.Path, ref.Key())
		}
		out = append(out, view)
	}
	return out
}
