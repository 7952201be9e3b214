package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-formstudio/pkg/codec"
	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/model"
	"github.com/goliatone/go-formstudio/pkg/preview"
	"github.com/goliatone/go-formstudio/pkg/submission"
)

type optionView struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type fieldView struct {
	Ref         string          `json:"ref"`
	Type        model.FieldType `json:"type"`
	Label       string          `json:"label"`
	Placeholder string          `json:"placeholder,omitempty"`
	IsRequired  bool            `json:"isRequired"`
	Note        string          `json:"note,omitempty"`
	Options     []optionView    `json:"options,omitempty"`
}

type transitionView struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Answer string      `json:"answer"`
	Reason flow.Reason `json:"reason"`
}

type sessionView struct {
	ID            string            `json:"id"`
	FormID        int64             `json:"formId"`
	Phase         flow.Phase        `json:"phase"`
	Question      *fieldView        `json:"question,omitempty"`
	Page          []fieldView       `json:"page,omitempty"`
	Step          int               `json:"step"`
	Pages         int               `json:"pages"`
	Complete      bool              `json:"complete"`
	CycleDetected bool              `json:"cycleDetected,omitempty"`
	Path          []string          `json:"path,omitempty"`
	Answers       map[string]string `json:"answers,omitempty"`
	Values        map[string]string `json:"values,omitempty"`
	Transition    *transitionView   `json:"transition,omitempty"`
	Moved         *bool             `json:"moved,omitempty"`
}

func newFieldView(f model.Field) fieldView {
	view := fieldView{
		Ref:         f.Identity.Key(),
		Type:        f.Type,
		Label:       f.Label,
		Placeholder: f.Placeholder,
		IsRequired:  f.IsRequired,
		Note:        f.Note,
	}
	for _, opt := range f.Options {
		view.Options = append(view.Options, optionView{Label: opt.Label, Value: opt.Value})
	}
	return view
}

func newSessionView(id string, formID int64, sess *flow.Session) sessionView {
	snap := sess.Snapshot()
	view := sessionView{
		ID:            id,
		FormID:        formID,
		Phase:         sess.Phase(),
		Step:          sess.Pager().Step(),
		Pages:         sess.Pager().Pages(),
		Complete:      sess.Complete(),
		CycleDetected: snap.CycleDetected,
		Path:          snap.Path,
		Answers:       snap.Answers,
		Values:        snap.Values,
	}
	if q, ok := sess.Engine().Current(); ok && sess.Phase() == flow.PhaseQuestions {
		fv := newFieldView(q)
		view.Question = &fv
	}
	for _, f := range sess.Page() {
		view.Page = append(view.Page, newFieldView(f))
	}
	return view
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDocument(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := flow.NewSession(doc, s.flowOptions...)
	id := s.newSessionID()
	if err := s.sessions.Set(r.Context(), id, sess.Snapshot()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(id, *doc.ID, sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, false, func(*flow.Session, *sessionView) error { return nil })
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), mux.Vars(r)["sid"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type answerRequest struct {
	// Value is the picked option value; nil skips a question without options.
	// Questions with options reject a skip.
	Value *string `json:"value"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, true, func(sess *flow.Session, view *sessionView) error {
		var (
			tr  flow.Transition
			err error
		)
		if req.Value == nil {
			tr, err = sess.Skip()
		} else {
			tr, err = sess.Answer(*req.Value)
		}
		if err != nil {
			return err
		}
		view.Transition = &transitionView{
			From:   tr.From.String(),
			To:     tr.To.String(),
			Answer: tr.Answer,
			Reason: tr.Reason,
		}
		return nil
	})
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, true, func(sess *flow.Session, view *sessionView) error {
		moved := sess.Previous()
		view.Moved = &moved
		return nil
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, true, func(sess *flow.Session, view *sessionView) error {
		moved, err := sess.Next()
		if err != nil {
			return err
		}
		view.Moved = &moved
		return nil
	})
}

type valuesRequest struct {
	Values map[string]string `json:"values"`
}

func (s *Server) handleSetValues(w http.ResponseWriter, r *http.Request) {
	var req valuesRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, true, func(sess *flow.Session, _ *sessionView) error {
		for key, value := range req.Values {
			ref, err := model.ParseRefKey(key)
			if err != nil {
				return fmt.Errorf("%w: %v", errBadRequest, err)
			}
			if err := sess.SetValue(ref, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	format := preview.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = preview.FormatText
	}
	sess, _, err := s.loadSession(r.Context(), mux.Vars(r)["sid"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.preview.String(preview.FromSession(sess), format)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	contentType := "text/plain; charset=utf-8"
	if format == preview.FormatHTML {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

type submitResponse struct {
	FormID  int64          `json:"formId"`
	Payload map[string]any `json:"payload"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sid := mux.Vars(r)["sid"]
	sess, formID, err := s.loadSession(r.Context(), sid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sess.Phase() != flow.PhaseFields {
		s.writeError(w, r, fmt.Errorf("%w: questions are still open", flow.ErrWrongPhase))
		return
	}
	payload := submission.Payload(sess)
	if err := submission.Validate(sess.Engine().Document(), payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.sessions.Delete(r.Context(), sid); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{FormID: formID, Payload: payload})
}

// withSession restores the session named in the path, runs op and renders
// the result. With persist set the updated snapshot is written back.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, persist bool, op func(*flow.Session, *sessionView) error) {
	sid := mux.Vars(r)["sid"]
	sess, formID, err := s.loadSession(r.Context(), sid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var view sessionView
	if err := op(sess, &view); err != nil {
		s.writeError(w, r, err)
		return
	}
	if persist {
		if err := s.sessions.Set(r.Context(), sid, sess.Snapshot()); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	out := newSessionView(sid, formID, sess)
	out.Transition = view.Transition
	out.Moved = view.Moved
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) loadSession(ctx context.Context, sid string) (*flow.Session, int64, error) {
	snap, err := s.sessions.Get(ctx, sid)
	if err != nil {
		return nil, 0, err
	}
	if snap.FormID == nil {
		return nil, 0, fmt.Errorf("%w: session %s has no form", flow.ErrStaleSnapshot, sid)
	}
	form, err := s.forms.Load(ctx, *snap.FormID)
	if err != nil {
		return nil, 0, err
	}
	doc, err := codec.FromPersisted(form)
	if err != nil {
		return nil, 0, err
	}
	sess, err := flow.Restore(doc, snap, s.flowOptions...)
	if err != nil {
		return nil, 0, err
	}
	return sess, *snap.FormID, nil
}
