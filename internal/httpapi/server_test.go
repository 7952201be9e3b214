package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/store"
	"github.com/goliatone/go-formstudio/pkg/store/storetest"
)

func setupServer(t *testing.T) http.Handler {
	t.Helper()
	n := 0
	srv, err := New(store.NewMemory(), flow.NewMemoryStore(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSessionIDs(func() string {
			n++
			return fmt.Sprintf("s%d", n)
		}),
	)
	require.NoError(t, err)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func createSample(t *testing.T, h http.Handler) formResponse {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/forms", storetest.SampleForm())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[formResponse](t, rr)
}

func TestCatalog(t *testing.T) {
	h := setupServer(t)

	rr := do(t, h, http.MethodGet, "/catalog", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	entries := decode[[]templateView](t, rr)
	require.NotEmpty(t, entries)
	var question *templateView
	for i := range entries {
		if entries[i].Type == "question" {
			question = &entries[i]
		}
	}
	require.NotNil(t, question)
	assert.True(t, question.HasOptions)
	assert.NotEmpty(t, question.Options)
}

func TestFormHandlers(t *testing.T) {
	h := setupServer(t)

	created := createSample(t, h)
	require.NotNil(t, created.Form.ID)
	assert.Len(t, created.Form.Fields, 3)
	for i, f := range created.Form.Fields {
		require.NotNil(t, f.ID)
		assert.Equal(t, i, f.OrderIndex)
	}
	id := *created.Form.ID

	t.Run("get", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, fmt.Sprintf("/forms/%d", id), nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		got := decode[formResponse](t, rr)
		assert.Equal(t, "Intake", got.Form.Title)
	})

	t.Run("list", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/forms", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		got := decode[[]store.Summary](t, rr)
		require.Len(t, got, 1)
		assert.Equal(t, "intake", got[0].Slug)
	})

	t.Run("not found", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/forms/999", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		body := decode[errorBody](t, rr)
		assert.Equal(t, categoryNotFound, body.Category)
		assert.NotEmpty(t, body.CorrelationID)
	})

	t.Run("validation", func(t *testing.T) {
		form := created.Form.Clone()
		form.Title = "  "
		rr := do(t, h, http.MethodPut, fmt.Sprintf("/forms/%d", id), form)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decode[errorBody](t, rr)
		require.NotEmpty(t, body.Problems)
		assert.Equal(t, "title", body.Problems[0].Path)
	})

	t.Run("unknown body field", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, fmt.Sprintf("/forms/%d/fields", id), map[string]any{"type": "text", "bogus": 1})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("submission schema", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, fmt.Sprintf("/forms/%d/submission-schema", id), nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		schema := decode[map[string]any](t, rr)
		props, ok := schema["properties"].(map[string]any)
		require.True(t, ok)
		assert.Len(t, props, 3)
	})
}

func TestBuilderHandlers(t *testing.T) {
	h := setupServer(t)
	created := createSample(t, h)
	base := fmt.Sprintf("/forms/%d", *created.Form.ID)

	rr := do(t, h, http.MethodPost, base+"/fields", map[string]any{"type": "question", "index": 1})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[formResponse](t, rr)
	require.Len(t, got.Form.Fields, 4)
	inserted := got.Form.Fields[1]
	assert.Equal(t, "question", inserted.Type)
	require.NotNil(t, inserted.ID)

	rr = do(t, h, http.MethodPatch, base+"/fields/0/options/1", map[string]any{
		"nextQuestion": fmt.Sprint(*inserted.ID),
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got = decode[formResponse](t, rr)
	target := got.Form.Fields[0].Options[1].NextQuestionID
	require.NotNil(t, target)
	assert.Equal(t, *inserted.ID, *target)

	rr = do(t, h, http.MethodPost, base+"/fields/1/move", map[string]any{"to": 3})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got = decode[formResponse](t, rr)
	assert.Equal(t, *inserted.ID, *got.Form.Fields[3].ID)
	assert.Equal(t, 3, got.Form.Fields[3].OrderIndex)

	rr = do(t, h, http.MethodPatch, base+"/fields/0", map[string]any{"label": "Been here before?"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got = decode[formResponse](t, rr)
	assert.Equal(t, "Been here before?", got.Form.Fields[0].Label)

	rr = do(t, h, http.MethodPost, base+"/fields/0/options", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got = decode[formResponse](t, rr)
	assert.Len(t, got.Form.Fields[0].Options, 3)

	rr = do(t, h, http.MethodPost, base+"/fields/0/options/2/move", map[string]any{"to": 0})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got = decode[formResponse](t, rr)
	moved := got.Form.Fields[0].Options[0]

	rr = do(t, h, http.MethodDelete, base+"/fields/0/options/0", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got = decode[formResponse](t, rr)
	require.Len(t, got.Form.Fields[0].Options, 2)
	assert.NotEqual(t, moved.Value, got.Form.Fields[0].Options[0].Value)

	rr = do(t, h, http.MethodDelete, base+"/fields/3", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got = decode[formResponse](t, rr)
	require.Len(t, got.Form.Fields, 3)
	for _, opt := range got.Form.Fields[0].Options {
		assert.Nil(t, opt.NextQuestionID, "references to a removed question are cleared")
	}

	t.Run("out of range", func(t *testing.T) {
		rr := do(t, h, http.MethodDelete, base+"/fields/9", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("options on a plain field", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, base+"/fields/1/options", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, base+"/fields", map[string]any{"type": "signature"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSessionHandlers(t *testing.T) {
	h := setupServer(t)
	created := createSample(t, h)
	form := created.Form

	rr := do(t, h, http.MethodPost, fmt.Sprintf("/forms/%d/sessions", *form.ID), nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	view := decode[sessionView](t, rr)
	assert.Equal(t, "s1", view.ID)
	assert.Equal(t, flow.PhaseQuestions, view.Phase)
	require.NotNil(t, view.Question)
	assert.Equal(t, "Returning?", view.Question.Label)

	rr = do(t, h, http.MethodPost, "/sessions/s1/answer", map[string]any{"value": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/sessions/s1/next", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "next is a field stage operation")

	rr = do(t, h, http.MethodPost, "/sessions/s1/answer", map[string]any{"value": "no"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	view = decode[sessionView](t, rr)
	require.NotNil(t, view.Transition)
	assert.Equal(t, flow.ReasonSequential, view.Transition.Reason)
	assert.Equal(t, flow.PhaseFields, view.Phase)
	require.Len(t, view.Page, 2)
	assert.True(t, view.Complete)

	rr = do(t, h, http.MethodPost, "/sessions/s1/previous", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	view = decode[sessionView](t, rr)
	assert.Equal(t, flow.PhaseQuestions, view.Phase)
	require.NotNil(t, view.Moved)
	assert.True(t, *view.Moved)

	rr = do(t, h, http.MethodPost, "/sessions/s1/answer", map[string]any{"value": "no"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/sessions/s1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	view = decode[sessionView](t, rr)
	plan := view.Page
	require.Len(t, plan, 2)

	rr = do(t, h, http.MethodPost, "/sessions/s1/values", map[string]any{
		"values": map[string]string{
			plan[0].Ref: "ada@example.com",
			plan[1].Ref: "free",
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/sessions/s1/values", map[string]any{
		"values": map[string]string{fmt.Sprint(*form.Fields[0].ID): "x"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "questions are answered, not set")

	rr = do(t, h, http.MethodGet, "/sessions/s1/summary", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rr.Body.String(), "Intake")
	assert.Contains(t, rr.Body.String(), "Returning?: No")

	rr = do(t, h, http.MethodGet, "/sessions/s1/summary?format=html", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html"))

	rr = do(t, h, http.MethodPost, "/sessions/s1/submit", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	submitted := decode[submitResponse](t, rr)
	assert.Equal(t, "no", submitted.Payload[fmt.Sprint(*form.Fields[0].ID)])
	assert.Equal(t, "ada@example.com", submitted.Payload[plan[0].Ref])

	rr = do(t, h, http.MethodGet, "/sessions/s1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "submitted sessions are discarded")
}

func TestSessionEndOption(t *testing.T) {
	h := setupServer(t)
	created := createSample(t, h)

	rr := do(t, h, http.MethodPost, fmt.Sprintf("/forms/%d/sessions", *created.Form.ID), nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, h, http.MethodPost, "/sessions/s1/answer", map[string]any{"value": "yes"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	view := decode[sessionView](t, rr)
	require.NotNil(t, view.Transition)
	assert.Equal(t, flow.ReasonEnd, view.Transition.Reason)
	assert.Equal(t, "terminal", view.Transition.To)
}

func TestSessionSkipNeedsOptionlessQuestion(t *testing.T) {
	h := setupServer(t)
	created := createSample(t, h)

	rr := do(t, h, http.MethodPost, fmt.Sprintf("/forms/%d/sessions", *created.Form.ID), nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, h, http.MethodPost, "/sessions/s1/answer", map[string]any{"value": nil})
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	body := decode[errorBody](t, rr)
	assert.Equal(t, categoryBadRequest, body.Category)
	assert.Contains(t, body.Message, "question has options")

	rr = do(t, h, http.MethodGet, "/sessions/s1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[sessionView](t, rr)
	assert.Equal(t, flow.PhaseQuestions, view.Phase)
	assert.Empty(t, view.Path)
	assert.Empty(t, view.Answers)
}

func TestSessionStale(t *testing.T) {
	h := setupServer(t)
	created := createSample(t, h)
	base := fmt.Sprintf("/forms/%d", *created.Form.ID)

	rr := do(t, h, http.MethodPost, base+"/sessions", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, h, http.MethodDelete, base+"/fields/0", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/sessions/s1", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	body := decode[errorBody](t, rr)
	assert.Equal(t, categoryConflict, body.Category)

	rr = do(t, h, http.MethodDelete, "/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestCORSAndCorrelation(t *testing.T) {
	h := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set(correlationHeader, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "abc-123", rr.Header().Get(correlationHeader))
}
