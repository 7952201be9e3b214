package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-formstudio/pkg/builder"
	"github.com/goliatone/go-formstudio/pkg/catalog"
	"github.com/goliatone/go-formstudio/pkg/codec"
	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/store"
	"github.com/goliatone/go-formstudio/pkg/submission"
)

// Error categories reported in error bodies.
const (
	categoryBadRequest = "BAD_REQUEST"
	categoryValidation = "VALIDATION_ERROR"
	categoryNotFound   = "OBJECT_NOT_FOUND"
	categoryConflict   = "CONFLICT"
	categoryInternal   = "INTERNAL_ERROR"
)

var errBadRequest = errors.New("httpapi: bad request")

const maxBodyBytes = 1 << 20

type errorBody struct {
	Status        string          `json:"status"`
	Message       string          `json:"message"`
	Category      string          `json:"category"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Problems      []store.Problem `json:"problems,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{
		Status:        "error",
		Message:       err.Error(),
		CorrelationID: CorrelationID(r.Context()),
	}
	status := http.StatusInternalServerError

	var invalid *store.ValidationError
	switch {
	case errors.As(err, &invalid):
		status = http.StatusUnprocessableEntity
		body.Category = categoryValidation
		body.Problems = invalid.Problems
	case errors.Is(err, submission.ErrInvalidSubmission):
		status = http.StatusUnprocessableEntity
		body.Category = categoryValidation
	case errors.Is(err, store.ErrNotFound), errors.Is(err, flow.ErrSnapshotNotFound):
		status = http.StatusNotFound
		body.Category = categoryNotFound
	case errors.Is(err, flow.ErrStaleSnapshot):
		status = http.StatusConflict
		body.Category = categoryConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, codec.ErrInvalidDocument),
		errors.Is(err, builder.ErrIndexOutOfRange),
		errors.Is(err, builder.ErrNotChoiceField),
		errors.Is(err, catalog.ErrUnknownFieldType),
		errors.Is(err, flow.ErrUnknownOption),
		errors.Is(err, flow.ErrWrongPhase),
		errors.Is(err, flow.ErrTerminal),
		errors.Is(err, flow.ErrHasOptions),
		errors.Is(err, flow.ErrNotOrdinaryField):
		status = http.StatusBadRequest
		body.Category = categoryBadRequest
	default:
		body.Category = categoryInternal
		body.Message = "internal server error"
		s.logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"correlation_id", body.CorrelationID,
		)
	}
	writeJSON(w, status, body)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return n, nil
}

func formID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid form id", errBadRequest)
	}
	return id, nil
}
