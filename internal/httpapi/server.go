// Package httpapi exposes form authoring and fill sessions over HTTP.
package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/goliatone/go-formstudio/pkg/builder"
	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/preview"
	"github.com/goliatone/go-formstudio/pkg/store"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by the request middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBuilder overrides the builder used for palette insertion.
func WithBuilder(b *builder.Builder) Option {
	return func(s *Server) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithFlowOptions forwards options to every fill session.
func WithFlowOptions(options ...flow.Option) Option {
	return func(s *Server) {
		s.flowOptions = append(s.flowOptions, options...)
	}
}

// WithCORSOrigins sets the origins allowed by the CORS handler.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithSessionIDs overrides how fill session ids are minted.
func WithSessionIDs(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newSessionID = fn
		}
	}
}

// Server serves the HTTP API.
type Server struct {
	forms        store.Store
	sessions     flow.SnapshotStore
	builder      *builder.Builder
	preview      *preview.Renderer
	logger       *slog.Logger
	flowOptions  []flow.Option
	corsOrigins  []string
	newSessionID func() string
}

// New builds a Server over the given form and session stores.
func New(forms store.Store, sessions flow.SnapshotStore, options ...Option) (*Server, error) {
	if forms == nil || sessions == nil {
		return nil, fmt.Errorf("httpapi: form and session stores are required")
	}
	renderer, err := preview.New()
	if err != nil {
		return nil, fmt.Errorf("httpapi: preview renderer: %w", err)
	}
	s := &Server{
		forms:        forms,
		sessions:     sessions,
		builder:      builder.New(),
		preview:      renderer,
		logger:       slog.Default(),
		corsOrigins:  []string{"*"},
		newSessionID: uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Handler returns the routed API wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID, recovery(s.logger), requestLogger(s.logger))

	r.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)

	r.HandleFunc("/forms", s.handleListForms).Methods(http.MethodGet)
	r.HandleFunc("/forms", s.handleCreateForm).Methods(http.MethodPost)
	r.HandleFunc("/forms/{id:[0-9]+}", s.handleGetForm).Methods(http.MethodGet)
	r.HandleFunc("/forms/{id:[0-9]+}", s.handlePutForm).Methods(http.MethodPut)
	r.HandleFunc("/forms/{id:[0-9]+}/submission-schema", s.handleSubmissionSchema).Methods(http.MethodGet)

	r.HandleFunc("/forms/{id:[0-9]+}/fields", s.handleInsertField).Methods(http.MethodPost)
	r.HandleFunc("/forms/{id:[0-9]+}/fields/{field:[0-9]+}", s.handleUpdateField).Methods(http.MethodPatch)
	r.HandleFunc("/forms/{id:[0-9]+}/fields/{field:[0-9]+}", s.handleRemoveField).Methods(http.MethodDelete)
	r.HandleFunc("/forms/{id:[0-9]+}/fields/{field:[0-9]+}/move", s.handleMoveField).Methods(http.MethodPost)
	r.HandleFunc("/forms/{id:[0-9]+}/fields/{field:[0-9]+}/options", s.handleAddOption).Methods(http.MethodPost)
	r.HandleFunc("/forms/{id:[0-9]+}/fields/{field:[0-9]+}/options/{option:[0-9]+}", s.handleUpdateOption).Methods(http.MethodPatch)
	r.HandleFunc("/forms/{id:[0-9]+}/fields/{field:[0-9]+}/options/{option:[0-9]+}", s.handleRemoveOption).Methods(http.MethodDelete)
	r.HandleFunc("/forms/{id:[0-9]+}/fields/{field:[0-9]+}/options/{option:[0-9]+}/move", s.handleMoveOption).Methods(http.MethodPost)

	r.HandleFunc("/forms/{id:[0-9]+}/sessions", s.handleStartSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{sid}", s.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{sid}", s.handleDeleteSession).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{sid}/answer", s.handleAnswer).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{sid}/back", s.handlePrevious).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{sid}/previous", s.handlePrevious).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{sid}/next", s.handleNext).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{sid}/values", s.handleSetValues).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{sid}/summary", s.handleSummary).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{sid}/submit", s.handleSubmit).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{correlationHeader},
	})
	return c.Handler(r)
}
