// Package chi holds the thin HTTP route handlers of the admin API. They
// parse query and body parameters into typed values, forward them to the
// dispatcher, map domain errors to status codes and JSON-encode results.
// Nothing more.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vecadmin/vecadmin/internal/backend"
	"github.com/vecadmin/vecadmin/internal/domain"
	"github.com/vecadmin/vecadmin/internal/logger"
)

// Embedder generates a query embedding from text. nil disables the
// /api/embedding route.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Server wires the admin routes to the backend dispatcher.
type Server struct {
	store    backend.Store
	embedder Embedder
	logger   *zap.Logger
}

// NewServer creates an admin API server.
func NewServer(store backend.Store, embedder Embedder, log *zap.Logger) *Server {
	return &Server{store: store, embedder: embedder, logger: log}
}

// Routes mounts the admin API under /api.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/collections", s.listCollections)
		r.Route("/collections/{collection}", func(r chi.Router) {
			r.Delete("/", s.deleteCollection)
			r.Post("/rename", s.renameCollection)
			r.Get("/count", s.countRecords)
			r.Post("/query", s.query)
			r.Get("/records", s.fetchRecords)
			r.Get("/records/{id}", s.getRecord)
			r.Delete("/records/{id}", s.deleteRecord)
		})
		r.Post("/embedding", s.embed)
	})
}

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	conn, ok := s.connection(w, r)
	if !ok {
		return
	}
	cols, err := s.store.ListCollections(r.Context(), conn)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

func (s *Server) fetchRecords(w http.ResponseWriter, r *http.Request) {
	conn, ok := s.connection(w, r)
	if !ok {
		return
	}
	page, err := pageParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := filterParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.store.FetchRecords(r.Context(), conn, chi.URLParam(r, "collection"), page, filter)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	conn, ok := s.connection(w, r)
	if !ok {
		return
	}
	rec, err := s.store.GetRecord(r.Context(), conn, chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) countRecords(w http.ResponseWriter, r *http.Request) {
	conn, ok := s.connection(w, r)
	if !ok {
		return
	}
	filter, err := filterParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := s.store.CountRecords(r.Context(), conn, chi.URLParam(r, "collection"), filter)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// queryRequest carries exactly one of an embedding vector or a record id.
type queryRequest struct {
	Embedding []float32     `json:"embedding,omitempty"`
	ID        string        `json:"id,omitempty"`
	Where     domain.Filter `json:"where,omitempty"`
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	conn, ok := s.connection(w, r)
	if !ok {
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if (len(req.Embedding) == 0) == (req.ID == "") {
		writeError(w, http.StatusBadRequest, "exactly one of embedding or id is required")
		return
	}

	collection := chi.URLParam(r, "collection")
	if req.ID != "" {
		rec, err := s.store.QueryByID(r.Context(), conn, collection, req.ID)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, []domain.Record{rec})
		return
	}

	records, err := s.store.Query(r.Context(), conn, collection, req.Embedding, req.Where)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	conn, ok := s.connection(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteRecord(r.Context(), conn, chi.URLParam(r, "collection"), chi.URLParam(r, "id")); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	conn, ok := s.connection(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteCollection(r.Context(), conn, chi.URLParam(r, "collection")); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type renameRequest struct {
	NewName string `json:"new_name"`
}

func (s *Server) renameCollection(w http.ResponseWriter, r *http.Request) {
	conn, ok := s.connection(w, r)
	if !ok {
		return
	}
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.NewName == "" {
		writeError(w, http.StatusBadRequest, "new_name is required")
		return
	}
	if err := s.store.RenameCollection(r.Context(), conn, chi.URLParam(r, "collection"), req.NewName); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type embedRequest struct {
	Text string `json:"text"`
}

func (s *Server) embed(w http.ResponseWriter, r *http.Request) {
	if s.embedder == nil {
		writeError(w, http.StatusNotImplemented, "embedding provider not configured")
		return
	}
	var req embedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	vec, err := s.embedder.Embed(r.Context(), req.Text)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]float32{"embedding": vec})
}

// connection builds the backend connection descriptor from query
// parameters. A missing endpoint is a 400; everything else travels as-is.
func (s *Server) connection(w http.ResponseWriter, r *http.Request) (domain.Connection, bool) {
	q := r.URL.Query()
	endpoint := q.Get("endpoint")
	if endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint query parameter is required")
		return domain.Connection{}, false
	}

	conn := domain.Connection{
		Endpoint: endpoint,
		Tenant:   q.Get("tenant"),
		Database: q.Get("database"),
		Version:  domain.Version(q.Get("version")),
		Auth: domain.Auth{
			Type:     domain.AuthType(q.Get("auth")),
			Token:    q.Get("token"),
			Username: q.Get("username"),
			Password: q.Get("password"),
		},
	}
	return conn, true
}

func pageParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, errors.New("page must be a positive integer")
	}
	return page, nil
}

// filterParam decodes the where query parameter: URL-encoded JSON, passed
// through to the backend verbatim.
func filterParam(r *http.Request) (domain.Filter, error) {
	raw := r.URL.Query().Get("where")
	if raw == "" {
		return nil, nil
	}
	var filter domain.Filter
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		return nil, errors.New("where must be URL-encoded JSON")
	}
	return filter, nil
}

// handleError maps domain errors onto the admin API status codes. Record
// lookups that miss are 404 and dimension mismatches 400. Everything else,
// an unknown collection included, is a plain 500 with the message intact.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Warn("operation failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidDimension):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
