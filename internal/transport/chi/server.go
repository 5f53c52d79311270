// Package chi exposes the federated search API over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vocnet/vocsearch/internal/domain/concept"
	"github.com/vocnet/vocsearch/internal/domain/search"
	"github.com/vocnet/vocsearch/internal/domain/vocab"
	healthuc "github.com/vocnet/vocsearch/internal/usecase/health"
)

// VocabLister lists configured vocabulary backends, optionally probing them.
type VocabLister interface {
	List(ctx context.Context, probe bool) []vocab.Vocabulary
}

// Autocompleter runs the federated autocomplete pipeline. The page cache
// decorator satisfies this too, so the server never knows whether a cache
// sits in front of the engine.
type Autocompleter interface {
	Autocomplete(ctx context.Context, q search.Query) concept.Page
}

// Server implements the HTTP API.
type Server struct {
	vocabs       VocabLister
	autocomplete Autocompleter
	health       *healthuc.Service
	logger       *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	vocabs VocabLister,
	autocomplete Autocompleter,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		vocabs:       vocabs,
		autocomplete: autocomplete,
		health:       health,
		logger:       logger,
	}
}

// Mount attaches the API routes under /api/v0 plus /health.
func (s *Server) Mount(r chi.Router) {
	r.Route("/api/v0", func(r chi.Router) {
		r.Get("/autocomplete", s.Autocomplete)
		r.Get("/vocabs", s.ListVocabs)
	})
	r.Get("/health", s.HealthCheck)
}

// Autocomplete handles GET /api/v0/autocomplete.
func (s *Server) Autocomplete(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	page := s.autocomplete.Autocomplete(r.Context(), q)
	writeJSON(w, http.StatusOK, page)
}

// vocabListResponse wraps the vocabulary snapshots.
type vocabListResponse struct {
	Items []vocab.Vocabulary `json:"items"`
}

// ListVocabs handles GET /api/v0/vocabs.
func (s *Server) ListVocabs(w http.ResponseWriter, r *http.Request) {
	probe := true
	if raw := r.URL.Query().Get("probe"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameters", "probe must be a boolean")
			return
		}
		probe = b
	}

	items := s.vocabs.List(r.Context(), probe)
	writeJSON(w, http.StatusOK, vocabListResponse{Items: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
