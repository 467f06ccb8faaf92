package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docdiff/internal/compare"
	"github.com/dgallion1/docdiff/internal/config"
	"github.com/dgallion1/docdiff/internal/parser"
	"github.com/dgallion1/docdiff/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docdiff.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	stats        *compare.LLMStats
	log          *slog.Logger
	cfg          config.Config
	parseOpts    parser.Options
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(orch *pipeline.Orchestrator, stats *compare.LLMStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		stats:        stats,
		log:          log,
		cfg:          cfg,
		parseOpts:    parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocdiffAPIKey, s.log))

		r.Post("/api/documents", s.handleUploadDocument)
		r.Get("/api/documents/{docID}/headings", s.handleDocumentHeadings)
		r.Get("/api/documents/{docID}/structure", s.handleDocumentStructure)
		r.Get("/api/documents/{docID}/toc", s.handleDocumentTOC)

		r.Post("/api/compare", s.handleCompare)
		r.Post("/api/compare/batch", s.handleBatchCompare)
		r.Get("/api/compare/{jobID}/status", s.handleCompareStatus)

		r.Get("/api/comparisons", s.handleListComparisons)
		r.Get("/api/comparisons/{key}", s.handleGetComparison)
		r.Get("/api/comparisons/{key}/sections", s.handleComparisonSections)
		r.Delete("/api/comparisons/{key}", s.handleDeleteComparison)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
