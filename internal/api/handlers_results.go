package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/docdiff/internal/store"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListComparisons(w http.ResponseWriter, r *http.Request) {
	list, err := s.orchestrator.Store().ListComparisons(r.Context())
	if err != nil {
		jsonError(w, "failed to list comparisons: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []store.ComparisonSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"comparisons": list})
}

// loadComparison fetches the comparison named by the key path parameter,
// writing the error response itself when it fails.
func (s *Server) loadComparison(w http.ResponseWriter, r *http.Request) (*store.Comparison, bool) {
	key := chi.URLParam(r, "key")
	c, err := s.orchestrator.Store().GetComparison(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "comparison not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		jsonError(w, "failed to load comparison: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return c, true
}

func (s *Server) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadComparison(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleComparisonSections lists the section headings of a comparison, or
// the sections labeled ?heading= when given.
func (s *Server) handleComparisonSections(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadComparison(w, r)
	if !ok {
		return
	}

	heading := r.URL.Query().Get("heading")
	if heading == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"file_pair": c.Key,
			"headings":  c.Headings(),
		})
		return
	}

	sections := c.SectionsByHeading(heading)
	if len(sections) == 0 {
		jsonError(w, "section not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_pair": c.Key,
		"sections":  sections,
	})
}

func (s *Server) handleDeleteComparison(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	err := s.orchestrator.Store().DeleteComparison(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "comparison not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete comparison: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
