package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/dgallion1/docdiff/internal/pipeline"
	"github.com/dgallion1/docdiff/internal/store"
	"github.com/go-chi/chi/v5"
)

// CompareRequest names two stored documents to compare.
type CompareRequest struct {
	NewDocID string `json:"new_doc_id"`
	OldDocID string `json:"old_doc_id"`
}

// BatchCompareRequest queues several comparisons at once.
type BatchCompareRequest struct {
	Pairs []CompareRequest `json:"pairs"`
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if isMultipart(r) {
		// Two documents plus form overhead.
		r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+1024*1024)
		if err := r.ParseMultipartForm(64 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		newFiles, oldFiles := r.MultipartForm.File["new_file"], r.MultipartForm.File["old_file"]
		if len(newFiles) == 0 || len(oldFiles) == 0 {
			jsonError(w, "new_file and old_file are required", http.StatusBadRequest)
			return
		}
		var err error
		if req.NewDocID, _, err = s.storeUpload(r.Context(), newFiles[0], strings.TrimSpace(r.FormValue("new_doc_id"))); err != nil {
			writeUploadError(w, err)
			return
		}
		if req.OldDocID, _, err = s.storeUpload(r.Context(), oldFiles[0], strings.TrimSpace(r.FormValue("old_doc_id"))); err != nil {
			writeUploadError(w, err)
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	job, code, err := s.submitComparison(r.Context(), req)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}
	writeJSON(w, http.StatusAccepted, jobResponse(job))
}

func (s *Server) handleBatchCompare(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req BatchCompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Pairs) == 0 {
		jsonError(w, "at least one pair is required", http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(req.Pairs))
	for _, pair := range req.Pairs {
		job, _, err := s.submitComparison(r.Context(), pair)
		if err != nil {
			results = append(results, map[string]any{
				"file_pair": store.PairKey(pair.NewDocID, pair.OldDocID),
				"error":     err.Error(),
			})
			continue
		}
		results = append(results, jobResponse(job))
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

// submitComparison checks both documents exist and queues the job. The
// returned status code applies when err is non-nil.
func (s *Server) submitComparison(ctx context.Context, req CompareRequest) (*pipeline.Job, int, error) {
	req.NewDocID = strings.TrimSpace(req.NewDocID)
	req.OldDocID = strings.TrimSpace(req.OldDocID)
	if req.NewDocID == "" || req.OldDocID == "" {
		return nil, http.StatusBadRequest, errors.New("new_doc_id and old_doc_id are required")
	}

	for _, docID := range []string{req.NewDocID, req.OldDocID} {
		_, err := s.orchestrator.Store().GetExtraction(ctx, docID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, http.StatusNotFound, fmt.Errorf("document %s not found", docID)
		}
		if err != nil {
			return nil, http.StatusInternalServerError, fmt.Errorf("load document %s: %w", docID, err)
		}
	}

	job := pipeline.NewJob(req.NewDocID, req.OldDocID)
	if err := s.orchestrator.Submit(job); err != nil {
		return nil, http.StatusServiceUnavailable, err
	}
	return job, http.StatusAccepted, nil
}

func jobResponse(job *pipeline.Job) map[string]any {
	snap := job.Snapshot()
	return map[string]any{
		"job_id":    snap.ID,
		"file_pair": snap.Key,
		"status":    snap.Status,
		"poll_url":  fmt.Sprintf("/api/compare/%s/status", snap.ID),
	}
}

func (s *Server) handleCompareStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
