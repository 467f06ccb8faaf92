package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docdiff/internal/doctree"
	"github.com/dgallion1/docdiff/internal/parser"
	"github.com/dgallion1/docdiff/internal/pipeline"
	"github.com/dgallion1/docdiff/internal/section"
	"github.com/dgallion1/docdiff/internal/store"
	"github.com/go-chi/chi/v5"
)

// uploadError carries the HTTP status for a rejected upload.
type uploadError struct {
	code int
	msg  string
}

func (e *uploadError) Error() string { return e.msg }

func writeUploadError(w http.ResponseWriter, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		jsonError(w, ue.msg, ue.code)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

// storeUpload parses an uploaded document and stores its extraction. The
// document id defaults to a prefix of the content hash.
func (s *Server) storeUpload(ctx context.Context, fh *multipart.FileHeader, docID string) (string, *doctree.Extraction, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return "", nil, &uploadError{http.StatusBadRequest, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename))}
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, &uploadError{http.StatusBadRequest, "failed to open file"}
	}
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	f.Close()
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return "", nil, &uploadError{http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)}
	}

	p, err := parser.ForFile(filename, s.parseOpts)
	if err != nil {
		return "", nil, &uploadError{http.StatusBadRequest, err.Error()}
	}
	ex, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return "", nil, &uploadError{http.StatusUnprocessableEntity, fmt.Sprintf("parse %s: %s", filename, err)}
	}

	if docID == "" {
		docID = pipeline.ContentHashHex(data)[:16]
	}
	if err := s.orchestrator.Store().SaveExtraction(ctx, docID, ex); err != nil {
		return "", nil, fmt.Errorf("store extraction: %w", err)
	}
	s.log.Info("stored extraction", "doc_id", docID, "filename", filename, "elements", len(ex.Elements))
	return docID, ex, nil
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	header := files[0]

	docID, ex, err := s.storeUpload(r.Context(), header, strings.TrimSpace(r.FormValue("doc_id")))
	if err != nil {
		writeUploadError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"doc_id":   docID,
		"filename": sanitizeFilename(header.Filename),
		"elements": len(ex.Elements),
		"headings": len(doctree.SectionHeadings(ex)),
	})
}

// loadExtraction fetches the extraction named by the docID path parameter,
// writing the error response itself when it fails.
func (s *Server) loadExtraction(w http.ResponseWriter, r *http.Request) (string, *doctree.Extraction, bool) {
	docID := chi.URLParam(r, "docID")
	ex, err := s.orchestrator.Store().GetExtraction(r.Context(), docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return "", nil, false
	}
	if err != nil {
		jsonError(w, "failed to load document: "+err.Error(), http.StatusInternalServerError)
		return "", nil, false
	}
	return docID, ex, true
}

func (s *Server) handleDocumentHeadings(w http.ResponseWriter, r *http.Request) {
	docID, ex, ok := s.loadExtraction(w, r)
	if !ok {
		return
	}
	headings := section.HeadingsOf(ex)
	if headings == nil {
		headings = section.Sequence{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":   docID,
		"headings": headings,
	})
}

func (s *Server) handleDocumentStructure(w http.ResponseWriter, r *http.Request) {
	docID, ex, ok := s.loadExtraction(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doctree.Structure(ex, docID))
}

func (s *Server) handleDocumentTOC(w http.ResponseWriter, r *http.Request) {
	docID, ex, ok := s.loadExtraction(w, r)
	if !ok {
		return
	}
	toc := doctree.TableOfContents(ex)
	if toc == nil {
		toc = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id": docID,
		"toc":    toc,
	})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
