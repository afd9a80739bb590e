package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/fmuoria/resume-shortlister/internal/export"
	"github.com/fmuoria/resume-shortlister/internal/ingestion"
	"github.com/fmuoria/resume-shortlister/internal/logger"
	"github.com/fmuoria/resume-shortlister/internal/models"
	"github.com/fmuoria/resume-shortlister/internal/screening"
	"github.com/fmuoria/resume-shortlister/internal/shortlist"
	"github.com/fmuoria/resume-shortlister/internal/store"
)

// Server handles HTTP requests
type Server struct {
	service        *screening.Service
	checkers       []store.Checker
	maxUploadBytes int64
}

// NewServer creates a new API server. Request bodies are limited to
// maxUploadBytes; checkers are consulted by the readiness probe.
func NewServer(service *screening.Service, maxUploadBytes int64, checkers ...store.Checker) *Server {
	return &Server{
		service:        service,
		checkers:       checkers,
		maxUploadBytes: maxUploadBytes,
	}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /criteria", s.handleSubmitCriteria)
	mux.HandleFunc("GET /criteria", s.handleCriteriaHistory)
	mux.HandleFunc("POST /shortlist", s.handleShortlist)
	mux.HandleFunc("POST /shortlist/upload", s.handleUpload)
	mux.HandleFunc("DELETE /shortlist/upload", s.handleClearUploads)
	mux.HandleFunc("GET /report", s.handleReport)
	mux.HandleFunc("GET /report/export", s.handleExport)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return requestIDMiddleware(loggingMiddleware(recoverMiddleware(sessionMiddleware(mux))))
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Resume Shortlister",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /criteria":           "Submit job criteria for the session",
			"GET /criteria":            "List previously submitted criteria",
			"POST /shortlist":          "Shortlist extracted resume records",
			"POST /shortlist/upload":   "Upload parsed resume workbooks and shortlist them",
			"DELETE /shortlist/upload": "Forget the session's uploaded workbooks",
			"GET /report":              "Get the latest shortlist report, optionally filtered",
			"GET /report/export":       "Download the latest report as csv or xlsx",
			"GET /health":              "Health check",
			"GET /ready":               "Readiness check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleReady checks the backing stores
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, c := range s.checkers {
		if err := c.Check(ctx); err != nil {
			slog.ErrorContext(ctx, "Readiness check failed", "store", c.Name(), "error", err)
			respondError(w, r, errServiceUnavailable(c.Name()+" is unavailable"))
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleSubmitCriteria(w http.ResponseWriter, r *http.Request) {
	var req criteriaRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	saved, err := s.service.SubmitCriteria(r.Context(), sessionFrom(r.Context()), ownerFrom(r.Context()), req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleCriteriaHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, r, errBadRequest("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := s.service.CriteriaHistory(r.Context(), ownerFrom(r.Context()), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"criteria": entries,
	})
}

// resolveCriteria picks inline criteria first, then a saved entry, then the
// session's current criteria.
func (s *Server) resolveCriteria(ctx context.Context, inline *criteriaRequest, id string) (models.JobCriteria, error) {
	session := sessionFrom(ctx)
	if inline != nil {
		criteria, err := models.NewJobCriteria(inline.input())
		if err != nil {
			return models.JobCriteria{}, err
		}
		if err := s.service.UseCriteria(ctx, session, criteria); err != nil {
			return models.JobCriteria{}, err
		}
		return criteria, nil
	}
	return s.service.ResolveCriteria(ctx, session, ownerFrom(ctx), id)
}

func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	var req shortlistRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	raws := req.rawRecords()
	if len(raws) == 0 {
		respondError(w, r, errBadRequest("records or replies are required"))
		return
	}

	criteria, err := s.resolveCriteria(r.Context(), req.Criteria, req.CriteriaID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	report, err := s.service.Run(r.Context(), sessionFrom(r.Context()), criteria, raws)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleUpload stores uploaded workbooks of parsed resumes and shortlists
// everything the session has uploaded so far.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		respondError(w, r, uploadError(err))
		return
	}

	files := r.MultipartForm.File["files"]
	files = append(files, r.MultipartForm.File["file"]...)
	if len(files) == 0 {
		respondError(w, r, errBadRequest("no files uploaded"))
		return
	}

	ctx := r.Context()
	session := sessionFrom(ctx)

	criteria, err := s.resolveCriteria(ctx, nil, r.FormValue("criteria_id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Every workbook is checked before any is kept
	uploads := make([]ingestion.Upload, len(files))
	for i, fh := range files {
		data, err := readWorkbookUpload(fh)
		if err != nil {
			respondError(w, r, errBadRequest(err.Error()))
			return
		}
		uploads[i] = ingestion.Upload{Filename: fh.Filename, Content: bytes.NewReader(data)}
	}
	if err := s.service.SaveUploads(session, uploads); err != nil {
		respondError(w, r, err)
		return
	}

	report, err := s.service.RunUploads(ctx, session, criteria)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func readWorkbookUpload(fh *multipart.FileHeader) ([]byte, error) {
	if err := ingestion.CheckUploadName(fh.Filename); err != nil {
		return nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file %s: %w", fh.Filename, err)
	}
	if _, err := ingestion.ReadWorkbook(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	return data, nil
}

func uploadError(err error) error {
	apiErr := fromError(err)
	if apiErr.Code == http.StatusInternalServerError {
		return errBadRequest(fmt.Sprintf("failed to parse form: %v", err))
	}
	return apiErr
}

func (s *Server) handleClearUploads(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearUploads(sessionFrom(r.Context())); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// filteredReport loads the session's latest report narrowed by the request's
// facet parameters
func (s *Server) filteredReport(r *http.Request) (models.Report, error) {
	facets, err := facetsFromQuery(r.URL.Query())
	if err != nil {
		return models.Report{}, err
	}
	report, err := s.service.LastReport(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		return models.Report{}, err
	}
	return facets.ApplyReport(report), nil
}

// handleReport returns the session's latest report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.filteredReport(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleExport downloads the latest report, narrowed by the same filters as
// GET /report. CSV exports one view (shortlisted, rejected or all); XLSX holds
// every view.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	report, err := s.filteredReport(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
		ext         string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		results, err := view(report, r.URL.Query().Get("view"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		if err := export.WriteCSV(&buf, results, report.Criteria); err != nil {
			respondError(w, r, err)
			return
		}
		contentType, ext = "text/csv", "csv"
	case "xlsx":
		if err := export.WriteExcel(&buf, report); err != nil {
			respondError(w, r, err)
			return
		}
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	default:
		respondError(w, r, errBadRequest(fmt.Sprintf("unsupported format %q", format)))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"shortlist_%s.%s\"", report.RunID, ext))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write export", "error", err)
	}
}

// view selects the results of one report view. "all" merges both groups and
// ranks them together.
func view(report models.Report, name string) ([]models.RankedResult, error) {
	switch name {
	case "", "shortlisted":
		return report.Shortlisted, nil
	case "rejected":
		return report.Rejected, nil
	case "all":
		all := make([]models.RankedResult, 0, len(report.Shortlisted)+len(report.Rejected))
		all = append(all, report.Shortlisted...)
		all = append(all, report.Rejected...)
		shortlist.Order(all)
		return all, nil
	default:
		return nil, errBadRequest(fmt.Sprintf("unknown view %q", name))
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		apiErr := fromError(err)
		if apiErr.Code == http.StatusInternalServerError {
			return errBadRequest(fmt.Sprintf("invalid request body: %v", err))
		}
		return apiErr
	}
	return nil
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError sends an error response. Internal errors are logged and
// answered without their detail.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := fromError(err)
	if apiErr.Code == http.StatusInternalServerError {
		if apiErr.Detail != "" {
			slog.ErrorContext(r.Context(), "Internal error", "error", apiErr.Detail, "path", r.URL.Path)
		}
		apiErr = errInternalServer("")
	}
	apiErr = apiErr.WithRequestID(logger.GetRequestID(r.Context()))
	respondJSON(w, apiErr.Code, apiErr)
}
