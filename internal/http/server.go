package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rinevard/BIT-Annual-Eat/internal/config"
	"github.com/rinevard/BIT-Annual-Eat/internal/render"
	"github.com/rinevard/BIT-Annual-Eat/internal/report"
)

const (
	studentKeyHeader   = "X-Eatbit-Student-Key"
	editPasswordHeader = "X-Edit-Password"
)

type Server struct {
	cfg     config.Config
	reports *report.Store
}

func NewServer(cfg config.Config, reports *report.Store) *Server {
	return &Server{cfg: cfg, reports: reports}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/reports", s.handleUploadReport)
	r.Put("/api/reports/{reportId}", s.handleOverwriteReport)
	r.Patch("/api/reports/{reportId}/profile", s.handlePatchProfile)
	r.Get("/r/{reportId}", s.handleViewReport)

	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return r
}

// Handlers

type uploadResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (s *Server) handleUploadReport(w http.ResponseWriter, r *http.Request) {
	clientKey := r.Header.Get(studentKeyHeader)

	if isJSONRequest(r) {
		// The declared length is checked before the body is read so an
		// oversized upload is rejected without buffering it.
		if r.ContentLength > report.MaxJSONBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large")
			return
		}
		body, err := readBody(r, report.MaxJSONBytes)
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large")
			return
		}
		id, err := s.reports.UploadJSON(r.Context(), body, clientKey)
		if err != nil {
			switch {
			case errors.Is(err, report.ErrPayloadTooLarge):
				writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large")
			case errors.Is(err, report.ErrMissingFields):
				writeError(w, http.StatusBadRequest, "missing_fields")
			case errors.Is(err, report.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, "invalid_json")
			default:
				writeError(w, http.StatusInternalServerError, "server_error")
			}
			return
		}
		uploadsTotal.WithLabelValues("json").Inc()
		writeJSON(w, http.StatusOK, uploadResponse{ID: id, URL: s.reportURL(id)})
		return
	}

	body, err := readBody(r, report.MaxHTMLBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	id, err := s.reports.UploadHTML(r.Context(), body, clientKey)
	if err != nil {
		if errors.Is(err, report.ErrInvalidInput) || errors.Is(err, report.ErrPayloadTooLarge) {
			writeError(w, http.StatusBadRequest, "invalid_body")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	uploadsTotal.WithLabelValues("html").Inc()
	writeJSON(w, http.StatusOK, uploadResponse{ID: id, URL: s.reportURL(id)})
}

func (s *Server) handleOverwriteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportId")
	body, err := readBody(r, report.MaxHTMLBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := s.reports.Overwrite(r.Context(), id, body); err != nil {
		if errors.Is(err, report.ErrInvalidInput) || errors.Is(err, report.ErrPayloadTooLarge) {
			writeError(w, http.StatusBadRequest, "invalid_body")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeText(w, http.StatusOK, "ok")
}

func (s *Server) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportId")
	password := r.Header.Get(editPasswordHeader)

	var update report.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if err := s.reports.PatchProfile(r.Context(), id, password, update); err != nil {
		switch {
		case errors.Is(err, report.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found")
		case errors.Is(err, report.ErrCorruptedData):
			writeError(w, http.StatusInternalServerError, "corrupted_data")
		case errors.Is(err, report.ErrForbidden):
			writeError(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, report.ErrPayloadTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "avatar_too_large")
		case errors.Is(err, report.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_field")
		default:
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}
	profilePatchesTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleViewReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportId")
	doc, err := s.reports.Load(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found")
		case errors.Is(err, report.ErrCorruptedData):
			writeError(w, http.StatusInternalServerError, "corrupted_data")
		default:
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	page := doc.HTML
	if doc.Record != nil {
		page, err = render.Page(id, doc.Record)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
	}
	viewsTotal.Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, page)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "BIT-Annual-Eat report server")
}

func (s *Server) reportURL(id string) string {
	return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/r/" + id
}

// Utilities

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// readBody reads at most limit+1 bytes; a body past the limit surfaces as an
// error without being buffered whole.
func readBody(r *http.Request, limit int) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
