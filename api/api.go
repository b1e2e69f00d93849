// Package api exposes the export service over HTTP: submit an export job,
// poll for its artifact, plus health and version endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/graasp/graasp-service-exporter/config"
	"github.com/graasp/graasp-service-exporter/job"
	"github.com/graasp/graasp-service-exporter/queue"
	"github.com/graasp/graasp-service-exporter/store"
)

// BuildInfo is reported by the version endpoint.
type BuildInfo struct {
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"`
}

// New assembles the HTTP router.
func New(cfg *config.Config, st store.Store, pub queue.Publisher, logger *slog.Logger, build BuildInfo) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, build)
	})

	r.Post("/api/spaces/{id}/export", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !job.IsValidSpaceID(id) {
			writeMessage(w, http.StatusUnprocessableEntity, "error: invalid space id")
			return
		}

		var req job.Request
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeMessage(w, http.StatusBadRequest, "error: malformed request body")
				return
			}
		}

		if req.Format != "" && !job.IsSupportedFormat(req.Format) {
			writeMessage(w, http.StatusUnprocessableEntity, "error: invalid format")
			return
		}

		// the bearer token is forwarded to the worker so the browser can
		// open protected spaces
		if token, ok := bearerToken(r); ok {
			req.Authorization = token
		}

		format := req.Format
		if format == "" {
			format = job.DefaultFormat
		}
		fileID := job.NewFileID(format, req.DryRun)

		msg := job.Message{
			ID:     id,
			Body:   req,
			FileID: fileID,
		}
		if lang := r.Header.Get("Accept-Language"); lang != "" {
			msg.Headers = map[string]string{"accept-language": lang}
		}

		if err := pub.Publish(r.Context(), msg); err != nil {
			logger.Error("publish export job", "space_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, errors.New("could not accept export job"))
			return
		}

		logger.Info("export job accepted", "space_id", id, "file_id", fileID, "format", format)
		w.Header().Set("Access-Control-Expose-Headers", "Location")
		w.Header().Set("Location", fmt.Sprintf("%s/queue/%s", strings.TrimSuffix(cfg.FilesHost, "/"), fileID))
		w.WriteHeader(http.StatusAccepted)
	})

	r.Get("/queue/{fileID}", func(w http.ResponseWriter, r *http.Request) {
		fileID := chi.URLParam(r, "fileID")
		if _, _, err := job.ParseFileID(fileID); err != nil {
			writeMessage(w, http.StatusUnprocessableEntity, "error: invalid document id")
			return
		}

		ready, err := st.Exists(r.Context(), fileID)
		if err != nil {
			logger.Error("poll export job", "file_id", fileID, "error", err)
			writeError(w, http.StatusInternalServerError, errors.New("could not check export status"))
			return
		}
		if !ready {
			writeJSON(w, http.StatusOK, map[string]string{"status": job.StatusPending})
			return
		}

		// dry runs serve their report inline instead of redirecting
		if job.IsDryRunFileID(fileID) {
			body, err := st.GetString(r.Context(), fileID)
			if err != nil {
				logger.Error("read dry-run report", "file_id", fileID, "error", err)
				writeError(w, http.StatusInternalServerError, errors.New("could not read report"))
				return
			}
			var report map[string]any
			if err := json.Unmarshal([]byte(body), &report); err != nil {
				report = map[string]any{}
			}
			report["status"] = job.StatusDone
			writeJSON(w, http.StatusOK, report)
			return
		}

		w.Header().Set("Access-Control-Expose-Headers", "Location")
		w.Header().Set("Location", fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.StorageHost, "/"), fileID))
		w.WriteHeader(http.StatusSeeOther)
	})

	return r
}

// bearerToken extracts the bare token from a Bearer authorization header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) || len(h) == len(prefix) {
		return "", false
	}
	return h[len(prefix):], true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}
