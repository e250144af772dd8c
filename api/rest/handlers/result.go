package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"video-analyzer/core/models"
	"video-analyzer/core/store"
)

// ResultHandler serves job records and screenshot artifacts.
type ResultHandler struct {
	store          *store.ResultStore
	screenshotsDir string
	logger         *zap.Logger
}

// NewResultHandler creates the query handler.
func NewResultHandler(st *store.ResultStore, screenshotsDir string, logger *zap.Logger) *ResultHandler {
	return &ResultHandler{
		store:          st,
		screenshotsDir: screenshotsDir,
		logger:         logger,
	}
}

type notFoundBody struct {
	Error  string `json:"error"`
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// GetResult handles GET /result/{id}. The record's own status field is
// the single source of truth; nothing is re-derived here.
func (h *ResultHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	job, err := h.store.Read(jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody{
				Error:  "result not found",
				JobID:  jobID,
				Status: models.StatusNotFound,
			})
			return
		}
		h.logger.Error("failed to read job record", zap.String("jobId", jobID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to fetch result"})
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// GetScreenshot handles GET /result/{id}/screenshot.
func (h *ResultHandler) GetScreenshot(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	path := filepath.Join(h.screenshotsDir, jobID+".png")
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "screenshot not found"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}
