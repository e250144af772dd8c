package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"video-analyzer/core/models"
	"video-analyzer/core/store"
	"video-analyzer/core/validate"
)

// PipelineRunner starts the analysis pipeline for a job whose initial
// record is already persisted.
type PipelineRunner interface {
	Run(ctx context.Context, job *models.Job)
}

// AnalyzeHandler handles analysis submissions.
type AnalyzeHandler struct {
	store     *store.ResultStore
	runner    PipelineRunner
	validator *validate.Validator
	logger    *zap.Logger
}

// NewAnalyzeHandler creates the submission handler.
func NewAnalyzeHandler(st *store.ResultStore, runner PipelineRunner, validator *validate.Validator, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		store:     st,
		runner:    runner,
		validator: validator,
		logger:    logger,
	}
}

// AnalyzeRequest is the submission body.
type AnalyzeRequest struct {
	URL string `json:"url"`
}

// AnalyzeResponse acknowledges a started analysis.
type AnalyzeResponse struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Analyze handles POST /analyze. Validation failures never create a
// job; on success the pipeline runs in its own goroutine and the job id
// is returned immediately.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "video URL is required"})
		return
	}
	if !h.validator.Valid(req.URL) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid or unsupported video URL"})
		return
	}

	jobID := uuid.New().String()
	job := models.NewJob(jobID, req.URL)
	if err := h.store.Create(jobID, job); err != nil {
		h.logger.Error("failed to create job record", zap.String("jobId", jobID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to start analysis"})
		return
	}

	h.logger.Info("analysis started", zap.String("jobId", jobID), zap.String("url", req.URL))

	// The pipeline outlives this request; its only externally visible
	// effect is what it writes to the store and publishes to the hub.
	go h.runner.Run(context.Background(), job)

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		JobID:   jobID,
		Status:  "started",
		Message: "Analysis started. Use GET /result/:id to check progress.",
	})
}
