package routes

import (
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"video-analyzer/api/rest/handlers"
	"video-analyzer/core/notify"
	"video-analyzer/core/store"
	"video-analyzer/core/validate"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	r *mux.Router,
	st *store.ResultStore,
	hub *notify.Hub,
	runner handlers.PipelineRunner,
	validator *validate.Validator,
	screenshotsDir string,
	logger *zap.Logger,
) {
	analyzeHandler := handlers.NewAnalyzeHandler(st, runner, validator, logger)
	resultHandler := handlers.NewResultHandler(st, screenshotsDir, logger)
	subscribeHandler := handlers.NewSubscribeHandler(hub, logger)

	r.HandleFunc("/analyze", analyzeHandler.Analyze).Methods("POST")
	r.HandleFunc("/result/{id}", resultHandler.GetResult).Methods("GET")
	r.HandleFunc("/result/{id}/screenshot", resultHandler.GetScreenshot).Methods("GET")
	r.HandleFunc("/subscribe/{id}", subscribeHandler.Subscribe).Methods("GET")
	r.HandleFunc("/health", handlers.Health).Methods("GET")
}
