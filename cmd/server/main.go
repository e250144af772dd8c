package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"video-analyzer/api/rest/routes"
	"video-analyzer/config"
	"video-analyzer/core/analyzer"
	"video-analyzer/core/notify"
	"video-analyzer/core/store"
	"video-analyzer/core/validate"
	"video-analyzer/pkg/log"
	"video-analyzer/providers/elevenlabs"
	"video-analyzer/providers/ffmpeg"
	"video-analyzer/providers/gptzero"
	"video-analyzer/providers/screenshot"
	"video-analyzer/providers/ytdlp"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	logger := log.New(cfg.LogLevel)
	defer logger.Sync()

	// Ensure storage directories exist
	for _, dir := range []string{cfg.ResultsDir, cfg.UploadsDir, cfg.ScreenshotsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal("failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	resultStore := store.New(cfg.ResultsDir)
	hub := notify.NewHub()
	validator := validate.NewValidator(cfg.Whitelist)

	stages := analyzer.Stages{
		Screenshot: screenshot.NewCapturer(cfg.BrowserPath, cfg.ScreenshotsDir, logger),
		Download:   ytdlp.NewDownloader(cfg.YtDlpPath, cfg.UploadsDir, cfg.MaxVideoSeconds, logger),
		Transcode:  ffmpeg.NewTranscoder(cfg.FFmpegPath, cfg.UploadsDir, logger),
		Transcribe: elevenlabs.NewClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL, logger),
		Detect:     gptzero.NewClient(cfg.GPTZeroBaseURL, logger),
	}
	pipeline := analyzer.New(resultStore, hub, stages, logger)

	r := mux.NewRouter()
	routes.SetupRoutes(r, resultStore, hub, pipeline, validator, cfg.ScreenshotsDir, logger)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
