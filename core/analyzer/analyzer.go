package analyzer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"video-analyzer/core/models"
	"video-analyzer/core/notify"
	"video-analyzer/core/store"
)

// ScreenshotTaker captures a still of the video page. Implementations
// substitute a placeholder image on capture failure instead of erroring.
type ScreenshotTaker interface {
	Capture(ctx context.Context, url, jobID string) (string, error)
}

// AudioDownloader fetches the source's audio track to a local file.
type AudioDownloader interface {
	Download(ctx context.Context, url, jobID string) (string, error)
}

// Transcoder normalizes downloaded media to a mono 16 kHz WAV file.
type Transcoder interface {
	ToWAV(ctx context.Context, mediaPath, jobID string) (string, error)
}

// Transcriber produces a transcript from a normalized waveform file.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (*models.Transcription, error)
}

// Detector scores a piece of text with an AI-generation probability.
type Detector interface {
	Predict(ctx context.Context, text string) (float64, error)
}

// Stages bundles the five external stage collaborators.
type Stages struct {
	Screenshot ScreenshotTaker
	Download   AudioDownloader
	Transcode  Transcoder
	Transcribe Transcriber
	Detect     Detector
}

// Analyzer runs the analysis pipeline for submitted jobs. Each job is
// processed by exactly one goroutine; the only shared structures are the
// store and the hub, both keyed by job id.
type Analyzer struct {
	store  *store.ResultStore
	hub    *notify.Hub
	stages Stages
	logger *zap.Logger
}

// New creates an analyzer.
func New(st *store.ResultStore, hub *notify.Hub, stages Stages, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		store:  st,
		hub:    hub,
		stages: stages,
		logger: logger,
	}
}

// Run executes the pipeline for one job until a terminal state. It never
// returns an error or panics through to its caller: every failure ends
// as a persisted failed record. The caller has already written the
// initial record.
func (a *Analyzer) Run(ctx context.Context, job *models.Job) {
	log := a.logger.With(zap.String("jobId", job.ID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panic", zap.Any("panic", r))
			a.fail(log, job, fmt.Sprintf("internal pipeline error: %v", r))
		}
	}()

	var tempFiles []string
	defer func() { a.cleanup(log, tempFiles) }()

	// Stage 1: screenshot. The provider falls back to a placeholder
	// image, so in practice this stage cannot fail the job.
	log.Info("taking screenshot")
	if _, err := a.stages.Screenshot.Capture(ctx, job.URL, job.ID); err != nil {
		a.fail(log, job, "screenshot failed: "+err.Error())
		return
	}
	job.SetStageOutput(models.StageScreenshot, "/result/"+job.ID+"/screenshot")
	if !a.checkpoint(log, job, "Screenshot captured") {
		return
	}

	// Stage 2: download audio.
	log.Info("downloading audio")
	audioPath, err := a.stages.Download.Download(ctx, job.URL, job.ID)
	if err != nil {
		a.fail(log, job, "audio download failed: "+err.Error())
		return
	}
	tempFiles = append(tempFiles, audioPath)
	if !a.checkpoint(log, job, "Audio downloaded") {
		return
	}

	// Stage 3: transcode to mono 16 kHz WAV.
	log.Info("converting audio to wav")
	wavPath, err := a.stages.Transcode.ToWAV(ctx, audioPath, job.ID)
	if err != nil {
		a.fail(log, job, "audio conversion failed: "+err.Error())
		return
	}
	tempFiles = append(tempFiles, wavPath)
	if !a.checkpoint(log, job, "Audio converted") {
		return
	}

	// Stage 4: transcribe.
	log.Info("transcribing audio")
	transcription, err := a.stages.Transcribe.Transcribe(ctx, wavPath)
	if err != nil {
		a.fail(log, job, "transcription failed: "+err.Error())
		return
	}

	// Stage 5: score each segment. Detector failures mark the segment's
	// score unknown and never fail the job.
	log.Info("scoring segments", zap.Int("segments", len(transcription.Segments)))
	a.scoreSegments(ctx, log, transcription)

	job.SetStageOutput(models.StageTranscription, transcription)
	now := time.Now().UTC()
	job.EndTime = &now
	job.Status = models.JobStatusCompleted
	if err := a.store.Update(job.ID, job); err != nil {
		log.Error("failed to persist completed record", zap.Error(err))
		return
	}
	a.hub.Publish(job.ID, "Analysis completed")
	log.Info("analysis completed")
}

// checkpoint persists the current record and then publishes progress, in
// that order: a poller that has seen the notification must already find
// the stage output persisted. Returns false after converting a store
// failure into a terminal state.
func (a *Analyzer) checkpoint(log *zap.Logger, job *models.Job, message string) bool {
	if err := a.store.Update(job.ID, job); err != nil {
		a.fail(log, job, "failed to persist job record: "+err.Error())
		return false
	}
	a.hub.Publish(job.ID, message)
	return true
}

// scoreSegments attaches a detector score to every segment in transcript
// order. Blank segments keep a nil score and are never dropped.
func (a *Analyzer) scoreSegments(ctx context.Context, log *zap.Logger, tr *models.Transcription) {
	for i := range tr.Segments {
		seg := &tr.Segments[i]
		if strings.TrimSpace(seg.Text) == "" {
			seg.AIProbability = nil
			continue
		}

		prob, err := a.stages.Detect.Predict(ctx, seg.Text)
		if err != nil {
			log.Warn("detector call failed", zap.Int("segment", i), zap.Error(err))
			seg.AIProbability = nil
			continue
		}
		seg.AIProbability = &prob
	}
}

// fail writes the terminal failed record and publishes the failure. A
// record that already reached a terminal state is left untouched. The
// terminal write itself is best-effort: if the store is down there is
// nothing left to escalate to.
func (a *Analyzer) fail(log *zap.Logger, job *models.Job, message string) {
	if job.Terminal() {
		return
	}

	log.Error("analysis failed", zap.String("error", message))
	job.Status = models.JobStatusFailed
	job.Error = message
	now := time.Now().UTC()
	job.EndTime = &now

	if err := a.store.Update(job.ID, job); err != nil {
		log.Error("failed to persist failed record", zap.Error(err))
	}
	a.hub.Publish(job.ID, "Analysis failed: "+message)
}

// cleanup removes transient media files once the job is terminal.
// Failures are logged and swallowed.
func (a *Analyzer) cleanup(log *zap.Logger, paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove temp file", zap.String("path", path), zap.Error(err))
		}
	}
}
