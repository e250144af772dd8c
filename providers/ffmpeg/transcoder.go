package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const transcodeTimeout = 5 * time.Minute

// Transcoder normalizes media to mono 16 kHz 16-bit PCM WAV with the
// ffmpeg binary.
type Transcoder struct {
	binaryPath string
	dir        string
	logger     *zap.Logger
}

// NewTranscoder creates a transcoder writing waveforms under dir.
func NewTranscoder(binaryPath, dir string, logger *zap.Logger) *Transcoder {
	return &Transcoder{
		binaryPath: binaryPath,
		dir:        dir,
		logger:     logger,
	}
}

// ToWAV converts mediaPath into <jobID>.wav.
func (t *Transcoder) ToWAV(ctx context.Context, mediaPath, jobID string) (string, error) {
	outPath := filepath.Join(t.dir, jobID+".wav")

	ctx, cancel := context.WithTimeout(ctx, transcodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.binaryPath,
		"-y",
		"-i", mediaPath,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg conversion failed: %w, stderr: %s", err, stderr.String())
	}

	t.logger.Info("audio converted", zap.String("jobId", jobID), zap.String("path", outPath))
	return outPath, nil
}
