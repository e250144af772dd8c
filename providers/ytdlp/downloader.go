package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	probeTimeout    = 2 * time.Minute
	downloadTimeout = 10 * time.Minute
	maxFilesize     = "50M"
)

// audioExtensions are the container formats yt-dlp may produce for an
// audio-only download.
var audioExtensions = []string{".m4a", ".mp4", ".webm"}

// Downloader extracts a video's audio track with the yt-dlp binary.
type Downloader struct {
	binaryPath  string
	dir         string
	maxDuration int
	logger      *zap.Logger
}

// NewDownloader creates a downloader writing media under dir.
// maxDuration is the source duration ceiling in seconds.
func NewDownloader(binaryPath, dir string, maxDuration int, logger *zap.Logger) *Downloader {
	return &Downloader{
		binaryPath:  binaryPath,
		dir:         dir,
		maxDuration: maxDuration,
		logger:      logger,
	}
}

type videoInfo struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// Download probes the source, rejects videos over the duration ceiling,
// and extracts the audio track to <jobID>.m4a.
func (d *Downloader) Download(ctx context.Context, url, jobID string) (string, error) {
	info, err := d.probe(ctx, url)
	if err != nil {
		return "", err
	}
	d.logger.Info("video info",
		zap.String("jobId", jobID),
		zap.String("title", info.Title),
		zap.Float64("duration", info.Duration))

	if info.Duration > float64(d.maxDuration) {
		return "", fmt.Errorf("video too long (max %d seconds)", d.maxDuration)
	}

	dctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	outTemplate := filepath.Join(d.dir, jobID+".%(ext)s")
	cmd := exec.CommandContext(dctx, d.binaryPath,
		"--extract-audio",
		"--audio-format", "m4a",
		"--audio-quality", "0",
		"--output", outTemplate,
		"--no-playlist",
		"--max-filesize", maxFilesize,
		"--no-warnings",
		url,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp download failed: %w, stderr: %s", err, stderr.String())
	}

	return d.locate(jobID)
}

// probe fetches the source metadata without downloading media.
func (d *Downloader) probe(ctx context.Context, url string) (*videoInfo, error) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(pctx, d.binaryPath,
		"--dump-single-json",
		"--no-playlist",
		"--no-warnings",
		url,
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp probe failed: %w, stderr: %s", err, stderr.String())
	}

	var info videoInfo
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}
	return &info, nil
}

// locate finds the produced audio file and normalizes its name to
// <jobID>.m4a. yt-dlp may keep the original container when the track is
// already in an acceptable format.
func (d *Downloader) locate(jobID string) (string, error) {
	finalPath := filepath.Join(d.dir, jobID+".m4a")

	for _, ext := range audioExtensions {
		path := filepath.Join(d.dir, jobID+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if path != finalPath {
			if err := os.Rename(path, finalPath); err != nil {
				return "", fmt.Errorf("rename downloaded audio: %w", err)
			}
		}
		return finalPath, nil
	}
	return "", fmt.Errorf("downloaded audio file not found for job %s", jobID)
}
