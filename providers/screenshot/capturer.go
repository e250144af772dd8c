package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const captureTimeout = 90 * time.Second

// placeholderPNG is a minimal valid PNG written in place of a real
// capture when the browser step fails.
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x91, 0x68,
	0x36, 0x00, 0x00, 0x00, 0x0c, 0x49, 0x44, 0x41,
	0x54, 0x08, 0x99, 0x01, 0x01, 0x01, 0x00, 0x00,
	0xfe, 0xff, 0x00, 0x00, 0x00, 0x02, 0x00, 0x01,
	0xe2, 0x21, 0xbc, 0x33, 0x00, 0x00, 0x00, 0x00,
	0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// Capturer takes page screenshots with a headless browser binary.
type Capturer struct {
	browserPath string
	dir         string
	logger      *zap.Logger
}

// NewCapturer creates a capturer writing images under dir.
func NewCapturer(browserPath, dir string, logger *zap.Logger) *Capturer {
	return &Capturer{
		browserPath: browserPath,
		dir:         dir,
		logger:      logger,
	}
}

// Capture screenshots the video page into <jobID>.png. It only errors
// when even the placeholder image cannot be written: a failed browser
// run falls back to the placeholder instead of propagating.
func (c *Capturer) Capture(ctx context.Context, url, jobID string) (string, error) {
	outPath := filepath.Join(c.dir, jobID+".png")

	ctx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.browserPath,
		"--headless",
		"--no-sandbox",
		"--disable-gpu",
		"--hide-scrollbars",
		"--window-size=1280,720",
		"--screenshot="+outPath,
		url,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		c.logger.Warn("screenshot capture failed, writing placeholder",
			zap.String("jobId", jobID),
			zap.Error(err),
			zap.String("stderr", stderr.String()))
		if werr := os.WriteFile(outPath, placeholderPNG, 0o644); werr != nil {
			return "", fmt.Errorf("write placeholder screenshot: %w", werr)
		}
		return outPath, nil
	}

	// Some browser builds exit zero without producing a file.
	if _, err := os.Stat(outPath); err != nil {
		if werr := os.WriteFile(outPath, placeholderPNG, 0o644); werr != nil {
			return "", fmt.Errorf("write placeholder screenshot: %w", werr)
		}
	}
	return outPath, nil
}
