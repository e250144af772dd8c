package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "./results", cfg.ResultsDir)
	assert.Equal(t, 600, cfg.MaxVideoSeconds)
	assert.NotEmpty(t, cfg.Whitelist)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "9090"
max_video_seconds: 120
whitelist:
  - hosts: ["vimeo.com"]
    path_ref: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("ANALYZER_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 120, cfg.MaxVideoSeconds)
	require.Len(t, cfg.Whitelist, 1)
	assert.Equal(t, []string{"vimeo.com"}, cfg.Whitelist[0].Hosts)
	// Fields absent from the overlay keep their env defaults.
	assert.Equal(t, "./uploads", cfg.UploadsDir)
}

func TestLoadMissingOverlayFile(t *testing.T) {
	t.Setenv("ANALYZER_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
