package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"video-analyzer/core/validate"
)

// Config holds the application configuration. It is built once at
// startup and passed into components by reference; core logic never
// reads the environment directly.
type Config struct {
	ServerPort     string `envconfig:"PORT" default:"8080" yaml:"port"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info" yaml:"log_level"`
	ResultsDir     string `envconfig:"RESULTS_DIR" default:"./results" yaml:"results_dir"`
	UploadsDir     string `envconfig:"UPLOAD_DIR" default:"./uploads" yaml:"uploads_dir"`
	ScreenshotsDir string `envconfig:"SCREENSHOTS_DIR" default:"./screenshots" yaml:"screenshots_dir"`

	// Stage collaborator settings.
	YtDlpPath         string `envconfig:"YTDLP_PATH" default:"yt-dlp" yaml:"ytdlp_path"`
	FFmpegPath        string `envconfig:"FFMPEG_PATH" default:"ffmpeg" yaml:"ffmpeg_path"`
	BrowserPath       string `envconfig:"BROWSER_PATH" default:"chromium" yaml:"browser_path"`
	MaxVideoSeconds   int    `envconfig:"MAX_VIDEO_SECONDS" default:"600" yaml:"max_video_seconds"`
	ElevenLabsAPIKey  string `envconfig:"ELEVENLABS_API_KEY" yaml:"elevenlabs_api_key"`
	ElevenLabsBaseURL string `envconfig:"ELEVENLABS_BASE_URL" default:"https://api.elevenlabs.io/v1" yaml:"elevenlabs_base_url"`
	GPTZeroBaseURL    string `envconfig:"GPTZERO_BASE_URL" default:"https://api.gptzero.me" yaml:"gptzero_base_url"`

	// Whitelist of recognized video hosts; only configurable through the
	// YAML overlay. Empty means the built-in YouTube rules.
	Whitelist []validate.Rule `ignored:"true" yaml:"whitelist"`
}

// Load builds the configuration from environment variables, overlaid by
// an optional YAML file named by ANALYZER_CONFIG.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if path := os.Getenv("ANALYZER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if len(cfg.Whitelist) == 0 {
		cfg.Whitelist = validate.DefaultRules()
	}
	return cfg, nil
}
