package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"time"

	"go.uber.org/zap"

	"video-analyzer/core/models"
)

const (
	modelID        = "scribe_v1"
	maxUploadBytes = 25 * 1024 * 1024
	requestTimeout = 5 * time.Minute
)

// Client calls the ElevenLabs speech-to-text API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a transcription client.
func NewClient(apiKey, baseURL string, logger *zap.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

type transcribeResponse struct {
	Text     string `json:"text"`
	Language string `json:"language_code"`
}

// Transcribe uploads the waveform file and returns a transcript with
// sentence-level segments.
func (c *Client) Transcribe(ctx context.Context, wavPath string) (*models.Transcription, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("elevenlabs api key not configured")
	}

	stat, err := os.Stat(wavPath)
	if err != nil {
		return nil, fmt.Errorf("audio file not found: %s", wavPath)
	}
	if stat.Size() > maxUploadBytes {
		return nil, fmt.Errorf("audio file too large (max 25MB)")
	}

	body, contentType, err := buildForm(wavPath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speech-to-text", body)
	if err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("xi-api-key", c.apiKey)

	c.logger.Info("sending audio for transcription",
		zap.String("path", wavPath),
		zap.Int64("bytes", stat.Size()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription failed: status %d: %s", resp.StatusCode, payload)
	}

	var out transcribeResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	return formatTranscription(out.Text, out.Language), nil
}

// buildForm assembles the multipart upload: the audio file plus the
// model id the endpoint expects.
func buildForm(wavPath string) (*bytes.Buffer, string, error) {
	file, err := os.Open(wavPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="audio.wav"`)
	header.Set("Content-Type", "audio/wav")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy audio into form: %w", err)
	}

	if err := writer.WriteField("model_id", modelID); err != nil {
		return nil, "", fmt.Errorf("build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("build upload form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}
