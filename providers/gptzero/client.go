package gptzero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const requestTimeout = 60 * time.Second

// Client calls the GPTZero text-prediction API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a detector client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

type predictRequest struct {
	Document string `json:"document"`
}

type predictResponse struct {
	Documents []struct {
		CompletelyGeneratedProb float64 `json:"completely_generated_prob"`
	} `json:"documents"`
}

// Predict returns the probability in [0,1] that text is AI-generated.
func (c *Client) Predict(ctx context.Context, text string) (float64, error) {
	payload, err := json.Marshal(predictRequest{Document: text})
	if err != nil {
		return 0, fmt.Errorf("encode detector request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/predict/text", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build detector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("detector request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read detector response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("detector returned status %d: %s", resp.StatusCode, body)
	}

	var out predictResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("decode detector response: %w", err)
	}
	if len(out.Documents) == 0 {
		return 0, fmt.Errorf("detector response contains no documents")
	}
	return out.Documents[0].CompletelyGeneratedProb, nil
}
