// Package scene wraps the external image-synthesis service that places a
// product photo into a lifestyle scene.
package scene

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Synthesizer renders a lifestyle scene around the given product image.
// Optional capability: failure simply omits the scene asset.
type Synthesizer interface {
	Synthesize(ctx context.Context, imageURL, scenePrompt string, fidelity float64) (string, error)
}

// Options configures the HTTP client for the synthesis service.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client calls the scene-synthesis HTTP API. No retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
	}
}

type synthesizeRequest struct {
	ImageURL string  `json:"image_url"`
	Prompt   string  `json:"prompt"`
	Fidelity float64 `json:"fidelity,omitempty"`
}

type synthesizeResponse struct {
	ImageURL string `json:"image_url"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func (c *Client) Synthesize(ctx context.Context, imageURL, scenePrompt string, fidelity float64) (string, error) {
	if c == nil {
		return "", errors.New("scene: client not configured")
	}
	if c.token == "" {
		return "", errors.New("scene: API key is missing")
	}
	if c.baseURL == "" {
		return "", errors.New("scene: base url is missing")
	}
	trimmed := strings.TrimSpace(imageURL)
	if trimmed == "" {
		return "", errors.New("scene: image url required")
	}
	prompt := strings.TrimSpace(scenePrompt)
	if prompt == "" {
		return "", errors.New("scene: prompt required")
	}
	if fidelity <= 0 || fidelity > 1 {
		fidelity = 0.85
	}

	body, err := json.Marshal(synthesizeRequest{ImageURL: trimmed, Prompt: prompt, Fidelity: fidelity})
	if err != nil {
		return "", err
	}
	endpoint := c.baseURL + "/v1/scenes"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", fmt.Errorf("scene: http %d", resp.StatusCode)
		}
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Message != "" {
			return "", fmt.Errorf("scene error: %s (%s)", out.Message, out.Code)
		}
		return "", fmt.Errorf("scene: http %d", resp.StatusCode)
	}
	if strings.TrimSpace(out.ImageURL) == "" {
		return "", errors.New("scene: missing image url")
	}
	return out.ImageURL, nil
}

var _ Synthesizer = (*Client)(nil)
