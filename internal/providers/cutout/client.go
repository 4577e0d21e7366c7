// Package cutout wraps the external background-removal service.
package cutout

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

// Remover strips the background from a product photo, returning the URL of
// the enhanced image. Optional capability: callers fall back to the original
// image URL on failure.
type Remover interface {
	Remove(ctx context.Context, imageURL string) (string, error)
}

// Options configures the HTTP client for the removal service.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client calls the background-removal HTTP API. No retries.
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
			timeout = 45 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
	}
}

type removeRequest struct {
	ImageURL     string `json:"image_url"`
	OutputFormat string `json:"output_format,omitempty"`
}

type removeResponse struct {
	ImageURL string `json:"image_url"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func (c *Client) Remove(ctx context.Context, imageURL string) (string, error) {
	if c == nil {
		return "", errors.New("cutout: client not configured")
	}
	if c.token == "" {
		return "", errors.New("cutout: API key is missing")
	}
	if c.baseURL == "" {
		return "", errors.New("cutout: base url is missing")
	}
	trimmed := strings.TrimSpace(imageURL)
	if trimmed == "" {
		return "", errors.New("cutout: image url required")
	}

	body, err := json.Marshal(removeRequest{ImageURL: trimmed, OutputFormat: "png"})
	if err != nil {
		return "", err
	}
	endpoint := c.baseURL + "/v1/remove-background"
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

	var out removeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", fmt.Errorf("cutout: http %d", resp.StatusCode)
		}
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Message != "" {
			return "", fmt.Errorf("cutout error: %s (%s)", out.Message, out.Code)
		}
		return "", fmt.Errorf("cutout: http %d", resp.StatusCode)
	}
	if strings.TrimSpace(out.ImageURL) == "" {
		return "", errors.New("cutout: missing image url")
	}
	return out.ImageURL, nil
}

var _ Remover = (*Client)(nil)
