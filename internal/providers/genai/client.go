// Package genai provides a small facade over the Gemini generateContent API
// shared by the vision and copywriting adapters. Providers stay focused on
// translating domain requests into prompts and parsing model payloads.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
	defaultTimeout = 30 * time.Second
)

// Options controls how the client is configured.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a thin Gemini generateContent caller. It never retries; callers
// decide how a failure degrades.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// Part is one prompt fragment: text or a remotely hosted image.
type Part struct {
	Text     string
	ImageURL string
	MIMEType string
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text     string          `json:"text,omitempty"`
	FileData *geminiFileData `json:"fileData,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient builds the facade. The API key may be empty; calls then fail at
// invocation time, which the pipeline absorbs as a degraded stage.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// GenerateJSON sends the parts as a single user turn requesting an
// application/json response and returns the first candidate's text.
func (c *Client) GenerateJSON(ctx context.Context, parts []Part, temperature float64) (string, error) {
	if c == nil {
		return "", errors.New("genai: client not configured")
	}
	if c.apiKey == "" {
		return "", errors.New("genai: api key is missing")
	}
	if len(parts) == 0 {
		return "", errors.New("genai: at least one part is required")
	}

	content := geminiContent{Role: "user"}
	for _, p := range parts {
		if p.ImageURL != "" {
			mime := p.MIMEType
			if mime == "" {
				mime = "image/jpeg"
			}
			content.Parts = append(content.Parts, geminiPart{
				FileData: &geminiFileData{MimeType: mime, FileURI: p.ImageURL},
			})
			continue
		}
		if strings.TrimSpace(p.Text) != "" {
			content.Parts = append(content.Parts, geminiPart{Text: p.Text})
		}
	}
	payload := geminiRequest{
		Contents: []geminiContent{content},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      temperature,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("genai: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("genai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai: call model: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", fmt.Errorf("genai: http %d", resp.StatusCode)
		}
		return "", fmt.Errorf("genai: decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("genai: %s (http %d)", out.Error.Message, resp.StatusCode)
		}
		return "", fmt.Errorf("genai: http %d", resp.StatusCode)
	}
	text := firstText(out)
	if text == "" {
		return "", errors.New("genai: empty response")
	}
	return text, nil
}

func firstText(out geminiResponse) string {
	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

// ExtractJSONFragment strips markdown code fences and surrounding prose from
// a model reply, leaving the JSON object or array.
func ExtractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
