package scene

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSynthesizeSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/scenes" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer scene-key" {
			t.Fatalf("Authorization = %q", got)
		}
		var req struct {
			ImageURL string  `json:"image_url"`
			Prompt   string  `json:"prompt"`
			Fidelity float64 `json:"fidelity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Prompt != "tote bag on a cafe table" {
			t.Fatalf("prompt = %q", req.Prompt)
		}
		if req.Fidelity != 0.9 {
			t.Fatalf("fidelity = %v", req.Fidelity)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"image_url": "https://cdn.local/scene.png"})
	}))
	defer ts.Close()

	client := NewClient(Options{BaseURL: ts.URL, APIKey: "scene-key"})
	url, err := client.Synthesize(context.Background(), "https://cdn.local/cutout.png", "tote bag on a cafe table", 0.9)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if url != "https://cdn.local/scene.png" {
		t.Fatalf("url = %q", url)
	}
}

func TestSynthesizeDefaultsFidelity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Fidelity float64 `json:"fidelity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Fidelity != 0.85 {
			t.Fatalf("fidelity = %v, want default 0.85", req.Fidelity)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"image_url": "https://cdn.local/scene.png"})
	}))
	defer ts.Close()

	client := NewClient(Options{BaseURL: ts.URL, APIKey: "scene-key"})
	if _, err := client.Synthesize(context.Background(), "https://cdn.local/cutout.png", "prompt", 0); err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
}

func TestSynthesizeRequiresPrompt(t *testing.T) {
	client := NewClient(Options{BaseURL: "https://scene.local", APIKey: "k"})
	if _, err := client.Synthesize(context.Background(), "https://cdn.local/cutout.png", "  ", 0.85); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestSynthesizeMissingAPIKey(t *testing.T) {
	client := NewClient(Options{BaseURL: "https://scene.local"})
	if _, err := client.Synthesize(context.Background(), "https://cdn.local/cutout.png", "prompt", 0.85); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
