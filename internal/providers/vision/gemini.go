package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"promogen/internal/palette"
	"promogen/internal/providers/genai"
)

// Gemini analyzes product photos through the shared Gemini facade.
type Gemini struct {
	client *genai.Client
}

func NewGemini(client *genai.Client) *Gemini {
	return &Gemini{client: client}
}

type analysisPayload struct {
	Description       string   `json:"description"`
	VisualAttributes  []string `json:"visual_attributes"`
	Category          string   `json:"category"`
	SuggestedFeatures []string `json:"suggested_features"`
	SuggestedPalette  *struct {
		Primary    string `json:"primary"`
		Accent     string `json:"accent"`
		Background string `json:"background"`
		Text       string `json:"text"`
	} `json:"suggested_palette"`
	ScenePrompt string `json:"lifestyle_scene_prompt"`
}

func (g *Gemini) Analyze(ctx context.Context, imageURL, productName string) (*Analysis, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, errors.New("vision: image url required")
	}
	parts := []genai.Part{
		{ImageURL: imageURL},
		{Text: buildPrompt(productName)},
	}
	raw, err := g.client.GenerateJSON(ctx, parts, 0.3)
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}
	fragment := genai.ExtractJSONFragment(raw)
	if fragment == "" {
		return nil, errors.New("vision: empty payload")
	}
	var payload analysisPayload
	if err := json.Unmarshal([]byte(fragment), &payload); err != nil {
		return nil, fmt.Errorf("vision: decode payload: %w", err)
	}
	analysis := &Analysis{
		Description:       strings.TrimSpace(payload.Description),
		VisualAttributes:  payload.VisualAttributes,
		Category:          strings.ToLower(strings.TrimSpace(payload.Category)),
		SuggestedFeatures: payload.SuggestedFeatures,
		ScenePrompt:       strings.TrimSpace(payload.ScenePrompt),
	}
	if p := payload.SuggestedPalette; p != nil {
		analysis.SuggestedPalette = &palette.Suggestion{
			Primary:    p.Primary,
			Accent:     p.Accent,
			Background: p.Background,
			Text:       p.Text,
		}
	}
	return analysis, nil
}

func buildPrompt(productName string) string {
	sb := &strings.Builder{}
	sb.WriteString("Analyze this product photo for a marketing page. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"description":string,"visual_attributes":string[],"category":string,"suggested_features":string[],"suggested_palette":{"primary":string,"accent":string,"background":string,"text":string},"lifestyle_scene_prompt":string}`)
	fmt.Fprintf(sb, ". The product is named %q. Category must be a short lowercase noun (e.g. apparel, electronics, food). Palette colors must be #rrggbb hex drawn from the photo. The lifestyle_scene_prompt should describe a realistic scene showing the product in use.", productName)
	return sb.String()
}
