package vision

import (
	"context"

	"promogen/internal/palette"
)

// Analysis is the normalized output of the vision capability.
type Analysis struct {
	Description       string              `json:"description"`
	VisualAttributes  []string            `json:"visual_attributes"`
	Category          string              `json:"category"`
	SuggestedFeatures []string            `json:"suggested_features"`
	SuggestedPalette  *palette.Suggestion `json:"suggested_palette,omitempty"`
	ScenePrompt       string              `json:"lifestyle_scene_prompt"`
}

// Analyzer inspects a product photo. Implementations do not retry; a failure
// degrades downstream steps to heuristics instead of aborting the pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, imageURL, productName string) (*Analysis, error)
}
