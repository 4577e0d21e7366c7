package copywrite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"promogen/internal/domain"
	"promogen/internal/providers/genai"
	"promogen/internal/providers/vision"
)

// Gemini writes poster copy through the shared Gemini facade. Output always
// passes domain.NormalizeCopy so callers can count on the arity invariant.
type Gemini struct {
	client *genai.Client
}

func NewGemini(client *genai.Client) *Gemini {
	return &Gemini{client: client}
}

type copyPayload struct {
	HookHeadline string   `json:"hook_headline"`
	Subheadline  string   `json:"subheadline"`
	Problem      string   `json:"problem"`
	Solution     string   `json:"solution"`
	Features     []string `json:"features"`
	TrustBadges  []string `json:"trust_badges"`
	CTAText      string   `json:"cta_text"`
}

func (g *Gemini) Write(ctx context.Context, facts Facts, analysis *vision.Analysis) (*domain.PosterCopy, error) {
	raw, err := g.client.GenerateJSON(ctx, []genai.Part{{Text: buildCopyPrompt(facts, analysis)}}, 0.6)
	if err != nil {
		return nil, fmt.Errorf("copywrite: %w", err)
	}
	fragment := genai.ExtractJSONFragment(raw)
	if fragment == "" {
		return nil, errors.New("copywrite: empty payload")
	}
	var payload copyPayload
	if err := json.Unmarshal([]byte(fragment), &payload); err != nil {
		return nil, fmt.Errorf("copywrite: decode payload: %w", err)
	}
	if strings.TrimSpace(payload.HookHeadline) == "" {
		return nil, errors.New("copywrite: missing headline")
	}
	out := &domain.PosterCopy{
		HookHeadline: strings.TrimSpace(payload.HookHeadline),
		Subheadline:  strings.TrimSpace(payload.Subheadline),
		Problem:      strings.TrimSpace(payload.Problem),
		Solution:     strings.TrimSpace(payload.Solution),
		Features:     payload.Features,
		TrustBadges:  payload.TrustBadges,
		CTAText:      strings.TrimSpace(payload.CTAText),
	}
	domain.NormalizeCopy(out)
	return out, nil
}

func buildCopyPrompt(facts Facts, analysis *vision.Analysis) string {
	sb := &strings.Builder{}
	sb.WriteString("You write persuasive, concise marketing copy for small online sellers. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"hook_headline":string,"subheadline":string,"problem":string,"solution":string,"features":string[4],"trust_badges":string[3],"cta_text":string}`)
	locale := facts.Locale
	if locale == "" {
		locale = "en"
	}
	fmt.Fprintf(sb, ". Use locale '%s' for language choices. Product: name=%q, price=%s", locale, facts.Name, facts.Price)
	if facts.SalePrice != "" {
		fmt.Fprintf(sb, ", sale_price=%s", facts.SalePrice)
	}
	if facts.Description != "" {
		fmt.Fprintf(sb, ", description=%q", facts.Description)
	}
	if len(facts.Sizes) > 0 {
		fmt.Fprintf(sb, ", sizes=%s", strings.Join(facts.Sizes, "/"))
	}
	if len(facts.Colors) > 0 {
		fmt.Fprintf(sb, ", colors=%s", strings.Join(facts.Colors, "/"))
	}
	if facts.Category != "" {
		fmt.Fprintf(sb, ", category=%s", facts.Category)
	}
	if analysis != nil {
		if analysis.Description != "" {
			fmt.Fprintf(sb, ". The photo shows: %s", analysis.Description)
		}
		if len(analysis.SuggestedFeatures) > 0 {
			fmt.Fprintf(sb, ". Feature angles worth using: %s", strings.Join(analysis.SuggestedFeatures, "; "))
		}
	}
	if facts.Brief != "" {
		fmt.Fprintf(sb, ". Seller direction: %q", facts.Brief)
	}
	sb.WriteString(". Keep the hook headline under 8 words.")
	return sb.String()
}
