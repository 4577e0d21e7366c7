// Package palette derives a brand color palette for generated marketing
// assets. Resolution is a pure function over the vision suggestion and a
// category hint so it can run (and be tested) without any network access.
package palette

import (
	"fmt"
	"strconv"
	"strings"
)

// Suggestion is the palette proposed by the vision analyzer.
type Suggestion struct {
	Primary    string `json:"primary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

// Result is a fully resolved palette. All six colors are valid #rrggbb hex.
type Result struct {
	Primary      string `json:"primary"`
	Accent       string `json:"accent"`
	Background   string `json:"background"`
	Text         string `json:"text"`
	GradientFrom string `json:"gradient_from"`
	GradientTo   string `json:"gradient_to"`
	IsDark       bool   `json:"is_dark"`
}

// Fixed fallback palettes used when no vision suggestion is available.
var (
	darkFallback = Result{
		Primary:      "#6c5ce7",
		Accent:       "#00d2d3",
		Background:   "#0f1117",
		Text:         "#f5f6fa",
		GradientFrom: "#6c5ce7",
		GradientTo:   "#4b40a1",
		IsDark:       true,
	}
	lightFallback = Result{
		Primary:      "#2563eb",
		Accent:       "#f59e0b",
		Background:   "#f8fafc",
		Text:         "#1e293b",
		GradientFrom: "#2563eb",
		GradientTo:   "#1945a4",
		IsDark:       false,
	}
)

// Categories that force the dark-mode contrast adjustment, matched by
// substring against the detected category.
var darkCategoryKeywords = []string{
	"electronic", "audio", "gaming", "wearable", "tech", "gadget",
	"phone", "computer", "headphone",
}

// IsDarkCategory reports whether the category hint names a dark-themed
// product vertical.
func IsDarkCategory(hint string) bool {
	hint = strings.ToLower(hint)
	for _, kw := range darkCategoryKeywords {
		if strings.Contains(hint, kw) {
			return true
		}
	}
	return false
}

// Resolve derives the palette. A model suggestion wins over the category
// fallback; either way the result is contrast-checked for the theme the
// category hint selects.
func Resolve(suggestion *Suggestion, categoryHint string) Result {
	dark := IsDarkCategory(categoryHint)
	if suggestion == nil {
		if dark {
			return darkFallback
		}
		return lightFallback
	}
	return adjust(suggestion, dark)
}

func adjust(s *Suggestion, dark bool) Result {
	fallback := lightFallback
	if dark {
		fallback = darkFallback
	}

	primary := hexOr(s.Primary, fallback.Primary)
	accent := hexOr(s.Accent, fallback.Accent)
	background := hexOr(s.Background, fallback.Background)
	text := hexOr(s.Text, fallback.Text)

	if dark {
		// Dark theme wants a near-black canvas and bright text.
		if luminance(background) > 0.25 {
			background = scale(background, 0.18)
		}
		if luminance(text) < 0.6 {
			text = fallback.Text
		}
		if luminance(primary) < 0.15 {
			primary = mix(primary, "#ffffff", 0.35)
		}
	} else {
		if luminance(background) < 0.7 {
			background = mix(background, "#ffffff", 0.85)
		}
		if luminance(text) > 0.45 {
			text = fallback.Text
		}
	}

	return Result{
		Primary:      primary,
		Accent:       accent,
		Background:   background,
		Text:         text,
		GradientFrom: primary,
		GradientTo:   scale(primary, 0.7),
		IsDark:       dark,
	}
}

// ValidHex reports whether v is a #rrggbb color.
func ValidHex(v string) bool {
	_, _, _, err := parseHex(v)
	return err == nil
}

func hexOr(v, fallback string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if ValidHex(v) {
		return v
	}
	return fallback
}

func parseHex(v string) (r, g, b uint8, err error) {
	v = strings.TrimSpace(v)
	if len(v) != 7 || v[0] != '#' {
		return 0, 0, 0, fmt.Errorf("palette: invalid hex %q", v)
	}
	n, err := strconv.ParseUint(v[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("palette: invalid hex %q", v)
	}
	return uint8(n >> 16), uint8(n >> 8), uint8(n), nil
}

func formatHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// luminance approximates relative luminance in [0,1].
func luminance(v string) float64 {
	r, g, b, err := parseHex(v)
	if err != nil {
		return 0
	}
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255
}

// scale multiplies each channel, darkening for factors below 1.
func scale(v string, factor float64) string {
	r, g, b, err := parseHex(v)
	if err != nil {
		return v
	}
	return formatHex(clamp(float64(r)*factor), clamp(float64(g)*factor), clamp(float64(b)*factor))
}

// mix blends v toward other by t in [0,1].
func mix(v, other string, t float64) string {
	r1, g1, b1, err := parseHex(v)
	if err != nil {
		return other
	}
	r2, g2, b2, err := parseHex(other)
	if err != nil {
		return v
	}
	lerp := func(a, b uint8) uint8 {
		return clamp(float64(a) + (float64(b)-float64(a))*t)
	}
	return formatHex(lerp(r1, r2), lerp(g1, g2), lerp(b1, b2))
}

func clamp(f float64) uint8 {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f)
}
