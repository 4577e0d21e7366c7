package copywrite

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"promogen/internal/domain"
	"promogen/internal/providers/vision"
)

// Static produces the deterministic fallback copy used when text generation
// is unavailable. It never fails, so copy generation never blocks a flow.
type Static struct{}

func NewStatic() *Static {
	return &Static{}
}

func (s *Static) Write(_ context.Context, facts Facts, analysis *vision.Analysis) (*domain.PosterCopy, error) {
	return Fallback(facts, analysis), nil
}

// Fallback builds a complete PosterCopy from known product facts alone.
func Fallback(facts Facts, analysis *vision.Analysis) *domain.PosterCopy {
	titler := cases.Title(language.Und)
	name := facts.Name
	if name == "" {
		name = "Our Product"
	}
	name = titler.String(name)

	var out *domain.PosterCopy
	if facts.Locale == "id" {
		out = &domain.PosterCopy{
			HookHeadline: fmt.Sprintf("%s Pilihan Terbaik", name),
			Subheadline:  fmt.Sprintf("Dapatkan %s dengan harga %s", name, facts.Price),
			Problem:      "Sulit menemukan produk berkualitas dengan harga bersahabat?",
			Solution:     fmt.Sprintf("%s hadir untuk Anda", name),
			CTAText:      "Pesan Sekarang",
		}
	} else {
		out = &domain.PosterCopy{
			HookHeadline: fmt.Sprintf("Meet %s", name),
			Subheadline:  fmt.Sprintf("Get %s for just %s", name, facts.Price),
			Problem:      "Tired of settling for less?",
			Solution:     fmt.Sprintf("%s delivers exactly what you need", name),
			CTAText:      "Order Now",
		}
	}
	if analysis != nil && len(analysis.SuggestedFeatures) > 0 {
		out.Features = analysis.SuggestedFeatures
	}
	domain.NormalizeCopy(out)
	return out
}

var _ Copywriter = (*Static)(nil)
