package copywrite

import (
	"context"

	"promogen/internal/domain"
	"promogen/internal/providers/vision"
)

// Facts is the copywriter's view of the product, already formatted for prose.
type Facts struct {
	Name        string
	Price       string
	SalePrice   string
	Description string
	Sizes       []string
	Colors      []string
	Category    string
	Locale      string
	// Brief is the caller's optional free-text direction.
	Brief string
}

// Copywriter produces poster copy from product facts, optionally enriched by
// vision analysis. Implementations do not retry.
type Copywriter interface {
	Write(ctx context.Context, facts Facts, analysis *vision.Analysis) (*domain.PosterCopy, error)
}
