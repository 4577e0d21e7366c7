package pipeline

import (
	"context"
	"fmt"
	"strings"

	"promogen/internal/domain"
	"promogen/internal/palette"
	"promogen/internal/providers/copywrite"
)

// PosterRequest triggers the lenient marketing-image flow.
type PosterRequest struct {
	SellerRef  string
	ProductRef string
	Locale     string
	Prompt     string
}

// PosterResult is returned synchronously; every optional stage that failed
// is substituted with its fallback.
type PosterResult struct {
	Success          bool               `json:"success"`
	ProductName      string             `json:"product_name"`
	Price            string             `json:"price"`
	SalePrice        string             `json:"sale_price,omitempty"`
	OriginalImageURL string             `json:"original_image_url"`
	EnhancedImageURL string             `json:"enhanced_image_url"`
	EnhancedImageKey string             `json:"enhanced_image_key,omitempty"`
	SceneImageURL    string             `json:"scene_image_url,omitempty"`
	SceneImageKey    string             `json:"scene_image_key,omitempty"`
	Palette          palette.Result     `json:"palette"`
	Copy             domain.PosterCopy  `json:"copy"`
	IsDarkTheme      bool               `json:"is_dark_theme"`
	ProductCategory  string             `json:"product_category"`
}

// GeneratePoster runs the lenient flow. It keeps no job state; a missing
// product or invalid request is the only hard error.
func (p *Pipeline) GeneratePoster(ctx context.Context, req PosterRequest) (*PosterResult, error) {
	if strings.TrimSpace(req.SellerRef) == "" || strings.TrimSpace(req.ProductRef) == "" {
		return nil, fmt.Errorf("%w: seller_ref and product_ref are required", domain.ErrValidation)
	}

	product, err := p.catalog.GetProduct(ctx, req.ProductRef)
	if err != nil {
		return nil, err
	}

	outs := p.runStages(ctx, product, req.Locale, req.Prompt)

	posterCopy := outs.Copy
	if posterCopy == nil {
		posterCopy = copywrite.Fallback(buildFacts(product, req.Locale, req.Prompt), outs.Analysis)
	}

	hint := categoryHint(outs.Analysis, product)
	var suggestion *palette.Suggestion
	if outs.Analysis != nil {
		suggestion = outs.Analysis.SuggestedPalette
	}
	pal := palette.Resolve(suggestion, hint)

	var inputs []uploadInput
	if outs.EnhancedProduced {
		inputs = append(inputs, uploadInput{SourceURL: outs.EnhancedURL, Label: labelEnhanced})
	}
	if outs.SceneURL != "" {
		inputs = append(inputs, uploadInput{SourceURL: outs.SceneURL, Label: labelScene})
	}
	uploads := p.uploadAssets(ctx, req.SellerRef, inputs)

	result := &PosterResult{
		Success:          true,
		ProductName:      product.Name,
		Price:            domain.FormatPrice(product.Price, req.Locale),
		OriginalImageURL: product.ImageURL,
		EnhancedImageURL: outs.EnhancedURL,
		SceneImageURL:    outs.SceneURL,
		Palette:          pal,
		Copy:             *posterCopy,
		IsDarkTheme:      pal.IsDark,
		ProductCategory:  hint,
	}
	if product.SalePrice != nil {
		result.SalePrice = domain.FormatPrice(*product.SalePrice, req.Locale)
	}
	for _, up := range uploads {
		if up.Key == "" {
			continue
		}
		switch up.Label {
		case labelEnhanced:
			result.EnhancedImageKey = up.Key
		case labelScene:
			result.SceneImageKey = up.Key
		}
	}
	return result, nil
}
