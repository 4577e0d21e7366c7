// Package pipeline orchestrates the generation flows: it loads an immutable
// product context, fans out to the external AI adapters in two dependency
// ordered phases, persists produced assets, and finalizes the job record.
package pipeline

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"promogen/internal/domain"
	"promogen/internal/providers/copywrite"
	"promogen/internal/providers/cutout"
	"promogen/internal/providers/scene"
	"promogen/internal/providers/vision"
	"promogen/internal/storage"
)

const (
	defaultStageTimeout  = 45 * time.Second
	defaultMaxAssetBytes = 20 << 20

	templateTypeLanding = "landing_page"
)

// Adapters bundles the four external capabilities. All are injected at
// process start so tests can substitute fakes.
type Adapters struct {
	Vision vision.Analyzer
	Cutout cutout.Remover
	Copy   copywrite.Copywriter
	Scene  scene.Synthesizer
}

// Options tunes pipeline policy.
type Options struct {
	// StageTimeout bounds each individual adapter call.
	StageTimeout time.Duration
	// AllowFallbackCopy lets the strict landing flow accept the canonical
	// fallback copy instead of archiving when the copywriter fails.
	AllowFallbackCopy bool
	TemplateVersion   string
	SceneFidelity     float64
	// ImageSourceAllowlist restricts which hosts the uploader will fetch
	// source images from. Empty means any host.
	ImageSourceAllowlist []string
	MaxAssetBytes        int64
}

// Pipeline runs generation flows against injected collaborators.
type Pipeline struct {
	catalog    domain.Catalog
	jobs       domain.JobStore
	store      storage.ObjectStore
	adapters   Adapters
	httpClient *http.Client
	logger     zerolog.Logger
	opts       Options
}

// New wires a pipeline. The HTTP client is used only for fetching produced
// image binaries before upload.
func New(catalog domain.Catalog, jobs domain.JobStore, store storage.ObjectStore, adapters Adapters, httpClient *http.Client, logger zerolog.Logger, opts Options) *Pipeline {
	if opts.StageTimeout <= 0 {
		opts.StageTimeout = defaultStageTimeout
	}
	if opts.MaxAssetBytes <= 0 {
		opts.MaxAssetBytes = defaultMaxAssetBytes
	}
	if opts.TemplateVersion == "" {
		opts.TemplateVersion = "v2"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.StageTimeout}
	}
	return &Pipeline{
		catalog:    catalog,
		jobs:       jobs,
		store:      store,
		adapters:   adapters,
		httpClient: httpClient,
		logger:     logger,
		opts:       opts,
	}
}

// stageContext derives the bounded per-call deadline from the request
// context so abandoning the request cancels in-flight sibling stages.
func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.opts.StageTimeout)
}

func buildFacts(product *domain.ProductSnapshot, locale, brief string) copywrite.Facts {
	facts := copywrite.Facts{
		Name:        product.Name,
		Price:       domain.FormatPrice(product.Price, locale),
		Description: product.Description,
		Sizes:       product.Sizes,
		Colors:      product.Colors,
		Category:    product.Category,
		Locale:      locale,
		Brief:       brief,
	}
	if product.SalePrice != nil {
		facts.SalePrice = domain.FormatPrice(*product.SalePrice, locale)
	}
	return facts
}

// categoryHint prefers what the vision model detected over the catalog's
// own classification.
func categoryHint(analysis *vision.Analysis, product *domain.ProductSnapshot) string {
	if analysis != nil && analysis.Category != "" {
		return analysis.Category
	}
	return product.Category
}
