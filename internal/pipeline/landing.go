package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"promogen/internal/domain"
	"promogen/internal/palette"
	"promogen/internal/providers/copywrite"
)

// LandingRequest triggers the strict landing-page flow. The result is
// written to the job record; the caller only learns success or failure.
type LandingRequest struct {
	SellerRef     string
	ProductRef    string
	StorefrontRef string
	JobID         string
	Prompt        string
	Locale        string
}

// GenerateLandingPage runs the strict flow. The job always leaves in READY
// or ARCHIVED: a deferred guard performs the compensating archive transition
// exactly once on any failure path, and its own failure is logged, never
// re-thrown.
func (p *Pipeline) GenerateLandingPage(ctx context.Context, req LandingRequest) (*domain.GenerationJob, error) {
	if strings.TrimSpace(req.SellerRef) == "" ||
		strings.TrimSpace(req.ProductRef) == "" ||
		strings.TrimSpace(req.StorefrontRef) == "" {
		return nil, fmt.Errorf("%w: seller_ref, product_ref and storefront_ref are required", domain.ErrValidation)
	}
	jobID := strings.TrimSpace(req.JobID)
	if jobID == "" {
		jobID = uuid.NewString()
	}

	job, err := p.jobs.CreateOrGet(ctx, &domain.GenerationJob{
		ID:              jobID,
		ProductRef:      req.ProductRef,
		StorefrontRef:   req.StorefrontRef,
		SellerRef:       req.SellerRef,
		Status:          domain.JobStatusGenerating,
		TemplateVersion: p.opts.TemplateVersion,
		TemplateType:    templateTypeLanding,
	})
	if err != nil {
		return nil, err
	}

	finalized := false
	defer func() {
		if !finalized {
			p.archiveJob(ctx, job.ID)
		}
	}()

	jc, err := p.loadContext(ctx, req.ProductRef, req.StorefrontRef)
	if err != nil {
		return nil, err
	}

	outs := p.runStages(ctx, jc.Product, req.Locale, req.Prompt)

	posterCopy := outs.Copy
	if posterCopy == nil && p.opts.AllowFallbackCopy {
		posterCopy = copywrite.Fallback(buildFacts(jc.Product, req.Locale, req.Prompt), outs.Analysis)
	}
	if posterCopy == nil {
		return nil, fmt.Errorf("%w: copy generation failed", domain.ErrUpstream)
	}

	hint := categoryHint(outs.Analysis, jc.Product)
	var suggestion *palette.Suggestion
	if outs.Analysis != nil {
		suggestion = outs.Analysis.SuggestedPalette
	}
	// Storefront brand colors rank below the vision suggestion but above
	// the category fallback.
	if suggestion == nil && jc.Brand != nil && palette.ValidHex(jc.Brand.PrimaryColor) {
		suggestion = &palette.Suggestion{
			Primary: jc.Brand.PrimaryColor,
			Accent:  jc.Brand.AccentColor,
		}
	}
	pal := palette.Resolve(suggestion, hint)
	design := designFromPalette(pal)

	var inputs []uploadInput
	if outs.EnhancedProduced {
		inputs = append(inputs, uploadInput{SourceURL: outs.EnhancedURL, Label: labelEnhanced})
	}
	if outs.SceneURL != "" {
		inputs = append(inputs, uploadInput{SourceURL: outs.SceneURL, Label: labelScene})
	}
	assets := collectAssets(p.uploadAssets(ctx, req.SellerRef, inputs))

	content := domain.LandingContentFromCopy(posterCopy, "")
	if err := p.jobs.PatchContent(ctx, job.ID, content, design, assets, p.opts.TemplateVersion, templateTypeLanding); err != nil {
		return nil, err
	}
	finalized = true

	job.Status = domain.JobStatusReady
	job.Content = content
	job.Design = design
	job.ImageAssets = assets
	p.logger.Info().Str("job_id", job.ID).Str("product_ref", req.ProductRef).Msg("pipeline: landing page ready")
	return job, nil
}

// archiveJob is the best-effort compensating action ensuring a job never
// remains stuck in GENERATING. It runs detached from the (possibly already
// cancelled) request context.
func (p *Pipeline) archiveJob(ctx context.Context, jobID string) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.jobs.PatchStatus(actx, jobID, domain.JobStatusArchived); err != nil {
		p.logger.Error().Err(err).Str("job_id", jobID).Msg("pipeline: archive transition failed")
	}
}

func designFromPalette(pal palette.Result) *domain.DesignMeta {
	return &domain.DesignMeta{
		Palette: map[string]string{
			"primary":    pal.Primary,
			"accent":     pal.Accent,
			"background": pal.Background,
			"text":       pal.Text,
		},
		GradientFrom: pal.GradientFrom,
		GradientTo:   pal.GradientTo,
		IsDarkTheme:  pal.IsDark,
	}
}

func collectAssets(outs []uploadOutput) domain.ImageAssets {
	var assets domain.ImageAssets
	for _, out := range outs {
		if out.Key == "" {
			continue
		}
		switch out.Label {
		case labelEnhanced:
			assets.Enhanced = append(assets.Enhanced, out.Key)
		case labelScene:
			assets.Scene = append(assets.Scene, out.Key)
		}
	}
	return assets
}
