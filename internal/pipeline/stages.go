package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"promogen/internal/domain"
	"promogen/internal/providers/vision"
)

// stageOutputs collects what the two adapter phases produced. Optional
// stages leave their slot at the degraded default instead of failing the
// run.
type stageOutputs struct {
	Analysis *vision.Analysis
	// EnhancedURL is the background-removed image, falling back to the
	// original product image when removal failed or was skipped.
	EnhancedURL string
	// EnhancedProduced marks whether EnhancedURL actually came from the
	// remover; only produced images are persisted.
	EnhancedProduced bool
	// Copy is nil when the copywriter failed; callers decide whether the
	// canonical fallback substitutes.
	Copy     *domain.PosterCopy
	SceneURL string
}

// runStages executes Phase A (vision + background removal) and Phase B
// (copywriting + scene synthesis). Phases settle fully before the next
// starts; within a phase no task aborts its sibling. Each adapter call runs
// under its own bounded deadline derived from ctx.
func (p *Pipeline) runStages(ctx context.Context, product *domain.ProductSnapshot, locale, brief string) *stageOutputs {
	out := &stageOutputs{EnhancedURL: product.ImageURL}

	// Phase A
	var (
		analysisErr error
		cutoutURL   string
		cutoutErr   error
	)
	if product.ImageURL != "" {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			cctx, cancel := p.stageContext(gctx)
			defer cancel()
			out.Analysis, analysisErr = p.adapters.Vision.Analyze(cctx, product.ImageURL, product.Name)
			return nil
		})
		g.Go(func() error {
			cctx, cancel := p.stageContext(gctx)
			defer cancel()
			cutoutURL, cutoutErr = p.adapters.Cutout.Remove(cctx, product.ImageURL)
			return nil
		})
		_ = g.Wait()
	}
	if analysisErr != nil {
		out.Analysis = nil
		p.logger.Warn().Err(analysisErr).Str("product_ref", product.Ref).Msg("pipeline: vision stage degraded")
	}
	if cutoutErr != nil {
		p.logger.Warn().Err(cutoutErr).Str("product_ref", product.Ref).Msg("pipeline: background removal degraded")
	} else if cutoutURL != "" {
		out.EnhancedURL = cutoutURL
		out.EnhancedProduced = true
	}

	// Phase B
	var (
		copyErr  error
		sceneErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cctx, cancel := p.stageContext(gctx)
		defer cancel()
		out.Copy, copyErr = p.adapters.Copy.Write(cctx, buildFacts(product, locale, brief), out.Analysis)
		return nil
	})
	if out.EnhancedURL != "" {
		g.Go(func() error {
			cctx, cancel := p.stageContext(gctx)
			defer cancel()
			out.SceneURL, sceneErr = p.adapters.Scene.Synthesize(cctx, out.EnhancedURL, scenePrompt(out.Analysis, product, brief), p.opts.SceneFidelity)
			return nil
		})
	}
	_ = g.Wait()
	if copyErr != nil {
		out.Copy = nil
		p.logger.Warn().Err(copyErr).Str("product_ref", product.Ref).Msg("pipeline: copywriting degraded")
	}
	if sceneErr != nil {
		out.SceneURL = ""
		p.logger.Warn().Err(sceneErr).Str("product_ref", product.Ref).Msg("pipeline: scene synthesis degraded")
	}

	return out
}

// scenePrompt prefers the vision model's lifestyle prompt over a heuristic
// built from catalog facts.
func scenePrompt(analysis *vision.Analysis, product *domain.ProductSnapshot, brief string) string {
	if analysis != nil && analysis.ScenePrompt != "" {
		return analysis.ScenePrompt
	}
	prompt := fmt.Sprintf("%s placed in a bright, realistic lifestyle setting with natural light", product.Name)
	if brief != "" {
		prompt = fmt.Sprintf("%s. %s", prompt, brief)
	}
	return prompt
}
