package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"promogen/internal/domain"
)

// jobContext is the immutable snapshot a single run operates on.
type jobContext struct {
	Product *domain.ProductSnapshot
	Brand   *domain.BrandContext
}

// loadContext fetches the product snapshot and storefront branding
// concurrently. A missing reference is a hard precondition failure that
// aborts the run before any external AI cost is incurred.
func (p *Pipeline) loadContext(ctx context.Context, productRef, storefrontRef string) (*jobContext, error) {
	jc := &jobContext{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		product, err := p.catalog.GetProduct(gctx, productRef)
		if err != nil {
			return err
		}
		jc.Product = product
		return nil
	})
	if storefrontRef != "" {
		g.Go(func() error {
			brand, err := p.catalog.GetStorefront(gctx, storefrontRef)
			if err != nil {
				return err
			}
			jc.Brand = brand
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return jc, nil
}
