package repo

import (
	"context"
	"fmt"

	"promogen/internal/domain"
	"promogen/internal/infra"
	"promogen/internal/sqlinline"
)

// CatalogPG implements the read-only product/storefront context provider.
type CatalogPG struct {
	sql infra.SQLExecutor
}

func NewCatalog(sql infra.SQLExecutor) *CatalogPG {
	return &CatalogPG{sql: sql}
}

func (r *CatalogPG) GetProduct(ctx context.Context, ref string) (*domain.ProductSnapshot, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QGetProduct, ref)
	var p domain.ProductSnapshot
	if err := row.Scan(
		&p.Ref,
		&p.Name,
		&p.Price,
		&p.SalePrice,
		&p.Description,
		&p.Sizes,
		&p.Colors,
		&p.ImageURL,
		&p.Category,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("%w: get product: %v", domain.ErrPersistence, err)
	}
	return &p, nil
}

func (r *CatalogPG) GetStorefront(ctx context.Context, ref string) (*domain.BrandContext, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QGetStorefront, ref)
	var b domain.BrandContext
	if err := row.Scan(
		&b.Ref,
		&b.SellerRef,
		&b.Name,
		&b.PrimaryColor,
		&b.AccentColor,
		&b.Category,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("%w: storefront %s", domain.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("%w: get storefront: %v", domain.ErrPersistence, err)
	}
	return &b, nil
}

var _ domain.Catalog = (*CatalogPG)(nil)
