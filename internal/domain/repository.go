package domain

import "context"

// Catalog is the read-only product/storefront context provider.
type Catalog interface {
	GetProduct(ctx context.Context, ref string) (*ProductSnapshot, error)
	GetStorefront(ctx context.Context, ref string) (*BrandContext, error)
}

// JobStore is the durable generation job record store.
type JobStore interface {
	// CreateOrGet creates the job record when absent and returns the stored
	// row either way, transitioning it to GENERATING.
	CreateOrGet(ctx context.Context, job *GenerationJob) (*GenerationJob, error)
	// PatchContent atomically writes the completed result and moves the job
	// to READY in a single statement.
	PatchContent(ctx context.Context, jobID string, content *LandingContent, design *DesignMeta, assets ImageAssets, templateVersion, templateType string) error
	PatchStatus(ctx context.Context, jobID string, status JobStatus) error
	GetByID(ctx context.Context, jobID string) (*GenerationJob, error)
}
