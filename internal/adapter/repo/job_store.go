package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"promogen/internal/domain"
	"promogen/internal/infra"
	"promogen/internal/sqlinline"
)

// JobStorePG implements domain.JobStore on PostgreSQL through the marker
// checked SQL runner.
type JobStorePG struct {
	sql infra.SQLExecutor
}

func NewJobStore(sql infra.SQLExecutor) *JobStorePG {
	return &JobStorePG{sql: sql}
}

func (r *JobStorePG) CreateOrGet(ctx context.Context, job *domain.GenerationJob) (*domain.GenerationJob, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QCreateOrGetJob,
		job.ID,
		job.ProductRef,
		job.StorefrontRef,
		job.SellerRef,
		job.TemplateVersion,
		job.TemplateType,
	)
	stored, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("%w: create job: %v", domain.ErrPersistence, err)
	}
	return stored, nil
}

func (r *JobStorePG) PatchContent(ctx context.Context, jobID string, content *domain.LandingContent, design *domain.DesignMeta, assets domain.ImageAssets, templateVersion, templateType string) error {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("%w: encode content: %v", domain.ErrPersistence, err)
	}
	designJSON, err := json.Marshal(design)
	if err != nil {
		return fmt.Errorf("%w: encode design: %v", domain.ErrPersistence, err)
	}
	assetsJSON, err := json.Marshal(assets)
	if err != nil {
		return fmt.Errorf("%w: encode assets: %v", domain.ErrPersistence, err)
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QPatchJobContent, jobID, contentJSON, designJSON, assetsJSON, templateVersion, templateType)
	if err != nil {
		return fmt.Errorf("%w: patch content: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %s is not generating", domain.ErrNotFound, jobID)
	}
	return nil
}

// PatchStatus moves an active job to the given status. Terminal rows are left
// untouched and reported as not found.
func (r *JobStorePG) PatchStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QPatchJobStatus, jobID, string(status))
	if err != nil {
		return fmt.Errorf("%w: patch status: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %s is not active", domain.ErrNotFound, jobID)
	}
	return nil
}

func (r *JobStorePG) GetByID(ctx context.Context, jobID string) (*domain.GenerationJob, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QGetJobByID, jobID)
	job, err := scanJob(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get job: %v", domain.ErrPersistence, err)
	}
	return job, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.GenerationJob, error) {
	var job domain.GenerationJob
	var contentJSON, designJSON, assetsJSON []byte
	if err := row.Scan(
		&job.ID,
		&job.ProductRef,
		&job.StorefrontRef,
		&job.SellerRef,
		&job.Status,
		&contentJSON,
		&designJSON,
		&assetsJSON,
		&job.TemplateVersion,
		&job.TemplateType,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(contentJSON) > 0 {
		job.Content = &domain.LandingContent{}
		if err := json.Unmarshal(contentJSON, job.Content); err != nil {
			return nil, fmt.Errorf("decode content: %w", err)
		}
	}
	if len(designJSON) > 0 {
		job.Design = &domain.DesignMeta{}
		if err := json.Unmarshal(designJSON, job.Design); err != nil {
			return nil, fmt.Errorf("decode design: %w", err)
		}
	}
	if len(assetsJSON) > 0 {
		if err := json.Unmarshal(assetsJSON, &job.ImageAssets); err != nil {
			return nil, fmt.Errorf("decode image assets: %w", err)
		}
	}
	return &job, nil
}

var _ domain.JobStore = (*JobStorePG)(nil)
