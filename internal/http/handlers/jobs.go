package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"promogen/internal/domain"
	"promogen/internal/storage"
)

type jobResponse struct {
	JobID           string                 `json:"job_id"`
	Status          string                 `json:"status"`
	ProductRef      string                 `json:"product_ref"`
	StorefrontRef   string                 `json:"storefront_ref"`
	Content         *domain.LandingContent `json:"content,omitempty"`
	Design          *domain.DesignMeta     `json:"design,omitempty"`
	ImageAssets     domain.ImageAssets     `json:"image_assets"`
	ImageURLs       map[string][]string    `json:"image_urls,omitempty"`
	TemplateVersion string                 `json:"template_version,omitempty"`
	TemplateType    string                 `json:"template_type,omitempty"`
	CreatedAt       string                 `json:"created_at"`
	UpdatedAt       string                 `json:"updated_at"`
}

func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, jobResponse{
		JobID:           job.ID,
		Status:          string(job.Status),
		ProductRef:      job.ProductRef,
		StorefrontRef:   job.StorefrontRef,
		Content:         job.Content,
		Design:          job.Design,
		ImageAssets:     job.ImageAssets,
		ImageURLs:       a.assetURLs(job.ImageAssets),
		TemplateVersion: job.TemplateVersion,
		TemplateType:    job.TemplateType,
		CreatedAt:       job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       job.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

func (a *App) assetURLs(assets domain.ImageAssets) map[string][]string {
	out := make(map[string][]string)
	for _, key := range assets.Enhanced {
		out["enhanced"] = append(out["enhanced"], storage.PublicURL(a.StorageBaseURL, key))
	}
	for _, key := range assets.Scene {
		out["scene"] = append(out["scene"], storage.PublicURL(a.StorageBaseURL, key))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
