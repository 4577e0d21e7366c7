package handlers

import (
	"encoding/json"
	"net/http"

	"promogen/internal/middleware"
	"promogen/internal/pipeline"
)

type pageGenerateRequest struct {
	SellerRef     string `json:"seller_ref"`
	ProductRef    string `json:"product_ref"`
	StorefrontRef string `json:"storefront_ref"`
	JobID         string `json:"job_id"`
	Prompt        string `json:"prompt"`
}

type pageGenerateResponse struct {
	JobID           string `json:"job_id"`
	Status          string `json:"status"`
	TemplateVersion string `json:"template_version"`
}

// PagesGenerate runs the strict landing-page flow synchronously. The job
// record carries the full result; the response only identifies it.
func (a *App) PagesGenerate(w http.ResponseWriter, r *http.Request) {
	var req pageGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())

	job, err := a.Pipeline.GenerateLandingPage(r.Context(), pipeline.LandingRequest{
		SellerRef:     req.SellerRef,
		ProductRef:    req.ProductRef,
		StorefrontRef: req.StorefrontRef,
		JobID:         req.JobID,
		Prompt:        req.Prompt,
		Locale:        locale,
	})
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, pageGenerateResponse{
		JobID:           job.ID,
		Status:          string(job.Status),
		TemplateVersion: job.TemplateVersion,
	})
}

type posterGenerateRequest struct {
	SellerRef  string `json:"seller_ref"`
	ProductRef string `json:"product_ref"`
	Prompt     string `json:"prompt"`
}

// PostersGenerate runs the lenient poster flow and returns the assembled
// material directly. Provider failures degrade to fallbacks instead of
// failing the request.
func (a *App) PostersGenerate(w http.ResponseWriter, r *http.Request) {
	var req posterGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())

	result, err := a.Pipeline.GeneratePoster(r.Context(), pipeline.PosterRequest{
		SellerRef:  req.SellerRef,
		ProductRef: req.ProductRef,
		Prompt:     req.Prompt,
		Locale:     locale,
	})
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, result)
}
