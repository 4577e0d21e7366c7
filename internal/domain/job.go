package domain

import "time"

// JobStatus enumerates the generation job lifecycle states.
type JobStatus string

const (
	JobStatusDraft      JobStatus = "DRAFT"
	JobStatusGenerating JobStatus = "GENERATING"
	JobStatusReady      JobStatus = "READY"
	JobStatusArchived   JobStatus = "ARCHIVED"
)

// Terminal reports whether the status ends the job lifecycle.
func (s JobStatus) Terminal() bool {
	return s == JobStatusReady || s == JobStatusArchived
}

// CanTransition enforces the forward-only status machine. ARCHIVED is
// reachable from any non-terminal state as the compensating action.
func (s JobStatus) CanTransition(to JobStatus) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case JobStatusArchived:
		return true
	case JobStatusGenerating:
		return s == JobStatusDraft
	case JobStatusReady:
		return s == JobStatusGenerating
	default:
		return false
	}
}

// LandingContent is the structured marketing copy written to a finished job.
// It is populated atomically by the finalizer, never partially.
type LandingContent struct {
	Headline    string   `json:"headline"`
	Subheadline string   `json:"subheadline"`
	Features    []string `json:"features"`
	CTAText     string   `json:"cta_text"`
	SocialProof string   `json:"social_proof,omitempty"`

	// v2 fields
	Problem     string   `json:"problem,omitempty"`
	Solution    string   `json:"solution,omitempty"`
	TrustBadges []string `json:"trust_badges,omitempty"`
}

// DesignMeta records the resolved palette and layout tags for a job.
type DesignMeta struct {
	Palette      map[string]string `json:"palette"`
	GradientFrom string            `json:"gradient_from"`
	GradientTo   string            `json:"gradient_to"`
	IsDarkTheme  bool              `json:"is_dark_theme"`
	LayoutHint   string            `json:"layout_hint,omitempty"`
}

// ImageAssets lists durable storage keys per semantic slot. Entries only
// appear after the corresponding upload succeeded.
type ImageAssets struct {
	Enhanced []string `json:"enhanced,omitempty"`
	Scene    []string `json:"scene,omitempty"`
}

// GenerationJob tracks one pipeline execution for a single product.
type GenerationJob struct {
	ID            string
	ProductRef    string
	StorefrontRef string
	SellerRef     string
	Status        JobStatus

	Content     *LandingContent
	Design      *DesignMeta
	ImageAssets ImageAssets

	TemplateVersion string
	TemplateType    string

	CreatedAt time.Time
	UpdatedAt time.Time
}
