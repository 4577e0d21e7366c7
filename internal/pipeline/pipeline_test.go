package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"promogen/internal/domain"
	"promogen/internal/palette"
	"promogen/internal/providers/copywrite"
	"promogen/internal/providers/vision"
	"promogen/internal/storage"
)

type fakeCatalog struct {
	product    *domain.ProductSnapshot
	brand      *domain.BrandContext
	productErr error
	brandErr   error
}

func (f *fakeCatalog) GetProduct(ctx context.Context, ref string) (*domain.ProductSnapshot, error) {
	if f.productErr != nil {
		return nil, f.productErr
	}
	return f.product, nil
}

func (f *fakeCatalog) GetStorefront(ctx context.Context, ref string) (*domain.BrandContext, error) {
	if f.brandErr != nil {
		return nil, f.brandErr
	}
	return f.brand, nil
}

type fakeJobStore struct {
	mu                sync.Mutex
	jobs              map[string]*domain.GenerationJob
	patchContentCalls int
	patchContentErr   error
	patchStatusErr    error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[string]*domain.GenerationJob)}
}

func (f *fakeJobStore) CreateOrGet(ctx context.Context, job *domain.GenerationJob) (*domain.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.jobs[job.ID]; ok {
		existing.Status = domain.JobStatusGenerating
		cp := *existing
		return &cp, nil
	}
	stored := *job
	stored.Status = domain.JobStatusGenerating
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.jobs[job.ID] = &stored
	cp := stored
	return &cp, nil
}

func (f *fakeJobStore) PatchContent(ctx context.Context, jobID string, content *domain.LandingContent, design *domain.DesignMeta, assets domain.ImageAssets, templateVersion, templateType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patchContentCalls++
	if f.patchContentErr != nil {
		return f.patchContentErr
	}
	job, ok := f.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: job %s", domain.ErrNotFound, jobID)
	}
	job.Content = content
	job.Design = design
	job.ImageAssets = assets
	job.TemplateVersion = templateVersion
	job.TemplateType = templateType
	job.Status = domain.JobStatusReady
	job.UpdatedAt = time.Now()
	return nil
}

func (f *fakeJobStore) PatchStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patchStatusErr != nil {
		return f.patchStatusErr
	}
	job, ok := f.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: job %s", domain.ErrNotFound, jobID)
	}
	if !job.Status.CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrValidation, job.Status, status)
	}
	job.Status = status
	job.UpdatedAt = time.Now()
	return nil
}

func (f *fakeJobStore) GetByID(ctx context.Context, jobID string) (*domain.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, jobID)
	}
	cp := *job
	return &cp, nil
}

func (f *fakeJobStore) status(t *testing.T, jobID string) domain.JobStatus {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		t.Fatalf("job %s not stored", jobID)
	}
	return job.Status
}

type fakeObjectStore struct {
	mu           sync.Mutex
	keys         []string
	err          error
	putDeadlines []bool
}

func (f *fakeObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, hasDeadline := ctx.Deadline()
	f.putDeadlines = append(f.putDeadlines, hasDeadline)
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return key, nil
}

type fakeVision struct {
	analysis *vision.Analysis
	err      error
}

func (f fakeVision) Analyze(ctx context.Context, imageURL, productName string) (*vision.Analysis, error) {
	return f.analysis, f.err
}

type fakeCutout struct {
	url string
	err error
}

func (f fakeCutout) Remove(ctx context.Context, imageURL string) (string, error) {
	return f.url, f.err
}

type fakeCopy struct {
	copy *domain.PosterCopy
	err  error
}

func (f fakeCopy) Write(ctx context.Context, facts copywrite.Facts, analysis *vision.Analysis) (*domain.PosterCopy, error) {
	return f.copy, f.err
}

type fakeScene struct {
	url string
	err error
}

func (f fakeScene) Synthesize(ctx context.Context, imageURL, prompt string, fidelity float64) (string, error) {
	return f.url, f.err
}

func testProduct() *domain.ProductSnapshot {
	sale := int64(15000)
	return &domain.ProductSnapshot{
		Ref:         "prod-1",
		Name:        "Batik Tote Bag",
		Price:       20000,
		SalePrice:   &sale,
		Description: "Handmade tote",
		Category:    "fashion",
		ImageURL:    "http://images.local/prod-1.jpg",
	}
}

func goodCopy() *domain.PosterCopy {
	c := &domain.PosterCopy{
		HookHeadline: "Carry Tradition Everywhere",
		Subheadline:  "Handmade batik, built for daily life",
		Problem:      "Mass-produced bags all look the same",
		Solution:     "A one-of-a-kind piece from local artisans",
		Features:     []string{"Hand-stamped batik", "Reinforced stitching"},
		TrustBadges:  []string{"Secure checkout"},
		CTAText:      "Shop Now",
	}
	domain.NormalizeCopy(c)
	return c
}

func newTestPipeline(catalog domain.Catalog, jobs domain.JobStore, store storage.ObjectStore, adapters Adapters, client *http.Client, opts Options) *Pipeline {
	if opts.StageTimeout == 0 {
		opts.StageTimeout = 2 * time.Second
	}
	return New(catalog, jobs, store, adapters, client, zerolog.Nop(), opts)
}

func imageServer(t *testing.T, status map[string]int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code, ok := status[r.URL.Path]; ok && code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG fake image bytes"))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestGenerateLandingPageSuccess(t *testing.T) {
	ts := imageServer(t, nil)
	catalog := &fakeCatalog{
		product: testProduct(),
		brand:   &domain.BrandContext{Ref: "store-1", SellerRef: "seller-1", Name: "Toko Batik"},
	}
	jobs := newFakeJobStore()
	store := &fakeObjectStore{}
	adapters := Adapters{
		Vision: fakeVision{analysis: &vision.Analysis{
			Category:    "fashion",
			ScenePrompt: "tote bag on a cafe table",
			SuggestedPalette: &palette.Suggestion{
				Primary: "#2563EB", Accent: "#F59E0B", Background: "#F8FAFC", Text: "#1E293B",
			},
		}},
		Cutout: fakeCutout{url: ts.URL + "/enhanced.png"},
		Copy:   fakeCopy{copy: goodCopy()},
		Scene:  fakeScene{url: ts.URL + "/scene.png"},
	}

	p := newTestPipeline(catalog, jobs, store, adapters, ts.Client(), Options{})
	job, err := p.GenerateLandingPage(context.Background(), LandingRequest{
		SellerRef:     "seller-1",
		ProductRef:    "prod-1",
		StorefrontRef: "store-1",
		JobID:         "job-1",
		Locale:        "en",
	})
	if err != nil {
		t.Fatalf("GenerateLandingPage returned error: %v", err)
	}
	if job.Status != domain.JobStatusReady {
		t.Fatalf("status = %s, want READY", job.Status)
	}
	if job.Content == nil || job.Content.Headline != "Carry Tradition Everywhere" {
		t.Fatalf("content not persisted: %#v", job.Content)
	}
	if len(job.Content.Features) != domain.CopyFeatureCount {
		t.Fatalf("features = %d, want %d", len(job.Content.Features), domain.CopyFeatureCount)
	}
	if len(job.ImageAssets.Enhanced) != 1 || len(job.ImageAssets.Scene) != 1 {
		t.Fatalf("assets = %#v, want one enhanced and one scene key", job.ImageAssets)
	}
	if job.Design == nil || job.Design.Palette["primary"] != "#2563eb" {
		t.Fatalf("design = %#v, want suggested primary", job.Design)
	}
	if got := jobs.status(t, "job-1"); got != domain.JobStatusReady {
		t.Fatalf("stored status = %s, want READY", got)
	}
	if len(store.keys) != 2 {
		t.Fatalf("stored objects = %d, want 2", len(store.keys))
	}
}

func TestGenerateLandingPageValidation(t *testing.T) {
	p := newTestPipeline(&fakeCatalog{}, newFakeJobStore(), &fakeObjectStore{}, Adapters{}, nil, Options{})
	_, err := p.GenerateLandingPage(context.Background(), LandingRequest{SellerRef: "s"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestGenerateLandingPageArchivesOnCopyFailure(t *testing.T) {
	catalog := &fakeCatalog{product: testProduct(), brand: &domain.BrandContext{Ref: "store-1"}}
	jobs := newFakeJobStore()
	adapters := Adapters{
		Vision: fakeVision{err: errors.New("vision down")},
		Cutout: fakeCutout{err: errors.New("cutout down")},
		Copy:   fakeCopy{err: errors.New("copy down")},
		Scene:  fakeScene{err: errors.New("scene down")},
	}

	p := newTestPipeline(catalog, jobs, &fakeObjectStore{}, adapters, nil, Options{})
	_, err := p.GenerateLandingPage(context.Background(), LandingRequest{
		SellerRef:     "seller-1",
		ProductRef:    "prod-1",
		StorefrontRef: "store-1",
		JobID:         "job-2",
	})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if got := jobs.status(t, "job-2"); got != domain.JobStatusArchived {
		t.Fatalf("stored status = %s, want ARCHIVED", got)
	}
	if jobs.patchContentCalls != 0 {
		t.Fatalf("PatchContent called %d times on failed run", jobs.patchContentCalls)
	}
}

func TestGenerateLandingPageFallbackCopyAllowed(t *testing.T) {
	catalog := &fakeCatalog{product: testProduct(), brand: &domain.BrandContext{Ref: "store-1"}}
	jobs := newFakeJobStore()
	adapters := Adapters{
		Vision: fakeVision{err: errors.New("vision down")},
		Cutout: fakeCutout{err: errors.New("cutout down")},
		Copy:   fakeCopy{err: errors.New("copy down")},
		Scene:  fakeScene{err: errors.New("scene down")},
	}

	p := newTestPipeline(catalog, jobs, &fakeObjectStore{}, adapters, nil, Options{AllowFallbackCopy: true})
	job, err := p.GenerateLandingPage(context.Background(), LandingRequest{
		SellerRef:     "seller-1",
		ProductRef:    "prod-1",
		StorefrontRef: "store-1",
		JobID:         "job-3",
		Locale:        "id",
	})
	if err != nil {
		t.Fatalf("GenerateLandingPage returned error: %v", err)
	}
	if job.Status != domain.JobStatusReady {
		t.Fatalf("status = %s, want READY", job.Status)
	}
	if job.Content == nil || job.Content.Headline == "" {
		t.Fatalf("fallback content missing: %#v", job.Content)
	}
	if len(job.Content.Features) != domain.CopyFeatureCount {
		t.Fatalf("features = %d, want %d", len(job.Content.Features), domain.CopyFeatureCount)
	}
}

func TestGenerateLandingPageArchivesOnPersistFailure(t *testing.T) {
	ts := imageServer(t, nil)
	catalog := &fakeCatalog{product: testProduct(), brand: &domain.BrandContext{Ref: "store-1"}}
	jobs := newFakeJobStore()
	jobs.patchContentErr = fmt.Errorf("%w: disk full", domain.ErrPersistence)
	adapters := Adapters{
		Vision: fakeVision{},
		Cutout: fakeCutout{url: ts.URL + "/enhanced.png"},
		Copy:   fakeCopy{copy: goodCopy()},
		Scene:  fakeScene{url: ts.URL + "/scene.png"},
	}

	p := newTestPipeline(catalog, jobs, &fakeObjectStore{}, adapters, ts.Client(), Options{})
	_, err := p.GenerateLandingPage(context.Background(), LandingRequest{
		SellerRef:     "seller-1",
		ProductRef:    "prod-1",
		StorefrontRef: "store-1",
		JobID:         "job-4",
	})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
	if got := jobs.status(t, "job-4"); got != domain.JobStatusArchived {
		t.Fatalf("stored status = %s, want ARCHIVED", got)
	}
}

func TestGenerateLandingPagePartialUploadFailure(t *testing.T) {
	ts := imageServer(t, map[string]int{"/scene.png": http.StatusNotFound})
	catalog := &fakeCatalog{product: testProduct(), brand: &domain.BrandContext{Ref: "store-1"}}
	jobs := newFakeJobStore()
	adapters := Adapters{
		Vision: fakeVision{},
		Cutout: fakeCutout{url: ts.URL + "/enhanced.png"},
		Copy:   fakeCopy{copy: goodCopy()},
		Scene:  fakeScene{url: ts.URL + "/scene.png"},
	}

	p := newTestPipeline(catalog, jobs, &fakeObjectStore{}, adapters, ts.Client(), Options{})
	job, err := p.GenerateLandingPage(context.Background(), LandingRequest{
		SellerRef:     "seller-1",
		ProductRef:    "prod-1",
		StorefrontRef: "store-1",
		JobID:         "job-5",
	})
	if err != nil {
		t.Fatalf("GenerateLandingPage returned error: %v", err)
	}
	if job.Status != domain.JobStatusReady {
		t.Fatalf("status = %s, want READY", job.Status)
	}
	if len(job.ImageAssets.Enhanced) != 1 {
		t.Fatalf("enhanced assets = %d, want 1", len(job.ImageAssets.Enhanced))
	}
	if len(job.ImageAssets.Scene) != 0 {
		t.Fatalf("scene assets = %d, want 0 after failed upload", len(job.ImageAssets.Scene))
	}
}

func TestGeneratePosterAllProvidersFail(t *testing.T) {
	catalog := &fakeCatalog{product: testProduct()}
	adapters := Adapters{
		Vision: fakeVision{err: errors.New("vision down")},
		Cutout: fakeCutout{err: errors.New("cutout down")},
		Copy:   fakeCopy{err: errors.New("copy down")},
		Scene:  fakeScene{err: errors.New("scene down")},
	}

	p := newTestPipeline(catalog, newFakeJobStore(), &fakeObjectStore{}, adapters, nil, Options{})
	result, err := p.GeneratePoster(context.Background(), PosterRequest{
		SellerRef:  "seller-1",
		ProductRef: "prod-1",
		Locale:     "id",
	})
	if err != nil {
		t.Fatalf("GeneratePoster returned error: %v", err)
	}
	if !result.Success {
		t.Fatal("expected Success=true on fully degraded run")
	}
	if result.EnhancedImageURL != testProduct().ImageURL {
		t.Fatalf("EnhancedImageURL = %q, want original image", result.EnhancedImageURL)
	}
	if result.EnhancedImageKey != "" || result.SceneImageKey != "" {
		t.Fatalf("unexpected stored keys: %q %q", result.EnhancedImageKey, result.SceneImageKey)
	}
	if result.Copy.HookHeadline == "" {
		t.Fatal("fallback copy missing headline")
	}
	if len(result.Copy.Features) != domain.CopyFeatureCount || len(result.Copy.TrustBadges) != domain.CopyTrustBadgeCount {
		t.Fatalf("copy arity = %d/%d, want %d/%d",
			len(result.Copy.Features), len(result.Copy.TrustBadges),
			domain.CopyFeatureCount, domain.CopyTrustBadgeCount)
	}
	if result.Price != "Rp 20.000" {
		t.Fatalf("Price = %q, want %q", result.Price, "Rp 20.000")
	}
	if result.SalePrice != "Rp 15.000" {
		t.Fatalf("SalePrice = %q, want %q", result.SalePrice, "Rp 15.000")
	}
}

func TestGeneratePosterProductNotFound(t *testing.T) {
	catalog := &fakeCatalog{productErr: fmt.Errorf("%w: product missing", domain.ErrNotFound)}
	p := newTestPipeline(catalog, newFakeJobStore(), &fakeObjectStore{}, Adapters{}, nil, Options{})
	_, err := p.GeneratePoster(context.Background(), PosterRequest{SellerRef: "s", ProductRef: "missing"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGeneratePosterCopywriterFailsVisionSucceeds(t *testing.T) {
	ts := imageServer(t, nil)
	catalog := &fakeCatalog{product: testProduct()}
	adapters := Adapters{
		Vision: fakeVision{analysis: &vision.Analysis{
			Category:          "electronics",
			SuggestedFeatures: []string{"Noise isolation", "Long battery life"},
		}},
		Cutout: fakeCutout{url: ts.URL + "/enhanced.png"},
		Copy:   fakeCopy{err: errors.New("copy down")},
		Scene:  fakeScene{err: errors.New("scene down")},
	}

	p := newTestPipeline(catalog, newFakeJobStore(), &fakeObjectStore{}, adapters, ts.Client(), Options{})
	result, err := p.GeneratePoster(context.Background(), PosterRequest{
		SellerRef:  "seller-1",
		ProductRef: "prod-1",
		Locale:     "en",
	})
	if err != nil {
		t.Fatalf("GeneratePoster returned error: %v", err)
	}
	if result.Copy.Features[0] != "Noise isolation" {
		t.Fatalf("fallback copy ignored vision features: %#v", result.Copy.Features)
	}
	if !result.IsDarkTheme {
		t.Fatal("expected dark theme for electronics category")
	}
	if result.EnhancedImageKey == "" {
		t.Fatal("expected enhanced image to be persisted")
	}
	if result.SceneImageKey != "" {
		t.Fatalf("SceneImageKey = %q, want empty", result.SceneImageKey)
	}
}

func TestUploaderRejectsUnallowlistedHost(t *testing.T) {
	ts := imageServer(t, nil)
	catalog := &fakeCatalog{product: testProduct()}
	store := &fakeObjectStore{}
	adapters := Adapters{
		Vision: fakeVision{},
		Cutout: fakeCutout{url: ts.URL + "/enhanced.png"},
		Copy:   fakeCopy{copy: goodCopy()},
		Scene:  fakeScene{},
	}

	p := newTestPipeline(catalog, newFakeJobStore(), store, adapters, ts.Client(), Options{
		ImageSourceAllowlist: []string{"cdn.example.com"},
	})
	result, err := p.GeneratePoster(context.Background(), PosterRequest{
		SellerRef:  "seller-1",
		ProductRef: "prod-1",
	})
	if err != nil {
		t.Fatalf("GeneratePoster returned error: %v", err)
	}
	if result.EnhancedImageKey != "" {
		t.Fatalf("EnhancedImageKey = %q, want empty for blocked host", result.EnhancedImageKey)
	}
	if len(store.keys) != 0 {
		t.Fatalf("stored objects = %d, want 0", len(store.keys))
	}
}

func TestUploaderBoundsStorageWrites(t *testing.T) {
	ts := imageServer(t, nil)
	catalog := &fakeCatalog{product: testProduct()}
	store := &fakeObjectStore{}
	adapters := Adapters{
		Vision: fakeVision{},
		Cutout: fakeCutout{url: ts.URL + "/enhanced.png"},
		Copy:   fakeCopy{copy: goodCopy()},
		Scene:  fakeScene{url: ts.URL + "/scene.png"},
	}

	p := newTestPipeline(catalog, newFakeJobStore(), store, adapters, ts.Client(), Options{})
	if _, err := p.GeneratePoster(context.Background(), PosterRequest{
		SellerRef:  "seller-1",
		ProductRef: "prod-1",
	}); err != nil {
		t.Fatalf("GeneratePoster returned error: %v", err)
	}
	if len(store.putDeadlines) == 0 {
		t.Fatal("expected at least one storage write")
	}
	for i, bounded := range store.putDeadlines {
		if !bounded {
			t.Fatalf("storage write %d ran without a stage deadline", i)
		}
	}
}

func TestGenerateLandingPageUsesBrandColorsWithoutSuggestion(t *testing.T) {
	ts := imageServer(t, nil)
	catalog := &fakeCatalog{
		product: testProduct(),
		brand:   &domain.BrandContext{Ref: "store-1", PrimaryColor: "#112233", AccentColor: "#445566"},
	}
	jobs := newFakeJobStore()
	adapters := Adapters{
		Vision: fakeVision{analysis: &vision.Analysis{Category: "fashion"}},
		Cutout: fakeCutout{url: ts.URL + "/enhanced.png"},
		Copy:   fakeCopy{copy: goodCopy()},
		Scene:  fakeScene{},
	}

	p := newTestPipeline(catalog, jobs, &fakeObjectStore{}, adapters, ts.Client(), Options{})
	job, err := p.GenerateLandingPage(context.Background(), LandingRequest{
		SellerRef:     "seller-1",
		ProductRef:    "prod-1",
		StorefrontRef: "store-1",
		JobID:         "job-7",
	})
	if err != nil {
		t.Fatalf("GenerateLandingPage returned error: %v", err)
	}
	if job.Design.Palette["primary"] != "#112233" {
		t.Fatalf("primary = %q, want brand color", job.Design.Palette["primary"])
	}
	if job.Design.Palette["accent"] != "#445566" {
		t.Fatalf("accent = %q, want brand color", job.Design.Palette["accent"])
	}
}

func TestGenerateLandingPageResubmitRunsAgain(t *testing.T) {
	ts := imageServer(t, nil)
	catalog := &fakeCatalog{product: testProduct(), brand: &domain.BrandContext{Ref: "store-1"}}
	jobs := newFakeJobStore()
	adapters := Adapters{
		Vision: fakeVision{},
		Cutout: fakeCutout{url: ts.URL + "/enhanced.png"},
		Copy:   fakeCopy{copy: goodCopy()},
		Scene:  fakeScene{},
	}

	p := newTestPipeline(catalog, jobs, &fakeObjectStore{}, adapters, ts.Client(), Options{})
	req := LandingRequest{
		SellerRef:     "seller-1",
		ProductRef:    "prod-1",
		StorefrontRef: "store-1",
		JobID:         "job-6",
	}
	if _, err := p.GenerateLandingPage(context.Background(), req); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := p.GenerateLandingPage(context.Background(), req); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if jobs.patchContentCalls != 2 {
		t.Fatalf("PatchContent calls = %d, want 2 (last write wins)", jobs.patchContentCalls)
	}
}
