package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"promogen/internal/domain"
	"promogen/internal/storage"
)

// Semantic labels for uploaded asset slots.
const (
	labelEnhanced = "enhanced"
	labelScene    = "scene"
)

type uploadInput struct {
	SourceURL string
	Label     string
}

type uploadOutput struct {
	Label string
	// Key is empty when the slot failed; failed slots are simply omitted
	// from the final asset list.
	Key string
}

// uploadAssets fetches each produced image and persists it into object
// storage concurrently. One slot's failure never fails the others; there is
// no retry and no rollback of already-stored objects.
func (p *Pipeline) uploadAssets(ctx context.Context, sellerRef string, inputs []uploadInput) []uploadOutput {
	outs := make([]uploadOutput, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		i, in := i, in
		outs[i] = uploadOutput{Label: in.Label}
		g.Go(func() error {
			key, err := p.uploadOne(gctx, sellerRef, in)
			if err != nil {
				p.logger.Warn().Err(err).Str("label", in.Label).Msg("pipeline: asset upload failed")
				return nil
			}
			outs[i].Key = key
			return nil
		})
	}
	_ = g.Wait()
	return outs
}

func (p *Pipeline) uploadOne(ctx context.Context, sellerRef string, in uploadInput) (string, error) {
	if err := p.checkSource(in.SourceURL); err != nil {
		return "", err
	}
	cctx, cancel := p.stageContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, in.SourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build fetch: %v", domain.ErrUpload, err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch source: %v", domain.ErrUpload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: fetch source: http %d", domain.ErrUpload, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.opts.MaxAssetBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read source: %v", domain.ErrUpload, err)
	}
	if int64(len(data)) > p.opts.MaxAssetBytes {
		return "", fmt.Errorf("%w: source exceeds %d bytes", domain.ErrUpload, p.opts.MaxAssetBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty source body", domain.ErrUpload)
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	key := storage.BuildKey(in.Label, sellerRef, time.Now(), contentType)
	stored, err := p.store.Put(cctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: store object: %v", domain.ErrUpload, err)
	}
	return stored, nil
}

// checkSource enforces the image-source host allowlist so the uploader only
// fetches from hosts the operator trusts.
func (p *Pipeline) checkSource(source string) error {
	parsed, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("%w: invalid source url: %v", domain.ErrUpload, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", domain.ErrUpload, parsed.Scheme)
	}
	if len(p.opts.ImageSourceAllowlist) == 0 {
		return nil
	}
	host := strings.ToLower(parsed.Hostname())
	for _, allowed := range p.opts.ImageSourceAllowlist {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == "" {
			continue
		}
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return fmt.Errorf("%w: source host %q not allowlisted", domain.ErrUpload, host)
}
