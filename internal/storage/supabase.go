package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	supastorage "github.com/supabase-community/storage-go"
)

// SupabaseStore persists assets into a Supabase storage bucket.
type SupabaseStore struct {
	client *supastorage.Client
	bucket string
}

// NewSupabaseStore builds a store for the given project URL and bucket using
// the service role key.
func NewSupabaseStore(projectURL, serviceKey, bucket string) (*SupabaseStore, error) {
	projectURL = strings.TrimRight(strings.TrimSpace(projectURL), "/")
	if projectURL == "" {
		return nil, errors.New("storage: supabase url is required")
	}
	if strings.TrimSpace(serviceKey) == "" {
		return nil, errors.New("storage: supabase service key is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("storage: supabase bucket is required")
	}
	client := supastorage.NewClient(projectURL+"/storage/v1", serviceKey, nil)
	return &SupabaseStore{client: client, bucket: bucket}, nil
}

// Put uploads the bytes under key with the given content type and returns
// the key. Existing objects at the same key are overwritten.
func (s *SupabaseStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := true
	_, err = s.client.UploadFile(s.bucket, cleanKey, bytes.NewReader(data), supastorage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload object: %w", err)
	}
	return cleanKey, nil
}

var _ ObjectStore = (*SupabaseStore)(nil)
