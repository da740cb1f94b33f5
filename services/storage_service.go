package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	storage_go "github.com/supabase-community/storage-go"
)

// ObjectStorage stores a file and returns its public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, name, contentType string, data []byte) (string, error)
}

// ErrStorageNotConfigured is returned when no storage endpoint is set.
var ErrStorageNotConfigured = errors.New("object storage not configured (SUPABASE_URL/SUPABASE_SERVICE_ROLE_KEY)")

const defaultUploadTimeout = 60 * time.Second

// SupabaseStorage uploads objects through the Supabase Storage API.
type SupabaseStorage struct {
	client  *storage_go.Client
	timeout time.Duration
}

// NewSupabaseStorage constructs a SupabaseStorage for the project at baseURL.
// A zero timeout uses the default of 60 seconds.
func NewSupabaseStorage(baseURL, serviceKey string, timeout time.Duration) *SupabaseStorage {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" || serviceKey == "" {
		return &SupabaseStorage{}
	}
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	return &SupabaseStorage{
		client:  storage_go.NewClient(baseURL+"/storage/v1", serviceKey, map[string]string{"apikey": serviceKey}),
		timeout: timeout,
	}
}

type uploadResult struct {
	url string
	err error
}

// Upload stores data without overwriting. The SDK call is not cancellable, so
// ctx and the timeout bound how long the caller waits for it.
func (s *SupabaseStorage) Upload(ctx context.Context, bucket, name, contentType string, data []byte) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrStorageNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan uploadResult, 1)
	go func() {
		upsert := false
		resp, err := s.client.UploadFile(bucket, name, bytes.NewReader(data), storage_go.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
		if err == nil && resp.Key == "" {
			err = errors.New("storage api returned no object key")
		}
		if err != nil {
			done <- uploadResult{err: err}
			return
		}
		done <- uploadResult{url: s.PublicURL(bucket, name)}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("upload %s/%s: %w", bucket, name, res.err)
		}
		return res.url, nil
	case <-ctx.Done():
		return "", fmt.Errorf("upload %s/%s: %w", bucket, name, ctx.Err())
	}
}

// PublicURL is the unauthenticated download URL of an object in a public bucket.
func (s *SupabaseStorage) PublicURL(bucket, name string) string {
	if s == nil || s.client == nil {
		return ""
	}
	return s.client.GetPublicUrl(bucket, name).SignedURL
}
