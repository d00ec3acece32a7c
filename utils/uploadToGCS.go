package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// FileStore stores uploaded objects and hands back their public URL.
type FileStore interface {
	Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, objectKey string) error
	// ObjectKey derives the object key from a URL previously returned by Upload.
	ObjectKey(accessURL string) string
}

type GCSStore struct {
	client *storage.Client
	bucket string
	gcsURL string
}

// NewGCSStore prefers explicit credentials JSON when given and falls back to
// ADC (Cloud Run service account / GOOGLE_APPLICATION_CREDENTIALS).
func NewGCSStore(ctx context.Context, bucket, gcsURL, credentialsJSON string) (*GCSStore, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, gcsURL: gcsURL}, nil
}

func (s *GCSStore) Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(objectKey).NewWriter(ctx)
	wc.ContentType = contentType
	wc.Metadata = map[string]string{
		"x-goog-acl": "public-read",
	}
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to upload file to Google Cloud Storage: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return BuildObjectAccessURL(s.gcsURL, s.bucket, objectKey), nil
}

// Delete treats a missing object as already deleted.
func (s *GCSStore) Delete(ctx context.Context, objectKey string) error {
	err := s.client.Bucket(s.bucket).Object(objectKey).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (s *GCSStore) ObjectKey(accessURL string) string {
	return ExtractObjectKeyFromURL(s.bucket, accessURL)
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
