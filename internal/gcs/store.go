package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
)

// Store reads and writes statement and invoice blobs in Google Cloud
// Storage. It assumes Application Default Credentials are configured.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// Fetch downloads the file bytes for a "gs://bucket/object" URI. Implements
// invoice.BlobStore.
func (s *Store) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := splitURI(gcsURI)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader %q: %w", gcsURI, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object %q: %w", gcsURI, err)
	}
	return data, nil
}

// Upload streams the reader into the bucket under the object name and
// returns the resulting gs:// URI.
func (s *Store) Upload(ctx context.Context, bucket, objectName, contentType string, body io.Reader) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	w := client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy body to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", bucket, objectName), nil
}

// Filename extracts the bare filename from a gs:// URI.
func Filename(gcsURI string) string {
	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

func splitURI(gcsURI string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	if trimmed == gcsURI {
		return "", "", fmt.Errorf("not a gs:// URI: %q", gcsURI)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed GCS URI: %q", gcsURI)
	}
	return parts[0], parts[1], nil
}
