package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore serves objects from a Google Cloud Storage bucket. The
// bucket name comes from the GOOGLE_BUCKET environment variable;
// credentials from the usual application default chain.
type GCSStore struct {
	client *gstorage.Client
	bucket *gstorage.BucketHandle
}

func NewGCSStore(ctx context.Context) (*GCSStore, error) {
	bucket := os.Getenv("GOOGLE_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("GOOGLE_BUCKET environment variable must be set")
	}

	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: client.Bucket(bucket),
	}, nil
}

func (s *GCSStore) Get(ctx context.Context, path string) ([]byte, error) {
	reader, err := s.bucket.Object(CanonicalKey(path)).NewReader(ctx)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}

	return data, nil
}

func (s *GCSStore) Put(ctx context.Context, path string, data []byte) error {
	writer := s.bucket.Object(CanonicalKey(path)).NewWriter(ctx)

	if _, err := writer.Write(data); err != nil {
		writer.Close()

		return fmt.Errorf("failed to write object %s: %w", path, err)
	}

	// The object only becomes visible once Close succeeds.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to commit object %s: %w", path, err)
	}

	return nil
}

func (s *GCSStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.bucket.Object(CanonicalKey(path)).Attrs(ctx)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat object %s: %w", path, err)
	}

	return true, nil
}

func (s *GCSStore) List(ctx context.Context, prefix string) ([]string, error) {
	keyPrefix := CanonicalKey(prefix)
	if keyPrefix != "" {
		keyPrefix += "/"
	}

	it := s.bucket.Objects(ctx, &gstorage.Query{
		Prefix:    keyPrefix,
		Delimiter: "/",
	})

	var paths []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf(
				"failed to list objects under %s: %w",
				prefix,
				err,
			)
		}

		// Entries with an empty name are synthetic prefixes.
		if attrs.Name != "" {
			paths = append(paths, attrs.Name)
		}
	}

	return paths, nil
}

func (s *GCSStore) Delete(ctx context.Context, path string) error {
	err := s.bucket.Object(CanonicalKey(path)).Delete(ctx)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}

	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
