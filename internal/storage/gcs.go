package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const gcsWriteTimeout = 5 * time.Minute

// GCSStorage implements the Storage interface for Google Cloud Storage
type GCSStorage struct {
	client       *storage.Client
	bucket       string
	objectPrefix string
}

// NewGCSStorage creates a new GCSStorage instance. With an empty
// credentials file the client uses application default credentials.
func NewGCSStorage(ctx context.Context, bucketName, objectPrefix, credentialsFile string) (*GCSStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:       client,
		bucket:       bucketName,
		objectPrefix: objectPrefix,
	}, nil
}

// Save uploads an artifact and returns its object name
func (s *GCSStorage) Save(ctx context.Context, name string, contents io.Reader) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, gcsWriteTimeout)
	defer cancel()

	objectName := s.object(name)
	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(wc, contents); err != nil {
		return "", fmt.Errorf("failed to copy artifact to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return objectName, nil
}

// Open returns a reader for an artifact
func (s *GCSStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	r, err := s.client.Bucket(s.bucket).Object(s.object(name)).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return r, nil
}

// Exists checks whether an artifact exists
func (s *GCSStorage) Exists(ctx context.Context, name string) bool {
	if validateName(name) != nil {
		return false
	}
	_, err := s.client.Bucket(s.bucket).Object(s.object(name)).Attrs(ctx)
	return err == nil
}

// List returns the names of all stored artifacts
func (s *GCSStorage) List(ctx context.Context) ([]string, error) {
	prefix := ""
	if s.objectPrefix != "" {
		prefix = s.objectPrefix + "/"
	}

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		names = append(names, strings.TrimPrefix(attrs.Name, prefix))
	}
	return names, nil
}

// Delete removes an artifact
func (s *GCSStorage) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	err := s.client.Bucket(s.bucket).Object(s.object(name)).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// CleanupExpired removes artifacts created before the cutoff. Buckets
// usually carry lifecycle rules for this; the worker covers deployments
// without them.
func (s *GCSStorage) CleanupExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	prefix := ""
	if s.objectPrefix != "" {
		prefix = s.objectPrefix + "/"
	}

	cutoff := time.Now().Add(-maxAge)
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	removed := 0
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return removed, fmt.Errorf("error listing objects: %w", err)
		}
		if attrs.Created.Before(cutoff) {
			if err := s.client.Bucket(s.bucket).Object(attrs.Name).Delete(ctx); err != nil {
				return removed, fmt.Errorf("failed to delete %s: %w", attrs.Name, err)
			}
			removed++
		}
	}
	return removed, nil
}

// Close closes the GCS client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) object(name string) string {
	if s.objectPrefix != "" {
		return s.objectPrefix + "/" + name
	}
	return name
}
