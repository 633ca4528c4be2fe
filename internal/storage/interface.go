// Package storage persists exported setlist PDFs on the local
// filesystem or in a Google Cloud Storage bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrNotFound is returned when an artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// Storage defines the interface for persisting exported PDF artifacts.
// Artifacts are addressed by plain file names; the implementation maps
// them to paths or object names.
type Storage interface {
	Save(ctx context.Context, name string, contents io.Reader) (string, error)

	Open(ctx context.Context, name string) (io.ReadCloser, error)

	Exists(ctx context.Context, name string) bool

	List(ctx context.Context) ([]string, error)

	Delete(ctx context.Context, name string) error

	// CleanupExpired removes artifacts older than maxAge and reports
	// how many were removed.
	CleanupExpired(ctx context.Context, maxAge time.Duration) (int, error)

	Close() error
}

// validateName rejects names that could escape the artifact namespace.
func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	return nil
}
