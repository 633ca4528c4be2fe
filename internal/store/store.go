// Package store provides functionality for persisting the
// application's documents in MongoDB, with an in-memory backend for
// tests and local development.
package store

import (
	"context"
	"errors"

	"github.com/bandstand-io/bandstand/internal/domain"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Collection is a typed document collection. Save replaces the whole
// document (upsert); List returns the documents belonging to one group.
// List results are snapshots: callers may filter and reorder them but
// must go through Get before mutating a document.
type Collection[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, groupID string) ([]T, error)
	Save(ctx context.Context, id string, doc *T) error
	Delete(ctx context.Context, id string) error
}

// Store bundles the application's collections.
type Store struct {
	Groups        Collection[domain.Group]
	Members       Collection[domain.Member]
	Tasks         Collection[domain.Task]
	Setlists      Collection[domain.Setlist]
	MerchItems    Collection[domain.MerchItem]
	Sales         Collection[domain.Sale]
	Finance       Collection[domain.FinanceEntry]
	Notifications Collection[domain.Notification]

	closeFn func(context.Context) error
}

// Close releases the underlying connections, if any.
func (s *Store) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}
