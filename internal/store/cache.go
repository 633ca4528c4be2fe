package store

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bandstand-io/bandstand/internal/domain"
)

const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = 30 * time.Minute
)

// WithCache fronts every collection of s with an expirable LRU snapshot
// cache, so repeated list reads for the same group skip the database.
// Any write for a group drops that group's snapshot.
func WithCache(s *Store, size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Store{
		Groups:        newCachedCollection(s.Groups, size, ttl, func(g *domain.Group) string { return "" }),
		Members:       newCachedCollection(s.Members, size, ttl, func(m *domain.Member) string { return m.GroupID }),
		Tasks:         newCachedCollection(s.Tasks, size, ttl, func(t *domain.Task) string { return t.GroupID }),
		Setlists:      newCachedCollection(s.Setlists, size, ttl, func(st *domain.Setlist) string { return st.GroupID }),
		MerchItems:    newCachedCollection(s.MerchItems, size, ttl, func(m *domain.MerchItem) string { return m.GroupID }),
		Sales:         newCachedCollection(s.Sales, size, ttl, func(sa *domain.Sale) string { return sa.GroupID }),
		Finance:       newCachedCollection(s.Finance, size, ttl, func(f *domain.FinanceEntry) string { return f.GroupID }),
		Notifications: newCachedCollection(s.Notifications, size, ttl, func(n *domain.Notification) string { return n.GroupID }),
		closeFn:       s.closeFn,
	}
}

// cachedCollection keeps the last list snapshot per group. Get always
// goes to the backing collection; only List is served from cache.
type cachedCollection[T any] struct {
	Collection[T]
	lists   *expirable.LRU[string, []T]
	groupOf func(*T) string
}

func newCachedCollection[T any](inner Collection[T], size int, ttl time.Duration, groupOf func(*T) string) *cachedCollection[T] {
	return &cachedCollection[T]{
		Collection: inner,
		lists:      expirable.NewLRU[string, []T](size, nil, ttl),
		groupOf:    groupOf,
	}
}

func (c *cachedCollection[T]) List(ctx context.Context, groupID string) ([]T, error) {
	if snapshot, ok := c.lists.Get(groupID); ok {
		return slices.Clone(snapshot), nil
	}

	docs, err := c.Collection.List(ctx, groupID)
	if err != nil {
		return nil, err
	}
	c.lists.Add(groupID, slices.Clone(docs))
	return docs, nil
}

func (c *cachedCollection[T]) Save(ctx context.Context, id string, doc *T) error {
	if err := c.Collection.Save(ctx, id, doc); err != nil {
		return err
	}
	c.lists.Remove(c.groupOf(doc))
	return nil
}

func (c *cachedCollection[T]) Delete(ctx context.Context, id string) error {
	if err := c.Collection.Delete(ctx, id); err != nil {
		return err
	}
	// The deleted document's group is no longer known here, so every
	// snapshot of this collection goes.
	c.lists.Purge()
	return nil
}
