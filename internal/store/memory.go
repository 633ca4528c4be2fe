package store

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/bandstand-io/bandstand/internal/domain"
)

// NewMemory returns a store backed by process memory. Documents are
// kept in their BSON encoding so reads hand out independent copies with
// the same fidelity as the MongoDB backend.
func NewMemory() *Store {
	return &Store{
		Groups:        newMemoryCollection[domain.Group](nil),
		Members:       newMemoryCollection(func(m *domain.Member) string { return m.GroupID }),
		Tasks:         newMemoryCollection(func(t *domain.Task) string { return t.GroupID }),
		Setlists:      newMemoryCollection(func(s *domain.Setlist) string { return s.GroupID }),
		MerchItems:    newMemoryCollection(func(m *domain.MerchItem) string { return m.GroupID }),
		Sales:         newMemoryCollection(func(s *domain.Sale) string { return s.GroupID }),
		Finance:       newMemoryCollection(func(f *domain.FinanceEntry) string { return f.GroupID }),
		Notifications: newMemoryCollection(func(n *domain.Notification) string { return n.GroupID }),
	}
}

// memoryCollection stores BSON-encoded documents guarded by a mutex.
// A nil groupOf makes List return every document.
type memoryCollection[T any] struct {
	mu      sync.RWMutex
	docs    map[string][]byte
	order   []string
	groupOf func(*T) string
}

func newMemoryCollection[T any](groupOf func(*T) string) *memoryCollection[T] {
	return &memoryCollection[T]{
		docs:    make(map[string][]byte),
		groupOf: groupOf,
	}
}

func (c *memoryCollection[T]) Get(ctx context.Context, id string) (*T, error) {
	c.mu.RLock()
	raw, ok := c.docs[id]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var doc T
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &doc, nil
}

func (c *memoryCollection[T]) List(ctx context.Context, groupID string) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]T, 0, len(c.order))
	for _, id := range c.order {
		var doc T
		if err := bson.Unmarshal(c.docs[id], &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		if c.groupOf != nil && c.groupOf(&doc) != groupID {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *memoryCollection[T]) Save(ctx context.Context, id string, doc *T) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = raw
	return nil
}

func (c *memoryCollection[T]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[id]; !exists {
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}
