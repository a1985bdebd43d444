package ledger

import (
	"context"
	"sync"

	"golang.org/x/exp/slices"
)

// Store persists entries. Implementations return entries in insertion order
// and must be safe for concurrent use.
type Store interface {
	// Entries returns a snapshot of all entries in insertion order.
	Entries(ctx context.Context) ([]Entry, error)

	// Insert appends an entry.
	Insert(ctx context.Context, e Entry) error

	// Remove deletes the entry with the given ID and reports whether it existed.
	Remove(ctx context.Context, id string) (bool, error)

	// Close releases the resources held by the store.
	Close() error
}

// MemoryStore is the default in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	closed  bool
}

// NewMemoryStore creates an empty MemoryStore, optionally seeded with entries.
func NewMemoryStore(seed ...Entry) *MemoryStore {
	return &MemoryStore{entries: slices.Clone(seed)}
}

func (s *MemoryStore) Entries(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return slices.Clone(s.entries), nil
}

func (s *MemoryStore) Insert(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrStoreClosed
	}
	i := slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return false, nil
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
