package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(en("Seed", "1", CategorySale))

	assert.NoError(t, s.Insert(ctx, Entry{ID: "a", Label: "A", Amount: dec("2"), Category: CategoryRent}))
	assert.NoError(t, s.Insert(ctx, Entry{ID: "b", Label: "B", Amount: dec("3"), Category: CategoryRent}))

	got, err := s.Entries(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(got))
	assert.Equal(t, "a", got[1].ID)

	// Snapshots are copies.
	got[1].Label = "changed"
	again, _ := s.Entries(ctx)
	assert.Equal(t, "A", again[1].Label)

	removed, err := s.Remove(ctx, "a")
	assert.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove(ctx, "a")
	assert.NoError(t, err)
	assert.False(t, removed)

	got, _ = s.Entries(ctx)
	assert.Equal(t, 2, len(got))
	assert.Equal(t, "b", got[1].ID)
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	assert.NoError(t, s.Close())

	_, err := s.Entries(ctx)
	assert.IsError(t, err, ErrStoreClosed)
	assert.IsError(t, s.Insert(ctx, Entry{ID: "x"}), ErrStoreClosed)
	_, err = s.Remove(ctx, "x")
	assert.IsError(t, err, ErrStoreClosed)
}

func TestMemoryStoreConcurrentInsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Insert(ctx, Entry{Category: CategorySale, Amount: dec("1")})
		}()
	}
	wg.Wait()

	got, err := s.Entries(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 50, len(got))
}
