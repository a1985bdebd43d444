// Package bolt is a ledger.Store backed by a bbolt database file.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/robinvdvleuten/compta/ledger"
	bolt "go.etcd.io/bbolt"
)

// Bucket names.
const (
	BucketEntries = "entries"
	BucketIndex   = "entry_ids"
)

// Store keeps entries as JSON values keyed by an insertion sequence, with an
// index bucket from entry ID to sequence.
type Store struct {
	db *bolt.DB

	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the database at path and initializes buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{BucketEntries, BucketIndex} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Entries(ctx context.Context) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ledger.ErrStoreClosed
	}

	var out []ledger.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketEntries)).ForEach(func(k, v []byte) error {
			var e ledger.Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("failed to decode entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
			out = append(out, e)
			return nil
		})
	})
	return out, err
}

func (s *Store) Insert(ctx context.Context, e ledger.Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ledger.ErrStoreClosed
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket([]byte(BucketIndex))
		if index.Get([]byte(e.ID)) != nil {
			return fmt.Errorf("entry %s already exists", e.ID)
		}

		entries := tx.Bucket([]byte(BucketEntries))
		seq, err := entries.NextSequence()
		if err != nil {
			return err
		}
		key := itob(seq)
		if err := entries.Put(key, data); err != nil {
			return err
		}
		return index.Put([]byte(e.ID), key)
	})
}

func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ledger.ErrStoreClosed
	}

	removed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket([]byte(BucketIndex))
		key := index.Get([]byte(id))
		if key == nil {
			return nil
		}
		// Values from Get are only valid for the life of the transaction.
		key = append([]byte(nil), key...)
		if err := tx.Bucket([]byte(BucketEntries)).Delete(key); err != nil {
			return err
		}
		removed = true
		return index.Delete([]byte(id))
	})
	return removed, err
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
