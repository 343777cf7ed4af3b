// Package memory provides an in-process durable store used by tests and as
// the hydration source when no persistent backend is configured. Contents do
// not survive process restart.
package memory

import (
	"context"
	"sync"

	"cartcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.DurableStore = (*Store)(nil)

// Store is a map-backed key/value store safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{data: map[string]string{}}
}

// Get returns the payload stored under key, if any.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[key]
	return payload, ok, nil
}

// Set stores payload under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = payload
	return nil
}

// Remove deletes the payload stored under key. Removing a missing key is a
// no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len reports the number of stored keys. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
