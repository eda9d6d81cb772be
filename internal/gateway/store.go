// internal/gateway/store.go
package gateway

import (
	"context"
	"sync"
)

// CiphertextStore keeps sealed blobs by handle.
type CiphertextStore interface {
	Put(ctx context.Context, handle Handle, blob []byte) error
	Get(ctx context.Context, handle Handle) ([]byte, error)
}

type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[Handle][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[Handle][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, handle Handle, blob []byte) error {
	cp := make([]byte, len(blob))
	copy(cp, blob)

	s.mu.Lock()
	s.blobs[handle] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, handle Handle) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[handle]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return blob, nil
}

// Len is the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
