package ledger

import (
	"context"
	"sync"

	"github.com/chainaware/trace-engine/internal/model"
)

// MemoryStore keeps reading history in memory. With maxPerProduct > 0 it
// retains only the most recent readings, dropping the oldest on overflow.
type MemoryStore struct {
	mu            sync.RWMutex
	readings      map[string][]model.Reading
	maxPerProduct int
}

// NewMemoryStore creates a store. maxPerProduct 0 means unbounded history.
func NewMemoryStore(maxPerProduct int) *MemoryStore {
	return &MemoryStore{
		readings:      make(map[string][]model.Reading),
		maxPerProduct: maxPerProduct,
	}
}

func (s *MemoryStore) Append(_ context.Context, productID string, r model.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := append(s.readings[productID], r)
	if s.maxPerProduct > 0 && len(seq) > s.maxPerProduct {
		seq = seq[len(seq)-s.maxPerProduct:]
	}
	s.readings[productID] = seq
	return nil
}

func (s *MemoryStore) Latest(_ context.Context, productID string) (model.Reading, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq := s.readings[productID]
	if len(seq) == 0 {
		return model.Reading{}, false, nil
	}
	return seq[len(seq)-1], true, nil
}

func (s *MemoryStore) History(_ context.Context, productID string) ([]model.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq := s.readings[productID]
	out := make([]model.Reading, len(seq))
	copy(out, seq)
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context, productID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings[productID]), nil
}
