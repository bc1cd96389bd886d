package alert

import (
	"context"
	"sync"

	"github.com/chainaware/trace-engine/internal/model"
)

// MemoryStore keeps alerts in memory in raise order.
type MemoryStore struct {
	mu     sync.RWMutex
	alerts []model.Alert
	byID   map[string]int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

func (s *MemoryStore) Insert(_ context.Context, a model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[a.ID] = len(s.alerts)
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.Alert, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return model.Alert{}, false, nil
	}
	return s.alerts[idx], true, nil
}

func (s *MemoryStore) Update(_ context.Context, a model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.byID[a.ID]; ok {
		s.alerts[idx] = a
	}
	return nil
}

func (s *MemoryStore) ListByProduct(_ context.Context, productID string) ([]model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Alert
	for _, a := range s.alerts {
		if a.ProductID == productID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) List(_ context.Context) ([]model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out, nil
}
