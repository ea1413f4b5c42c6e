package store

import (
	"context"
	"sync"

	"trafficwatch/internal/equipment/models"
	"trafficwatch/pkg/platform/sentinel"
)

// InMemory keeps equipment in process memory. It backs unit and handler tests
// and favors clarity over performance. List preserves insertion order, as the
// Postgres store does.
type InMemory struct {
	mu       sync.RWMutex
	nextID   int64
	order    []string
	bySerial map[string]models.Equipment
}

func NewInMemory() *InMemory {
	return &InMemory{bySerial: make(map[string]models.Equipment)}
}

func (s *InMemory) Save(_ context.Context, eq models.Equipment) (models.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bySerial[eq.Serial]; exists {
		return models.Equipment{}, sentinel.ErrConflict
	}
	s.nextID++
	eq.ID = s.nextID
	s.bySerial[eq.Serial] = eq
	s.order = append(s.order, eq.Serial)
	return eq, nil
}

func (s *InMemory) List(_ context.Context) ([]models.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Equipment, 0, len(s.order))
	for _, serial := range s.order {
		out = append(out, s.bySerial[serial])
	}
	return out, nil
}

func (s *InMemory) FindBySerial(_ context.Context, serial string) (models.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if eq, ok := s.bySerial[serial]; ok {
		return eq, nil
	}
	return models.Equipment{}, sentinel.ErrNotFound
}
