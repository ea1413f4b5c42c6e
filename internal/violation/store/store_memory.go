package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"trafficwatch/internal/violation/models"
	"trafficwatch/pkg/platform/sentinel"
)

// InMemory keeps violations in process memory for unit and handler tests.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]models.Violation
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[int64]models.Violation)}
}

func (s *InMemory) Save(_ context.Context, v models.Violation) (models.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	v.ID = s.nextID
	s.byID[v.ID] = v
	return v, nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (models.Violation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.byID[id]; ok {
		return v, nil
	}
	return models.Violation{}, sentinel.ErrNotFound
}

// FindBySerialAndDateRange returns the violations for serial. Nil bounds are
// open-ended; present bounds are inclusive. Results are ordered by occurrence
// timestamp ascending, id ascending.
func (s *InMemory) FindBySerialAndDateRange(_ context.Context, serial string, from, to *time.Time) ([]models.Violation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Violation, 0)
	for _, v := range s.byID {
		if v.EquipmentSerial != serial {
			continue
		}
		if from != nil && v.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && v.OccurredAt.After(*to) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out, nil
}
