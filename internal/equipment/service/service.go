// Package service implements the equipment directory: registration, listing
// and the activity lookup the violation workflow depends on.
package service

import (
	"context"
	"errors"
	"log/slog"

	"trafficwatch/internal/equipment/models"
	"trafficwatch/internal/platform/metrics"
	dErrors "trafficwatch/pkg/domain-errors"
	"trafficwatch/pkg/platform/sentinel"
)

// Store is the persistence boundary for equipment records.
type Store interface {
	Save(ctx context.Context, eq models.Equipment) (models.Equipment, error)
	List(ctx context.Context) ([]models.Equipment, error)
	FindBySerial(ctx context.Context, serial string) (models.Equipment, error)
}

// Service wraps the store with validation and domain-error translation.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(store Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m}
}

// Create validates and persists a new equipment record. Duplicate serials
// surface as a conflict from the store; there is no pre-check.
func (s *Service) Create(ctx context.Context, eq models.Equipment) (models.Equipment, error) {
	if err := eq.Validate(); err != nil {
		return models.Equipment{}, err
	}

	saved, err := s.store.Save(ctx, eq)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.Equipment{}, dErrors.Newf(dErrors.CodeConflict, "equipment serial must be unique: %s", eq.Serial)
		}
		return models.Equipment{}, err
	}

	s.logger.InfoContext(ctx, "equipment created", "serial", models.MaskSerial(saved.Serial))
	s.metrics.EquipmentCreated.Inc()
	return saved, nil
}

// List returns every registered equipment in store order.
func (s *Service) List(ctx context.Context) ([]models.Equipment, error) {
	return s.store.List(ctx)
}

// GetBySerial fetches one equipment record by its business key.
func (s *Service) GetBySerial(ctx context.Context, serial string) (models.Equipment, error) {
	eq, err := s.store.FindBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Equipment{}, dErrors.Newf(dErrors.CodeNotFound, "equipment not found: %s", serial)
		}
		return models.Equipment{}, err
	}
	return eq, nil
}

// IsActive reports the stored active flag for serial, failing with the same
// not-found error as GetBySerial for unknown serials.
func (s *Service) IsActive(ctx context.Context, serial string) (bool, error) {
	eq, err := s.GetBySerial(ctx, serial)
	if err != nil {
		return false, err
	}
	return eq.Active, nil
}
