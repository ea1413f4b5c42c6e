// Package service implements the violation workflow. The one real business
// rule lives here: a violation may only be recorded against equipment that
// exists and is active at creation time.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	equipmentmodels "trafficwatch/internal/equipment/models"
	"trafficwatch/internal/platform/metrics"
	"trafficwatch/internal/violation/models"
	dErrors "trafficwatch/pkg/domain-errors"
	"trafficwatch/pkg/platform/sentinel"
)

// EquipmentDirectory is the slice of the equipment service the workflow needs.
type EquipmentDirectory interface {
	IsActive(ctx context.Context, serial string) (bool, error)
}

// Store is the persistence boundary for violation records.
type Store interface {
	Save(ctx context.Context, v models.Violation) (models.Violation, error)
	FindByID(ctx context.Context, id int64) (models.Violation, error)
	FindBySerialAndDateRange(ctx context.Context, serial string, from, to *time.Time) ([]models.Violation, error)
}

// Service coordinates the activity check and the write.
type Service struct {
	store     Store
	equipment EquipmentDirectory
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func New(store Store, equipment EquipmentDirectory, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, equipment: equipment, logger: logger, metrics: m}
}

// Create records a violation after confirming the target equipment is active.
//
// The activity check and the save are two independent calls with no shared
// transaction: equipment deactivated between them still gets the violation.
// The check has no side effect, so a failed save needs no compensation.
func (s *Service) Create(ctx context.Context, v models.Violation) (models.Violation, error) {
	active, err := s.equipment.IsActive(ctx, v.EquipmentSerial)
	if err != nil {
		// An unknown serial propagates unchanged; no violation is created.
		return models.Violation{}, err
	}
	if !active {
		s.logger.WarnContext(ctx, "violation rejected for inactive equipment",
			"serial", equipmentmodels.MaskSerial(v.EquipmentSerial),
		)
		s.metrics.ViolationsRejected.Inc()
		return models.Violation{}, dErrors.Newf(dErrors.CodeUnprocessable,
			"Cannot create violation for inactive equipment: %s", v.EquipmentSerial)
	}

	saved, err := s.store.Save(ctx, v)
	if err != nil {
		return models.Violation{}, err
	}

	s.logger.InfoContext(ctx, "violation created",
		"violation_id", models.MaskID(saved.ID),
		"serial", equipmentmodels.MaskSerial(saved.EquipmentSerial),
		"type", saved.Type,
	)
	s.metrics.ViolationsCreated.Inc()
	return saved, nil
}

// FindByID fetches one violation, translating a store miss into a clean
// not-found error.
func (s *Service) FindByID(ctx context.Context, id int64) (models.Violation, error) {
	v, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Violation{}, dErrors.Newf(dErrors.CodeNotFound, "violation not found: %s", models.MaskID(id))
		}
		return models.Violation{}, err
	}
	return v, nil
}

// ListByEquipment is a pass-through to the store's range query; see the store
// for the bound semantics.
func (s *Service) ListByEquipment(ctx context.Context, serial string, from, to *time.Time) ([]models.Violation, error) {
	return s.store.FindBySerialAndDateRange(ctx, serial, from, to)
}
