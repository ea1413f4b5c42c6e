package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trafficwatch/internal/violation/models"
	"trafficwatch/pkg/platform/sentinel"
)

// Postgres persists violations in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, v models.Violation) (models.Violation, error) {
	const q = `
		INSERT INTO violations (equipment_serial, occurred_at, measured_speed, considered_speed, regulated_speed, picture, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := s.db.QueryRowContext(ctx, q,
		v.EquipmentSerial, v.OccurredAt.UTC(), v.MeasuredSpeed, v.ConsideredSpeed, v.RegulatedSpeed, v.Picture, v.Type,
	).Scan(&v.ID)
	if err != nil {
		return models.Violation{}, fmt.Errorf("save violation: %w", err)
	}
	return v, nil
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (models.Violation, error) {
	const q = `
		SELECT id, equipment_serial, occurred_at, measured_speed, considered_speed, regulated_speed, picture, type
		FROM violations
		WHERE id = $1`
	v, err := scanViolation(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Violation{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Violation{}, fmt.Errorf("find violation by id: %w", err)
	}
	return v, nil
}

// FindBySerialAndDateRange returns violations for serial ordered by occurrence
// timestamp ascending, id ascending. Nil bounds are open-ended; present bounds
// are inclusive.
func (s *Postgres) FindBySerialAndDateRange(ctx context.Context, serial string, from, to *time.Time) ([]models.Violation, error) {
	const q = `
		SELECT id, equipment_serial, occurred_at, measured_speed, considered_speed, regulated_speed, picture, type
		FROM violations
		WHERE equipment_serial = $1
		  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR occurred_at <= $3)
		ORDER BY occurred_at, id`
	rows, err := s.db.QueryContext(ctx, q, serial, nullableTime(from), nullableTime(to))
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	defer rows.Close()

	out := make([]models.Violation, 0)
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanViolation(row rowScanner) (models.Violation, error) {
	var v models.Violation
	err := row.Scan(&v.ID, &v.EquipmentSerial, &v.OccurredAt, &v.MeasuredSpeed, &v.ConsideredSpeed, &v.RegulatedSpeed, &v.Picture, &v.Type)
	if err != nil {
		return models.Violation{}, err
	}
	v.OccurredAt = v.OccurredAt.UTC()
	return v, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
