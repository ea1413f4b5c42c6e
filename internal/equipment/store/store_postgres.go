package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"trafficwatch/internal/equipment/models"
	"trafficwatch/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// Postgres persists equipment in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, eq models.Equipment) (models.Equipment, error) {
	const q = `
		INSERT INTO equipments (serial, model, address, latitude, longitude, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := s.db.QueryRowContext(ctx, q,
		eq.Serial, eq.Model, eq.Address, eq.Latitude, eq.Longitude, eq.Active,
	).Scan(&eq.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Equipment{}, sentinel.ErrConflict
		}
		return models.Equipment{}, fmt.Errorf("save equipment: %w", err)
	}
	return eq, nil
}

func (s *Postgres) List(ctx context.Context) ([]models.Equipment, error) {
	const q = `
		SELECT id, serial, model, address, latitude, longitude, active
		FROM equipments
		ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list equipments: %w", err)
	}
	defer rows.Close()

	var out []models.Equipment
	for rows.Next() {
		var eq models.Equipment
		if err := rows.Scan(&eq.ID, &eq.Serial, &eq.Model, &eq.Address, &eq.Latitude, &eq.Longitude, &eq.Active); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		out = append(out, eq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list equipments: %w", err)
	}
	return out, nil
}

func (s *Postgres) FindBySerial(ctx context.Context, serial string) (models.Equipment, error) {
	const q = `
		SELECT id, serial, model, address, latitude, longitude, active
		FROM equipments
		WHERE serial = $1`
	var eq models.Equipment
	err := s.db.QueryRowContext(ctx, q, serial).Scan(
		&eq.ID, &eq.Serial, &eq.Model, &eq.Address, &eq.Latitude, &eq.Longitude, &eq.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Equipment{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Equipment{}, fmt.Errorf("find equipment by serial: %w", err)
	}
	return eq, nil
}
