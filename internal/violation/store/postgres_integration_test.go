//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trafficwatch/internal/platform/postgres"
	"trafficwatch/internal/violation/models"
	"trafficwatch/internal/violation/store"
	"trafficwatch/pkg/platform/sentinel"
	"trafficwatch/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.Postgres
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(s.ctx, s.pg.DB))
	s.store = store.NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx, "TRUNCATE violations RESTART IDENTITY")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) save(serial string, occurredAt time.Time) models.Violation {
	s.T().Helper()
	measured, considered, regulated := 80.0, 78.0, 60.0
	v, err := s.store.Save(s.ctx, models.Violation{
		EquipmentSerial: serial,
		OccurredAt:      occurredAt,
		MeasuredSpeed:   &measured,
		ConsideredSpeed: &considered,
		RegulatedSpeed:  &regulated,
		Picture:         "http://localhost:9000/violations-bucket/1-pic.jpg",
		Type:            models.TypeVelocity,
	})
	s.Require().NoError(err)
	return v
}

func (s *PostgresStoreSuite) TestSaveAndFindByID() {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	saved := s.save("EQ-100", at)
	s.NotZero(saved.ID)

	found, err := s.store.FindByID(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.Equal(saved.EquipmentSerial, found.EquipmentSerial)
	s.True(found.OccurredAt.Equal(at))
	s.Require().NotNil(found.MeasuredSpeed)
	s.Equal(80.0, *found.MeasuredSpeed)

	_, err = s.store.FindByID(s.ctx, 9999)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestNullSpeedsRoundTrip() {
	v, err := s.store.Save(s.ctx, models.Violation{
		EquipmentSerial: "EQ-100",
		OccurredAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Picture:         "http://localhost:9000/violations-bucket/2-pic.jpg",
		Type:            "PARKING",
	})
	s.Require().NoError(err)

	found, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Nil(found.MeasuredSpeed)
	s.Nil(found.ConsideredSpeed)
	s.Nil(found.RegulatedSpeed)
}

func (s *PostgresStoreSuite) TestDateRangeQuery() {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC) }
	s.save("EQ-100", day(3))
	s.save("EQ-100", day(1))
	s.save("EQ-100", day(5))
	s.save("EQ-OTHER", day(2))

	all, err := s.store.FindBySerialAndDateRange(s.ctx, "EQ-100", nil, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.True(all[0].OccurredAt.Equal(day(1)), "ordered by occurrence ascending")

	from, to := day(1), day(3)
	ranged, err := s.store.FindBySerialAndDateRange(s.ctx, "EQ-100", &from, &to)
	s.Require().NoError(err)
	s.Require().Len(ranged, 2)

	open, err := s.store.FindBySerialAndDateRange(s.ctx, "EQ-100", &from, nil)
	s.Require().NoError(err)
	s.Len(open, 3)
}
