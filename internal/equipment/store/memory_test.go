package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"trafficwatch/internal/equipment/models"
	"trafficwatch/pkg/platform/sentinel"
)

type EquipmentStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *EquipmentStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestEquipmentStoreSuite(t *testing.T) {
	suite.Run(t, new(EquipmentStoreSuite))
}

func (s *EquipmentStoreSuite) newEquipment(serial string) models.Equipment {
	return models.Equipment{
		Serial:    serial,
		Model:     "RadarX 9000",
		Address:   "Av. Paulista, 1000",
		Latitude:  -23.56,
		Longitude: -46.65,
		Active:    true,
	}
}

func (s *EquipmentStoreSuite) TestSaveAssignsIdentifier() {
	saved, err := s.store.Save(s.ctx, s.newEquipment("EQ-100"))
	s.Require().NoError(err)
	s.NotZero(saved.ID)
	s.Equal("EQ-100", saved.Serial)

	found, err := s.store.FindBySerial(s.ctx, "EQ-100")
	s.Require().NoError(err)
	s.Equal(saved, found)
}

func (s *EquipmentStoreSuite) TestDuplicateSerialConflicts() {
	_, err := s.store.Save(s.ctx, s.newEquipment("EQ-100"))
	s.Require().NoError(err)

	_, err = s.store.Save(s.ctx, s.newEquipment("EQ-100"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *EquipmentStoreSuite) TestFindUnknownSerial() {
	_, err := s.store.FindBySerial(s.ctx, "EQ-404")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *EquipmentStoreSuite) TestListPreservesInsertionOrder() {
	for _, serial := range []string{"EQ-3", "EQ-1", "EQ-2"} {
		_, err := s.store.Save(s.ctx, s.newEquipment(serial))
		s.Require().NoError(err)
	}

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("EQ-3", all[0].Serial)
	s.Equal("EQ-1", all[1].Serial)
	s.Equal("EQ-2", all[2].Serial)
}
