package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tabletop-companion/internal/dependencies/mocks"
	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/storage/memory"
	"github.com/mcoot/tabletop-companion/internal/testutil"
)

var created = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(created)
	s.random = mocks.NewMockRandom()
	s.service = NewService(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestCreate() {
	s.random.QueueID("profile-abc")

	p, err := s.service.Create(s.ctx, "  Alice ", "teal")
	s.Require().NoError(err)

	s.Equal(model.ProfileID("profile-abc"), p.ID)
	s.Equal("Alice", p.Name)
	s.Equal("teal", p.FavoriteColor)
	s.Equal(model.PlayerStats{FavoriteGames: []model.GameID{}}, p.Stats)
	s.Equal(created, p.CreatedAt)
	s.Nil(p.LastPlayedAt)

	stored, err := s.service.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p, stored)
}

func (s *ServiceSuite) TestCreateDefaultsColour() {
	p, err := s.service.Create(s.ctx, "Bob", "")
	s.Require().NoError(err)
	s.Equal("red", p.FavoriteColor)
}

func (s *ServiceSuite) TestCreateRejectsBlankName() {
	_, err := s.service.Create(s.ctx, "   ", "red")
	s.ErrorIs(err, model.ErrInvalidProfileName)
}

func (s *ServiceSuite) TestGetMissing() {
	_, err := s.service.Get(s.ctx, "profile-missing")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *ServiceSuite) TestUpdate() {
	p, err := s.service.Create(s.ctx, "Alice", "red")
	s.Require().NoError(err)

	name := "Alicia"
	updated, err := s.service.Update(s.ctx, p.ID, model.ProfileUpdate{Name: &name})
	s.Require().NoError(err)

	s.Equal("Alicia", updated.Name)
	s.Equal("red", updated.FavoriteColor)
	s.Equal(p.CreatedAt, updated.CreatedAt)

	stored, err := s.service.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Alicia", stored.Name)
}

func (s *ServiceSuite) TestUpdateOverwritesStats() {
	p, err := s.service.Create(s.ctx, "Alice", "red")
	s.Require().NoError(err)
	stats := model.PlayerStats{GamesPlayed: 3, GamesWon: 1, TotalScore: 90, FavoriteGames: []model.GameID{"wingspan"}}

	updated, err := s.service.Update(s.ctx, p.ID, model.ProfileUpdate{Stats: &stats})
	s.Require().NoError(err)
	s.Equal(stats, updated.Stats)
}

func (s *ServiceSuite) TestUpdateMissing() {
	color := "blue"
	_, err := s.service.Update(s.ctx, "profile-missing", model.ProfileUpdate{FavoriteColor: &color})
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *ServiceSuite) TestUpdateRejectsBlankName() {
	p, err := s.service.Create(s.ctx, "Alice", "red")
	s.Require().NoError(err)

	blank := " "
	_, err = s.service.Update(s.ctx, p.ID, model.ProfileUpdate{Name: &blank})
	s.ErrorIs(err, model.ErrInvalidProfileName)
}

func (s *ServiceSuite) TestDelete() {
	p, err := s.service.Create(s.ctx, "Alice", "red")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, p.ID))

	_, err = s.service.Get(s.ctx, p.ID)
	s.ErrorIs(err, model.ErrProfileNotFound)
	s.NoError(s.service.Delete(s.ctx, p.ID), "deleting twice is fine")
}

func (s *ServiceSuite) TestGetAllOrderedByCreation() {
	for _, name := range []string{"Carol", "Alice", "Bob"} {
		_, err := s.service.Create(s.ctx, name, "")
		s.Require().NoError(err)
		s.clock.Advance(time.Minute)
	}
	s.storage.PutRawProfile("profile-broken", []byte(`{"id":"profile-broken"}`))

	all, err := s.service.GetAll(s.ctx)
	s.Require().NoError(err)

	s.Require().Len(all, 3)
	s.Equal("Carol", all[0].Name)
	s.Equal("Alice", all[1].Name)
	s.Equal("Bob", all[2].Name)
}

func (s *ServiceSuite) TestSearch() {
	for _, name := range []string{"Alice", "Malik", "Bob"} {
		_, err := s.service.Create(s.ctx, name, "")
		s.Require().NoError(err)
		s.clock.Advance(time.Minute)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"ALI", []string{"Alice", "Malik"}},
		{"bob", []string{"Bob"}},
		{"", []string{"Alice", "Malik", "Bob"}},
		{"zed", nil},
	}
	for _, tt := range tests {
		s.Run(tt.query, func() {
			found, err := s.service.Search(s.ctx, tt.query)
			s.Require().NoError(err)
			var names []string
			for _, p := range found {
				names = append(names, p.Name)
			}
			s.Equal(tt.want, names)
		})
	}
}

func (s *ServiceSuite) TestRecordGameResult() {
	p, err := s.service.Create(s.ctx, "Alice", "red")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	s.Require().NoError(s.service.RecordGameResult(s.ctx, p.ID, "wingspan", 87, true))
	s.clock.Advance(time.Hour)
	s.Require().NoError(s.service.RecordGameResult(s.ctx, p.ID, "wingspan", 64, false))
	s.Require().NoError(s.service.RecordGameResult(s.ctx, p.ID, "splendor", 15, false))

	stored, err := s.service.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(3, stored.Stats.GamesPlayed)
	s.Equal(1, stored.Stats.GamesWon)
	s.Equal(166, stored.Stats.TotalScore)
	s.Equal([]model.GameID{"wingspan", "splendor"}, stored.Stats.FavoriteGames)
	s.Require().NotNil(stored.LastPlayedAt)
	s.Equal(created.Add(2*time.Hour), *stored.LastPlayedAt)
}

func (s *ServiceSuite) TestRecordGameResultUnknownProfile() {
	s.NoError(s.service.RecordGameResult(s.ctx, "profile-ghost", "wingspan", 10, true))

	ids, err := s.storage.ListProfileIDs(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *ServiceSuite) TestPlayerFromProfile() {
	p, err := s.service.Create(s.ctx, "Alice", "purple")
	s.Require().NoError(err)

	player := PlayerFromProfile(p)

	s.Empty(player.ID)
	s.Equal("Alice", player.Name)
	s.Equal("purple", player.Color)
	s.Equal(p.ID, player.ProfileID)
}
