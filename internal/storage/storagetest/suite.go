// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/storage"
)

// Suite runs the common storage contract against a backend. Embed it in
// a backend test suite and set NewStorage.
type Suite struct {
	suite.Suite

	// NewStorage returns an empty backend for each test
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		s.NoError(s.Storage.Close())
	}
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NewSession returns a valid two-player session with the given id
func NewSession(id model.SessionID) *model.GameSession {
	return &model.GameSession{
		ID:     id,
		GameID: "splendor",
		Players: []model.Player{
			{ID: "p1", Name: "Alice", Color: "red"},
			{ID: "p2", Name: "Bob", Color: "blue"},
		},
		Scores: model.PlayerScores{
			"p1": {{Points: 5, Category: "cards", Timestamp: baseTime}},
			"p2": {},
		},
		Resources:     model.PlayerResources{"p1": {"gold": 1}, "p2": {"gold": 0}},
		TurnNumber:    1,
		RoundNumber:   1,
		StartedAt:     baseTime,
		LastUpdatedAt: baseTime,
	}
}

// NewProfile returns a valid profile with the given id
func NewProfile(id model.ProfileID, name string) *model.PlayerProfile {
	return &model.PlayerProfile{
		ID:            id,
		Name:          name,
		FavoriteColor: "green",
		Stats:         model.PlayerStats{FavoriteGames: []model.GameID{}},
		CreatedAt:     baseTime,
	}
}

// Session tests

func (s *Suite) TestSaveAndGetSession() {
	session := NewSession("session-1")

	s.Require().NoError(s.Storage.SaveSession(s.Ctx, session))

	retrieved, err := s.Storage.GetSession(s.Ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(session, retrieved)
}

func (s *Suite) TestGetSessionReturnsCopy() {
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, NewSession("session-1")))

	first, err := s.Storage.GetSession(s.Ctx, "session-1")
	s.Require().NoError(err)
	first.Scores["p1"][0].Points = 100

	second, err := s.Storage.GetSession(s.Ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(5, second.Scores["p1"][0].Points)
}

func (s *Suite) TestSaveSessionOverwrites() {
	session := NewSession("session-1")
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, session))

	session.TurnNumber = 7
	session.Notes = "close game"
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, session))

	retrieved, err := s.Storage.GetSession(s.Ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(7, retrieved.TurnNumber)
	s.Equal("close game", retrieved.Notes)

	ids, err := s.Storage.ListSessionIDs(s.Ctx)
	s.Require().NoError(err)
	s.Len(ids, 1)
}

func (s *Suite) TestGetSessionNotFound() {
	_, err := s.Storage.GetSession(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestListSessionIDs() {
	ids, err := s.Storage.ListSessionIDs(s.Ctx)
	s.Require().NoError(err)
	s.Empty(ids)

	s.Require().NoError(s.Storage.SaveSession(s.Ctx, NewSession("session-1")))
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, NewSession("session-2")))

	ids, err = s.Storage.ListSessionIDs(s.Ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]model.SessionID{"session-1", "session-2"}, ids)
}

func (s *Suite) TestDeleteSession() {
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, NewSession("session-1")))

	s.Require().NoError(s.Storage.DeleteSession(s.Ctx, "session-1"))

	_, err := s.Storage.GetSession(s.Ctx, "session-1")
	s.ErrorIs(err, model.ErrSessionNotFound)

	ids, err := s.Storage.ListSessionIDs(s.Ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *Suite) TestDeleteMissingSession() {
	s.NoError(s.Storage.DeleteSession(s.Ctx, "nonexistent"))
}

func (s *Suite) TestDeleteAllSessionsKeepsProfiles() {
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, NewSession("session-1")))
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, NewSession("session-2")))
	s.Require().NoError(s.Storage.SaveProfile(s.Ctx, NewProfile("profile-1", "Alice")))

	s.Require().NoError(s.Storage.DeleteAllSessions(s.Ctx))

	ids, err := s.Storage.ListSessionIDs(s.Ctx)
	s.Require().NoError(err)
	s.Empty(ids)

	_, err = s.Storage.GetProfile(s.Ctx, "profile-1")
	s.NoError(err)
}

// Active pointer tests

func (s *Suite) TestActiveSessionIDUnset() {
	id, err := s.Storage.GetActiveSessionID(s.Ctx)
	s.Require().NoError(err)
	s.Empty(id)
}

func (s *Suite) TestSetAndClearActiveSessionID() {
	s.Require().NoError(s.Storage.SetActiveSessionID(s.Ctx, "session-1"))

	id, err := s.Storage.GetActiveSessionID(s.Ctx)
	s.Require().NoError(err)
	s.Equal(model.SessionID("session-1"), id)

	s.Require().NoError(s.Storage.ClearActiveSessionID(s.Ctx))

	id, err = s.Storage.GetActiveSessionID(s.Ctx)
	s.Require().NoError(err)
	s.Empty(id)
}

func (s *Suite) TestActiveSessionIDIndependentOfRecords() {
	s.Require().NoError(s.Storage.SetActiveSessionID(s.Ctx, "never-saved"))

	id, err := s.Storage.GetActiveSessionID(s.Ctx)
	s.Require().NoError(err)
	s.Equal(model.SessionID("never-saved"), id)
}

// Profile tests

func (s *Suite) TestSaveAndGetProfile() {
	profile := NewProfile("profile-1", "Alice")
	played := baseTime.Add(time.Hour)
	profile.LastPlayedAt = &played
	profile.Stats = model.PlayerStats{GamesPlayed: 3, GamesWon: 1, TotalScore: 120, FavoriteGames: []model.GameID{"wingspan"}}

	s.Require().NoError(s.Storage.SaveProfile(s.Ctx, profile))

	retrieved, err := s.Storage.GetProfile(s.Ctx, "profile-1")
	s.Require().NoError(err)
	s.Equal(profile, retrieved)
}

func (s *Suite) TestGetProfileNotFound() {
	_, err := s.Storage.GetProfile(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestListAndDeleteProfiles() {
	s.Require().NoError(s.Storage.SaveProfile(s.Ctx, NewProfile("profile-1", "Alice")))
	s.Require().NoError(s.Storage.SaveProfile(s.Ctx, NewProfile("profile-2", "Bob")))

	ids, err := s.Storage.ListProfileIDs(s.Ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]model.ProfileID{"profile-1", "profile-2"}, ids)

	s.Require().NoError(s.Storage.DeleteProfile(s.Ctx, "profile-1"))

	ids, err = s.Storage.ListProfileIDs(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.ProfileID{"profile-2"}, ids)

	_, err = s.Storage.GetProfile(s.Ctx, "profile-1")
	s.ErrorIs(err, model.ErrProfileNotFound)
}
