package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tabletop-companion/internal/config"
	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/services/profile"
	"github.com/mcoot/tabletop-companion/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: Profiles feed session setup and receive results at the end
func (s *IntegrationSuite) TestCompleteSessionFlow() {
	s.app.MockRandom.QueueID("profile-alice", "profile-bob")
	alice, err := s.app.Profiles.Create(s.ctx, "Alice", "purple")
	s.Require().NoError(err)
	bob, err := s.app.Profiles.Create(s.ctx, "Bob", "teal")
	s.Require().NoError(err)

	// Step 1: Start Splendor from the two profiles
	s.app.MockRandom.QueueID("player-a", "player-b", "session-1")
	players := []model.Player{profile.PlayerFromProfile(alice), profile.PlayerFromProfile(bob)}
	sess, err := s.app.Engine.CreateSession(s.ctx, "splendor", players)
	s.Require().NoError(err)
	s.Equal(model.SessionID("session-1"), sess.ID)
	s.Equal("purple", sess.Players[0].Color)
	s.Equal(0, sess.Resources["player-a"]["gold"])

	// Step 2: Play a couple of turns
	eng := s.app.Engine
	s.Require().NoError(eng.UpdatePlayerScore(s.ctx, "player-a", "development-cards", 3))
	s.Require().NoError(eng.UpdatePlayerResource(s.ctx, "player-a", "ruby", 2))
	s.Require().NoError(eng.NextTurn(s.ctx))
	s.Require().NoError(eng.UpdatePlayerScore(s.ctx, "player-b", "nobles", 3))
	s.Require().NoError(eng.UpdatePlayerScore(s.ctx, "player-b", "development-cards", 2))
	s.Require().NoError(eng.NextTurn(s.ctx))

	current := eng.Current()
	s.Equal(3, current.TurnNumber)
	s.Equal(0, current.CurrentPlayerIndex)
	s.Equal(2, eng.PlayerResource("player-a", "ruby"))

	// Step 3: End with Bob winning
	s.app.MockClock.Advance(30 * time.Minute)
	s.Require().NoError(eng.EndSession(s.ctx, "player-b"))

	aliceAfter, err := s.app.Profiles.Get(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(1, aliceAfter.Stats.GamesPlayed)
	s.Equal(0, aliceAfter.Stats.GamesWon)
	s.Equal(3, aliceAfter.Stats.TotalScore)
	s.Equal([]model.GameID{"splendor"}, aliceAfter.Stats.FavoriteGames)

	bobAfter, err := s.app.Profiles.Get(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Equal(1, bobAfter.Stats.GamesWon)
	s.Equal(5, bobAfter.Stats.TotalScore)
	s.Require().NotNil(bobAfter.LastPlayedAt)

	// Step 4: The finished session shows up in the listing
	summaries, err := eng.Summaries(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal("Splendor", summaries[0].GameName)
	s.Equal(model.PlayerID("player-b"), summaries[0].Winner)
}

// Test: Deleting a profile leaves past sessions untouched
func (s *IntegrationSuite) TestDeletingProfileKeepsSessions() {
	alice, err := s.app.Profiles.Create(s.ctx, "Alice", "red")
	s.Require().NoError(err)
	players := []model.Player{profile.PlayerFromProfile(alice), {Name: "Guest"}}
	sess, err := s.app.Engine.CreateSession(s.ctx, "ticket-to-ride", players)
	s.Require().NoError(err)

	s.Require().NoError(s.app.Profiles.Delete(s.ctx, alice.ID))

	stored, err := s.app.Sessions.Load(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(alice.ID, stored.Players[0].ProfileID)
	s.Equal("Alice", stored.Players[0].Name)

	// Results for the deleted profile are dropped quietly
	s.NoError(s.app.Engine.EndSession(s.ctx, ""))
}

// Test: A restarted app over the same database resumes the session
func (s *IntegrationSuite) TestSQLiteRestartResumesSession() {
	path := filepath.Join(s.T().TempDir(), "companion.db")
	cfg := Config{StorageType: StorageTypeSQLite, SQLitePath: path, Logger: testutil.NopLogger()}

	first, err := New(s.ctx, cfg)
	s.Require().NoError(err)
	sess, err := first.Engine.CreateSession(s.ctx, "wingspan", []model.Player{{Name: "Solo"}})
	s.Require().NoError(err)
	playerID := sess.Players[0].ID
	s.Require().NoError(first.Engine.UpdatePlayerScore(s.ctx, playerID, "birds", 9))
	s.Require().NoError(first.Engine.AdvanceRound(s.ctx))
	s.Require().NoError(first.Close())

	second, err := New(s.ctx, cfg)
	s.Require().NoError(err)
	defer second.Close()

	current := second.Engine.Current()
	s.Require().NotNil(current)
	s.Equal(sess.ID, current.ID)
	s.Equal(2, current.RoundNumber)
	s.Equal(9, second.Engine.PlayerTotal(playerID))
}

func (s *IntegrationSuite) TestNewRejectsUnknownStorage() {
	_, err := New(s.ctx, Config{StorageType: "postgres"})
	s.Error(err)
}

func (s *IntegrationSuite) TestNewRequiresRedisConfig() {
	_, err := New(s.ctx, Config{StorageType: StorageTypeRedis})
	s.ErrorContains(err, "RedisConfig required")
}

func (s *IntegrationSuite) TestConfigFrom() {
	fc := ConfigFrom(config.Config{Storage: StorageTypeSQLite, SQLitePath: "games.db", CatalogDir: "extra"}, nil)
	s.Equal(StorageTypeSQLite, fc.StorageType)
	s.Equal("games.db", fc.SQLitePath)
	s.Equal("extra", fc.CatalogDir)
	s.Nil(fc.RedisConfig)

	fc = ConfigFrom(config.Config{Storage: StorageTypeRedis, SessionTTL: time.Hour}, nil)
	s.Require().NotNil(fc.RedisConfig)
	s.Equal("redis://localhost:6379", fc.RedisConfig.URL)
	s.Equal(time.Hour, fc.RedisConfig.SessionTTL)
}
