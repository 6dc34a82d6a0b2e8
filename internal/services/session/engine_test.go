package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tabletop-companion/internal/dependencies/mocks"
	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/services/catalog"
	"github.com/mcoot/tabletop-companion/internal/storage/memory"
	"github.com/mcoot/tabletop-companion/internal/testutil"
)

var startTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type EngineSuite struct {
	suite.Suite
	memory   *memory.Storage
	storage  *faultyStorage
	catalog  *catalog.Service
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	recorder *fakeRecorder
	repo     *Repository
	engine   *Engine
	ctx      context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.memory = memory.New()
	s.storage = &faultyStorage{Storage: s.memory}
	cat, err := catalog.New(testGames())
	s.Require().NoError(err)
	s.catalog = cat
	s.clock = mocks.NewMockClock(startTime)
	s.random = mocks.NewMockRandom()
	s.recorder = &fakeRecorder{}
	s.repo = NewRepository(s.storage, s.clock, testutil.NopLogger())
	s.engine = NewEngine(s.repo, s.catalog, s.recorder, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func players(names ...string) []model.Player {
	out := make([]model.Player, len(names))
	for i, name := range names {
		out[i] = model.Player{ID: model.PlayerID("p" + string(rune('1'+i))), Name: name}
	}
	return out
}

func (s *EngineSuite) startDuel(names ...string) *model.GameSession {
	s.random.QueueID("session-1")
	session, err := s.engine.CreateSession(s.ctx, "duel", players(names...))
	s.Require().NoError(err)
	return session
}

// CreateSession tests

func (s *EngineSuite) TestCreateSessionWithThreePlayers() {
	session := s.startDuel("Alice", "Bob", "Carol")

	s.Equal(model.SessionID("session-1"), session.ID)
	s.Equal(model.GameID("duel"), session.GameID)
	s.Len(session.Players, 3)
	s.Len(session.Scores, 3)
	for _, p := range session.Players {
		log, ok := session.Scores[p.ID]
		s.True(ok)
		s.Empty(log)
	}
	s.Equal(0, session.CurrentPlayerIndex)
	s.Equal(1, session.TurnNumber)
	s.Equal(1, session.RoundNumber)
	s.Equal(startTime, session.StartedAt)
	s.Equal(startTime, session.LastUpdatedAt)
	s.Nil(session.CompletedAt)
	s.Empty(session.Winner)
}

func (s *EngineSuite) TestCreateSessionSeedsResources() {
	session := s.startDuel("Alice", "Bob")

	s.Equal(map[string]int{"gold": 10, "wood": 0}, session.Resources["p1"])
	s.Equal(map[string]int{"gold": 10, "wood": 0}, session.Resources["p2"])
}

func (s *EngineSuite) TestCreateSessionWithoutResourceSchema() {
	session, err := s.engine.CreateSession(s.ctx, "solo-race", players("Alice"))
	s.Require().NoError(err)
	s.Nil(session.Resources)

	s.Require().NoError(s.engine.UpdatePlayerResource(s.ctx, "p1", "fuel", 3))
	s.Nil(s.engine.Current().Resources)
	s.Equal(0, s.engine.PlayerResource("p1", "fuel"))
}

func (s *EngineSuite) TestCreateSessionPersistsAndActivates() {
	session := s.startDuel("Alice", "Bob")

	stored, err := s.repo.Load(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session, stored)

	active, err := s.repo.ActiveID(s.ctx)
	s.Require().NoError(err)
	s.Equal(session.ID, active)

	s.Equal(session, s.engine.Current())
}

func (s *EngineSuite) TestCreateSessionUnknownGame() {
	_, err := s.engine.CreateSession(s.ctx, "chess", players("Alice", "Bob"))
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *EngineSuite) TestCreateSessionTooManyPlayers() {
	_, err := s.engine.CreateSession(s.ctx, "duel", players("A", "B", "C", "D", "E"))
	s.ErrorIs(err, model.ErrInvalidPlayerCount)

	ids, err := s.memory.ListSessionIDs(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids, "nothing persisted")
	s.Nil(s.engine.Current())
}

func (s *EngineSuite) TestCreateSessionTooFewPlayers() {
	_, err := s.engine.CreateSession(s.ctx, "duel", players("Alice"))
	s.ErrorIs(err, model.ErrInvalidPlayerCount)
}

func (s *EngineSuite) TestCreateSessionRejectsBlankName() {
	_, err := s.engine.CreateSession(s.ctx, "duel", players("Alice", "   "))
	s.ErrorIs(err, model.ErrInvalidPlayer)
}

func (s *EngineSuite) TestCreateSessionRejectsDuplicateIDs() {
	ps := []model.Player{{ID: "p1", Name: "Alice"}, {ID: "p1", Name: "Bob"}}

	_, err := s.engine.CreateSession(s.ctx, "duel", ps)
	s.ErrorIs(err, model.ErrDuplicatePlayer)
}

func (s *EngineSuite) TestCreateSessionFillsIDsAndColours() {
	s.random.QueueID("player-a", "player-b", "session-9")
	ps := []model.Player{{Name: " Alice "}, {Name: "Bob", Color: "teal"}}

	session, err := s.engine.CreateSession(s.ctx, "duel", ps)
	s.Require().NoError(err)

	s.Equal(model.SessionID("session-9"), session.ID)
	s.Equal(model.Player{ID: "player-a", Name: "Alice", Color: "red"}, session.Players[0])
	s.Equal(model.Player{ID: "player-b", Name: "Bob", Color: "teal"}, session.Players[1])
}

func (s *EngineSuite) TestCreateSessionAllowsSharedColours() {
	ps := []model.Player{{ID: "p1", Name: "Alice", Color: "red"}, {ID: "p2", Name: "Bob", Color: "red"}}

	_, err := s.engine.CreateSession(s.ctx, "duel", ps)
	s.NoError(err)
}

// Scoring tests

func (s *EngineSuite) TestScoreAndUndo() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", 5))
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", 3))
	s.Equal(8, s.engine.PlayerTotal("p1"))

	s.Require().NoError(s.engine.UndoPlayerScore(s.ctx, "p1", 0))
	s.Equal(3, s.engine.PlayerTotal("p1"))

	history := s.engine.ScoreHistory("p1")
	s.Require().Len(history, 1)
	s.Equal(3, history[0].Points)
	s.Equal("main", history[0].Category)
}

func (s *EngineSuite) TestUndoRemovesByPosition() {
	s.startDuel("Alice", "Bob")
	for _, pts := range []int{4, 4, 4} {
		s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", pts))
		s.clock.Advance(time.Second)
	}

	s.Require().NoError(s.engine.UndoPlayerScore(s.ctx, "p1", 1))

	history := s.engine.ScoreHistory("p1")
	s.Require().Len(history, 2)
	s.Equal(startTime, history[0].Timestamp)
	s.Equal(startTime.Add(2*time.Second), history[1].Timestamp)
	s.Equal(8, s.engine.PlayerTotal("p1"))
}

func (s *EngineSuite) TestUndoOutOfRangeIsNoOp() {
	s.startDuel("Alice", "Bob")
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", 5))
	saves := s.storage.saveCount()

	s.Require().NoError(s.engine.UndoPlayerScore(s.ctx, "p1", 3))
	s.Require().NoError(s.engine.UndoPlayerScore(s.ctx, "p1", -1))
	s.Require().NoError(s.engine.UndoPlayerScore(s.ctx, "ghost", 0))

	s.Equal(5, s.engine.PlayerTotal("p1"))
	s.Equal(saves, s.storage.saveCount(), "no-ops do not write")
}

func (s *EngineSuite) TestScoreForUnknownPlayerKeepsKeySet() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "ghost", "main", 5))

	current := s.engine.Current()
	s.Len(current.Scores, 2)
	s.NotContains(current.Scores, model.PlayerID("ghost"))
}

func (s *EngineSuite) TestPartialScoreUpdateKeepsKeySet() {
	s.startDuel("Alice", "Bob", "Carol")
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p2", "main", 6))

	updated, err := s.engine.UpdateSession(s.ctx, "session-1", model.SessionUpdate{
		Scores: model.PlayerScores{"p1": {{Points: 4}}},
	})
	s.Require().NoError(err)
	s.Len(updated.Scores, len(updated.Players))
	s.Equal(4, s.engine.PlayerTotal("p1"))
	s.Equal(6, s.engine.PlayerTotal("p2"))

	_, err = s.engine.UpdateSession(s.ctx, "session-1", model.SessionUpdate{Scores: model.PlayerScores{}})
	s.Require().NoError(err)

	stored, err := s.repo.Load(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Len(stored.Scores, 3)
	s.Len(s.engine.Current().Scores, 3)
}

func (s *EngineSuite) TestStandings() {
	s.startDuel("Alice", "Bob", "Carol")
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p2", "main", 7))
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p3", "main", 3))

	standings := s.engine.Standings()
	s.Require().Len(standings, 3)
	s.Equal(model.PlayerID("p2"), standings[0].Player.ID)
	s.Equal(model.PlayerID("p3"), standings[1].Player.ID)
	s.Equal(model.PlayerID("p1"), standings[2].Player.ID)
}

// Turn tests

func (s *EngineSuite) TestNextPlayerSequence() {
	s.startDuel("Alice", "Bob", "Carol")

	var seen []int
	for range 3 {
		s.Require().NoError(s.engine.NextPlayer(s.ctx))
		seen = append(seen, s.engine.Current().CurrentPlayerIndex)
	}
	s.Equal([]int{1, 2, 0}, seen)
}

func (s *EngineSuite) TestNextPlayerWrapAroundLaw() {
	for n := 2; n <= 4; n++ {
		names := []string{"A", "B", "C", "D"}[:n]
		s.startDuel(names...)
		s.Require().NoError(s.engine.SetCurrentPlayer(s.ctx, n-1))

		for range n {
			s.Require().NoError(s.engine.NextPlayer(s.ctx))
			idx := s.engine.Current().CurrentPlayerIndex
			s.True(idx >= 0 && idx < n)
		}
		s.Equal(n-1, s.engine.Current().CurrentPlayerIndex, "players=%d", n)
	}
}

func (s *EngineSuite) TestAdvanceAndPreviousTurn() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.AdvanceTurn(s.ctx))
	s.Require().NoError(s.engine.AdvanceTurn(s.ctx))
	s.Equal(3, s.engine.Current().TurnNumber)

	s.Require().NoError(s.engine.PreviousTurn(s.ctx))
	s.Equal(2, s.engine.Current().TurnNumber)
}

func (s *EngineSuite) TestPreviousTurnFloorsAtOne() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.PreviousTurn(s.ctx))
	s.Require().NoError(s.engine.PreviousTurn(s.ctx))

	s.Equal(1, s.engine.Current().TurnNumber)
}

func (s *EngineSuite) TestNextTurnIsSingleWrite() {
	s.startDuel("Alice", "Bob")
	saves := s.storage.saveCount()

	s.Require().NoError(s.engine.NextTurn(s.ctx))

	current := s.engine.Current()
	s.Equal(2, current.TurnNumber)
	s.Equal(1, current.CurrentPlayerIndex)
	s.Equal(saves+1, s.storage.saveCount())
}

func (s *EngineSuite) TestAdvanceRound() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.AdvanceRound(s.ctx))

	s.Equal(2, s.engine.Current().RoundNumber)
}

func (s *EngineSuite) TestSetCurrentPlayer() {
	s.startDuel("Alice", "Bob", "Carol")

	s.Require().NoError(s.engine.SetCurrentPlayer(s.ctx, 2))
	s.Equal(2, s.engine.Current().CurrentPlayerIndex)
	s.Equal("Carol", s.engine.Current().CurrentPlayer().Name)
}

func (s *EngineSuite) TestSetCurrentPlayerOutOfRange() {
	s.startDuel("Alice", "Bob")

	s.ErrorIs(s.engine.SetCurrentPlayer(s.ctx, 2), model.ErrInvalidPlayerIndex)
	s.ErrorIs(s.engine.SetCurrentPlayer(s.ctx, -1), model.ErrInvalidPlayerIndex)
	s.Equal(0, s.engine.Current().CurrentPlayerIndex)
}

// Resource and phase tests

func (s *EngineSuite) TestUpdatePlayerResourceOverwrites() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.UpdatePlayerResource(s.ctx, "p1", "gold", 7))

	s.Equal(7, s.engine.PlayerResource("p1", "gold"))
	s.Equal(10, s.engine.PlayerResource("p2", "gold"))
	s.Equal(map[string]int{"gold": 7, "wood": 0}, s.engine.PlayerResources("p1"))
}

func (s *EngineSuite) TestUpdatePlayerResourceUnknownPlayer() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.UpdatePlayerResource(s.ctx, "ghost", "gold", 7))

	s.Len(s.engine.Current().Resources, 2)
}

func (s *EngineSuite) TestSetPhaseIsUnchecked() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.SetPhase(s.ctx, "anything"))

	s.Equal("anything", s.engine.Current().CurrentPhase)
}

func (s *EngineSuite) TestNextAndPreviousPhaseFollowOrder() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.NextPhase(s.ctx))
	s.Equal("setup", s.engine.Current().CurrentPhase)
	s.Require().NoError(s.engine.NextPhase(s.ctx))
	s.Equal("harvest", s.engine.Current().CurrentPhase)
	s.Require().NoError(s.engine.NextPhase(s.ctx))
	s.Require().NoError(s.engine.NextPhase(s.ctx))
	s.Equal("scoring", s.engine.Current().CurrentPhase, "stays on the last phase")

	s.Require().NoError(s.engine.PreviousPhase(s.ctx))
	s.Equal("harvest", s.engine.Current().CurrentPhase)
}

func (s *EngineSuite) TestNextPhaseWithoutPhases() {
	_, err := s.engine.CreateSession(s.ctx, "solo-race", players("Alice"))
	s.Require().NoError(err)

	s.Require().NoError(s.engine.NextPhase(s.ctx))
	s.Empty(s.engine.Current().CurrentPhase)
}

func (s *EngineSuite) TestSetNotes() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.SetNotes(s.ctx, "Bob owes a rematch"))

	s.Equal("Bob owes a rematch", s.engine.Current().Notes)
}

func (s *EngineSuite) TestMutationRefreshesLastUpdatedAt() {
	s.startDuel("Alice", "Bob")
	s.clock.Advance(5 * time.Minute)

	s.Require().NoError(s.engine.AdvanceTurn(s.ctx))

	s.Equal(startTime.Add(5*time.Minute), s.engine.Current().LastUpdatedAt)
	s.Equal(startTime, s.engine.Current().StartedAt)
}

// End of session tests

func (s *EngineSuite) TestEndSession() {
	s.startDuel("Alice", "Bob")
	s.clock.Advance(time.Hour)

	s.Require().NoError(s.engine.EndSession(s.ctx, "p2"))

	current := s.engine.Current()
	s.Require().NotNil(current.CompletedAt)
	s.Equal(startTime.Add(time.Hour), *current.CompletedAt)
	s.Equal(model.PlayerID("p2"), current.Winner)

	stored, err := s.repo.Load(s.ctx, current.ID)
	s.Require().NoError(err)
	s.True(stored.IsCompleted())
}

func (s *EngineSuite) TestEndSessionWithoutWinner() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.EndSession(s.ctx, ""))

	s.True(s.engine.Current().IsCompleted())
	s.Empty(s.engine.Current().Winner)
}

func (s *EngineSuite) TestEndSessionIsIdempotent() {
	s.startDuel("Alice", "Bob")
	s.Require().NoError(s.engine.EndSession(s.ctx, "p1"))
	first := s.engine.Current()

	s.clock.Advance(time.Hour)
	s.Require().NoError(s.engine.EndSession(s.ctx, "p2"))

	second := s.engine.Current()
	s.Equal(*first.CompletedAt, *second.CompletedAt)
	s.Equal(model.PlayerID("p1"), second.Winner)
	s.Len(s.recorder.results, 0)
}

func (s *EngineSuite) TestEndSessionUnknownWinner() {
	s.startDuel("Alice", "Bob")

	s.ErrorIs(s.engine.EndSession(s.ctx, "ghost"), model.ErrInvalidPlayer)
	s.False(s.engine.Current().IsCompleted())
}

func (s *EngineSuite) TestCompletedSessionIgnoresMutations() {
	s.startDuel("Alice", "Bob")
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", 5))
	s.Require().NoError(s.engine.EndSession(s.ctx, "p1"))
	saves := s.storage.saveCount()

	s.Require().NoError(s.engine.AdvanceTurn(s.ctx))
	s.Require().NoError(s.engine.NextPlayer(s.ctx))
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", 5))
	s.Require().NoError(s.engine.SetPhase(s.ctx, "harvest"))

	current := s.engine.Current()
	s.Equal(1, current.TurnNumber)
	s.Equal(0, current.CurrentPlayerIndex)
	s.Equal(5, s.engine.PlayerTotal("p1"))
	s.Empty(current.CurrentPhase)
	s.Equal(saves, s.storage.saveCount())
}

func (s *EngineSuite) TestEndSessionRecordsLinkedProfiles() {
	ps := []model.Player{
		{ID: "p1", Name: "Alice", ProfileID: "profile-alice"},
		{ID: "p2", Name: "Bob"},
		{ID: "p3", Name: "Carol", ProfileID: "profile-carol"},
	}
	_, err := s.engine.CreateSession(s.ctx, "duel", ps)
	s.Require().NoError(err)
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", 12))
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p3", "main", 9))

	s.Require().NoError(s.engine.EndSession(s.ctx, "p1"))

	s.Equal([]recordedResult{
		{profileID: "profile-alice", gameID: "duel", score: 12, won: true},
		{profileID: "profile-carol", gameID: "duel", score: 9, won: false},
	}, s.recorder.results)
}

func (s *EngineSuite) TestRecorderFailureDoesNotFailEnd() {
	s.recorder.err = errDiskFull
	ps := []model.Player{{ID: "p1", Name: "Alice", ProfileID: "profile-alice"}, {ID: "p2", Name: "Bob"}}
	_, err := s.engine.CreateSession(s.ctx, "duel", ps)
	s.Require().NoError(err)

	s.NoError(s.engine.EndSession(s.ctx, "p2"))
	s.True(s.engine.Current().IsCompleted())
}

// No current session tests

func (s *EngineSuite) TestOperationsWithoutCurrentSessionAreNoOps() {
	s.NoError(s.engine.NextPlayer(s.ctx))
	s.NoError(s.engine.AdvanceTurn(s.ctx))
	s.NoError(s.engine.PreviousTurn(s.ctx))
	s.NoError(s.engine.NextTurn(s.ctx))
	s.NoError(s.engine.AdvanceRound(s.ctx))
	s.NoError(s.engine.SetCurrentPlayer(s.ctx, 5))
	s.NoError(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", 5))
	s.NoError(s.engine.UndoPlayerScore(s.ctx, "p1", 0))
	s.NoError(s.engine.UpdatePlayerResource(s.ctx, "p1", "gold", 1))
	s.NoError(s.engine.SetPhase(s.ctx, "setup"))
	s.NoError(s.engine.NextPhase(s.ctx))
	s.NoError(s.engine.SetNotes(s.ctx, "hi"))
	s.NoError(s.engine.EndSession(s.ctx, ""))

	s.Nil(s.engine.Current())
	s.Equal(0, s.engine.PlayerTotal("p1"))
	s.Nil(s.engine.ScoreHistory("p1"))
	s.Nil(s.engine.Standings())
	s.Equal(0, s.engine.PlayerResource("p1", "gold"))
	s.Empty(s.engine.PlayerResources("p1"))
	s.Equal(0, s.storage.saveCount())
}

// Two-phase commit tests

func (s *EngineSuite) TestFailedWriteKeepsCommittedState() {
	s.startDuel("Alice", "Bob")
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", 5))
	before := s.engine.Current()

	s.storage.setFailSaves(true)
	s.ErrorIs(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", 3), errDiskFull)
	s.ErrorIs(s.engine.NextTurn(s.ctx), errDiskFull)
	s.ErrorIs(s.engine.EndSession(s.ctx, "p1"), errDiskFull)

	s.Equal(before, s.engine.Current())
	stored, err := s.repo.Load(s.ctx, before.ID)
	s.Require().NoError(err)
	s.Equal(before, stored)
	s.Empty(s.recorder.results)

	s.storage.setFailSaves(false)
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", 3))
	s.Equal(8, s.engine.PlayerTotal("p1"))
}

func (s *EngineSuite) TestFailedCreateLeavesNoCurrentSession() {
	s.storage.setFailSaves(true)

	_, err := s.engine.CreateSession(s.ctx, "duel", players("Alice", "Bob"))
	s.ErrorIs(err, errDiskFull)
	s.Nil(s.engine.Current())
}

func (s *EngineSuite) TestCurrentReturnsCopy() {
	s.startDuel("Alice", "Bob")

	snapshot := s.engine.Current()
	snapshot.TurnNumber = 99
	snapshot.Scores["p1"] = append(snapshot.Scores["p1"], model.ScoreEntry{Points: 50})

	s.Equal(1, s.engine.Current().TurnNumber)
	s.Equal(0, s.engine.PlayerTotal("p1"))
}

// Current session management tests

func (s *EngineSuite) TestDeleteActiveSession() {
	session := s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.DeleteSession(s.ctx, session.ID))

	active, err := s.repo.ActiveID(s.ctx)
	s.Require().NoError(err)
	s.Empty(active)
	s.Nil(s.engine.Current())

	s.Require().NoError(s.engine.SetCurrentSession(s.ctx, session.ID))
	s.Nil(s.engine.Current())
}

func (s *EngineSuite) TestSetCurrentSession() {
	first := s.startDuel("Alice", "Bob")
	s.random.QueueID("session-2")
	second, err := s.engine.CreateSession(s.ctx, "duel", players("Carol", "Dan"))
	s.Require().NoError(err)
	s.Equal(second.ID, s.engine.Current().ID)

	s.Require().NoError(s.engine.SetCurrentSession(s.ctx, first.ID))

	s.Equal(first.ID, s.engine.Current().ID)
	active, err := s.repo.ActiveID(s.ctx)
	s.Require().NoError(err)
	s.Equal(first.ID, active)
}

func (s *EngineSuite) TestSetCurrentSessionCorruptRecord() {
	s.startDuel("Alice", "Bob")
	s.memory.PutRawSession("broken", []byte(`{"id":"broken"}`))

	s.Require().NoError(s.engine.SetCurrentSession(s.ctx, "broken"))

	s.Nil(s.engine.Current())
}

func (s *EngineSuite) TestClearCurrentSession() {
	session := s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.ClearCurrentSession(s.ctx))

	s.Nil(s.engine.Current())
	active, err := s.repo.ActiveID(s.ctx)
	s.Require().NoError(err)
	s.Empty(active)
	_, err = s.repo.Load(s.ctx, session.ID)
	s.NoError(err)
}

func (s *EngineSuite) TestRestoreFromActivePointer() {
	s.startDuel("Alice", "Bob")
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p2", "main", 4))
	want := s.engine.Current()

	restarted := NewEngine(s.repo, s.catalog, s.recorder, s.clock, s.random, testutil.NopLogger())
	s.Require().NoError(restarted.Restore(s.ctx))

	s.Equal(want, restarted.Current())
	s.Equal(4, restarted.PlayerTotal("p2"))
}

func (s *EngineSuite) TestRestoreWithoutActivePointer() {
	s.Require().NoError(s.engine.Restore(s.ctx))
	s.Nil(s.engine.Current())
}

// UpdateSession tests

func (s *EngineSuite) TestUpdateSessionMergesCurrent() {
	s.startDuel("Alice", "Bob")
	s.clock.Advance(time.Minute)

	updated, err := s.engine.UpdateSession(s.ctx, "session-1", model.SessionUpdate{
		TurnNumber:         intPtr(4),
		CurrentPlayerIndex: intPtr(1),
		Resources:          model.PlayerResources{"p1": {"gold": 3}, "p2": {"gold": 2}},
	})
	s.Require().NoError(err)

	s.Equal(4, updated.TurnNumber)
	s.Equal(startTime.Add(time.Minute), updated.LastUpdatedAt)
	s.Equal(updated, s.engine.Current())
	s.Equal(3, s.engine.PlayerResource("p1", "gold"))
}

func (s *EngineSuite) TestUpdateSessionNotCurrent() {
	first := s.startDuel("Alice", "Bob")
	s.random.QueueID("session-2")
	_, err := s.engine.CreateSession(s.ctx, "duel", players("Carol", "Dan"))
	s.Require().NoError(err)

	notes := "first game"
	_, err = s.engine.UpdateSession(s.ctx, first.ID, model.SessionUpdate{Notes: &notes})
	s.Require().NoError(err)

	stored, err := s.repo.Load(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("first game", stored.Notes)
	s.Empty(s.engine.Current().Notes)
}

func (s *EngineSuite) TestUpdateSessionRejectsInvalidFields() {
	s.startDuel("Alice", "Bob")

	_, err := s.engine.UpdateSession(s.ctx, "session-1", model.SessionUpdate{CurrentPlayerIndex: intPtr(2)})
	s.ErrorIs(err, model.ErrInvalidPlayerIndex)

	_, err = s.engine.UpdateSession(s.ctx, "session-1", model.SessionUpdate{TurnNumber: intPtr(0)})
	s.ErrorIs(err, model.ErrInvalidUpdate)

	_, err = s.engine.UpdateSession(s.ctx, "session-1", model.SessionUpdate{
		Scores: model.PlayerScores{"ghost": {}},
	})
	s.ErrorIs(err, model.ErrInvalidUpdate)

	s.Equal(1, s.engine.Current().TurnNumber)
}

func (s *EngineSuite) TestUpdateSessionMergesResourceCounters() {
	s.startDuel("Alice", "Bob")

	_, err := s.engine.UpdateSession(s.ctx, "session-1", model.SessionUpdate{
		Resources: model.PlayerResources{"p1": {"wood": 2}},
	})
	s.Require().NoError(err)

	s.Equal(map[string]int{"gold": 10, "wood": 2}, s.engine.PlayerResources("p1"))
	s.Equal(map[string]int{"gold": 10, "wood": 0}, s.engine.PlayerResources("p2"))
}

func (s *EngineSuite) TestUpdateSessionRejectsResourcesOutsideSchema() {
	s.startDuel("Alice", "Bob")
	_, err := s.engine.UpdateSession(s.ctx, "session-1", model.SessionUpdate{
		Resources: model.PlayerResources{"p1": {"stone": 1}},
	})
	s.ErrorIs(err, model.ErrInvalidUpdate)

	s.random.QueueID("session-2")
	_, err = s.engine.CreateSession(s.ctx, "solo-race", players("Carol"))
	s.Require().NoError(err)
	_, err = s.engine.UpdateSession(s.ctx, "session-2", model.SessionUpdate{
		Resources: model.PlayerResources{"p1": {"fuel": 3}},
	})
	s.ErrorIs(err, model.ErrInvalidUpdate)

	s.Require().NoError(s.engine.UpdatePlayerResource(s.ctx, "p1", "fuel", 3))
	s.Nil(s.engine.Current().Resources)
}

func (s *EngineSuite) TestUpdateSessionUnknownID() {
	_, err := s.engine.UpdateSession(s.ctx, "missing", model.SessionUpdate{})
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Listing tests

func (s *EngineSuite) TestSummaries() {
	s.startDuel("Alice", "Bob")
	s.clock.Advance(time.Minute)
	s.random.QueueID("session-2")
	_, err := s.engine.CreateSession(s.ctx, "solo-race", players("Carol"))
	s.Require().NoError(err)
	s.Require().NoError(s.engine.EndSession(s.ctx, "p1"))

	summaries, err := s.engine.Summaries(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)

	s.Equal(model.SessionID("session-2"), summaries[0].ID)
	s.Equal("Solo Race", summaries[0].GameName)
	s.Equal(1, summaries[0].PlayerCount)
	s.NotNil(summaries[0].CompletedAt)
	s.Equal(model.PlayerID("p1"), summaries[0].Winner)

	s.Equal(model.SessionID("session-1"), summaries[1].ID)
	s.Equal("Duel of Merchants", summaries[1].GameName)
	s.Nil(summaries[1].CompletedAt)
}

func (s *EngineSuite) TestDeleteAllSessions() {
	s.startDuel("Alice", "Bob")

	s.Require().NoError(s.engine.DeleteAllSessions(s.ctx))

	sessions, err := s.engine.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
	s.Nil(s.engine.Current())
}

// Commit hook tests

type commit struct {
	prev, next *model.GameSession
}

func (s *EngineSuite) recordCommits() *[]commit {
	var commits []commit
	s.engine.OnCommit(func(prev, next *model.GameSession) {
		commits = append(commits, commit{prev: prev, next: next})
	})
	return &commits
}

func (s *EngineSuite) TestCommitHookSeesEachWrite() {
	commits := s.recordCommits()
	s.startDuel("Alice", "Bob")
	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "p1", "main", 3))

	s.Require().Len(*commits, 2)
	s.Nil((*commits)[0].prev)
	s.Equal(model.SessionID("session-1"), (*commits)[0].next.ID)
	s.Equal(0, (*commits)[1].prev.PlayerTotal("p1"))
	s.Equal(3, (*commits)[1].next.PlayerTotal("p1"))
}

func (s *EngineSuite) TestCommitHookSkipsNoOps() {
	s.startDuel("Alice", "Bob")
	commits := s.recordCommits()

	s.Require().NoError(s.engine.UpdatePlayerScore(s.ctx, "ghost", "main", 3))
	s.Require().NoError(s.engine.UndoPlayerScore(s.ctx, "p1", 4))
	s.Require().NoError(s.engine.EndSession(s.ctx, "p1"))
	s.Require().NoError(s.engine.NextTurn(s.ctx))
	s.Require().NoError(s.engine.EndSession(s.ctx, "p2"))

	s.Require().Len(*commits, 1, "only the first end is written")
	s.False((*commits)[0].prev.IsCompleted())
	s.True((*commits)[0].next.IsCompleted())
}

func (s *EngineSuite) TestCommitHookSkipsFailedWrites() {
	s.startDuel("Alice", "Bob")
	commits := s.recordCommits()
	s.storage.setFailSaves(true)

	s.Error(s.engine.NextTurn(s.ctx))
	s.Empty(*commits)
}
