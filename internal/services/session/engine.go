package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/tabletop-companion/internal/dependencies/clock"
	"github.com/mcoot/tabletop-companion/internal/dependencies/random"
	"github.com/mcoot/tabletop-companion/internal/model"
)

// GameCatalog resolves game definitions
type GameCatalog interface {
	Get(id model.GameID) (*model.GameDefinition, error)
}

// ResultRecorder receives each linked player's result when a session ends
type ResultRecorder interface {
	RecordGameResult(ctx context.Context, id model.ProfileID, gameID model.GameID, score int, won bool) error
}

// Engine holds the current session and applies mutations to it.
//
// Every mutation is staged on a copy of the current session, written
// through the repository, and only then committed as current. A failed
// write returns the error and leaves the current session unchanged.
//
// Operations on the current session are no-ops when there is none, or
// when it has already ended.
type Engine struct {
	repo     *Repository
	catalog  GameCatalog
	recorder ResultRecorder
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	mu       sync.Mutex
	current  *model.GameSession
	onCommit []CommitFunc
}

// CommitFunc observes a committed change to a session. It runs while the
// engine is locked, so it must not call back into the engine. prev and
// next are copies.
type CommitFunc func(prev, next *model.GameSession)

// OnCommit registers fn to run after every change the engine writes
// through to storage. No-op operations do not trigger it.
func (e *Engine) OnCommit(fn CommitFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onCommit = append(e.onCommit, fn)
}

func (e *Engine) committed(prev, next *model.GameSession) {
	for _, fn := range e.onCommit {
		fn(prev.Clone(), next.Clone())
	}
}

// NewEngine creates a new Engine. recorder may be nil.
func NewEngine(
	repo *Repository,
	catalog GameCatalog,
	recorder ResultRecorder,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		repo:     repo,
		catalog:  catalog,
		recorder: recorder,
		clock:    clock,
		random:   random,
		logger:   logger,
	}
}

// CreateSession starts a new session for gameID with the given players,
// persists it, marks it active and makes it current. Player ids are
// generated when blank and colours default by seat.
func (e *Engine) CreateSession(ctx context.Context, gameID model.GameID, players []model.Player) (*model.GameSession, error) {
	game, err := e.catalog.Get(gameID)
	if err != nil {
		return nil, err
	}
	if !game.SupportsPlayerCount(len(players)) {
		return nil, fmt.Errorf("%w: %s takes %d-%d players, got %d",
			model.ErrInvalidPlayerCount, game.Name, game.PlayerCount.Min, game.PlayerCount.Max, len(players))
	}

	seated, err := e.seatPlayers(players)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	s := &model.GameSession{
		ID:            model.SessionID(e.random.ID("session")),
		GameID:        game.ID,
		Players:       seated,
		Scores:        make(model.PlayerScores, len(seated)),
		TurnNumber:    1,
		RoundNumber:   1,
		StartedAt:     now,
		LastUpdatedAt: now,
	}
	for _, p := range seated {
		s.Scores[p.ID] = []model.ScoreEntry{}
	}
	if game.HasResources() {
		s.Resources = make(model.PlayerResources, len(seated))
		for _, p := range seated {
			s.Resources[p.ID] = game.StartingResources()
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.repo.Save(ctx, s); err != nil {
		return nil, err
	}
	if err := e.repo.SetActive(ctx, s.ID); err != nil {
		return nil, err
	}
	e.current = s
	e.committed(nil, s)

	e.logger.Info("session created",
		slog.String("session_id", string(s.ID)),
		slog.String("game_id", string(game.ID)),
		slog.Int("player_count", len(seated)),
	)
	return s.Clone(), nil
}

func (e *Engine) seatPlayers(players []model.Player) ([]model.Player, error) {
	seated := make([]model.Player, len(players))
	ids := make(map[model.PlayerID]struct{}, len(players))
	colors := make(map[string]struct{}, len(players))

	for i, p := range players {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("%w: player %d has no name", model.ErrInvalidPlayer, i+1)
		}
		if p.ID == "" {
			p.ID = model.PlayerID(e.random.ID("player"))
		}
		if _, dup := ids[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", model.ErrDuplicatePlayer, p.ID)
		}
		ids[p.ID] = struct{}{}

		if p.Color == "" {
			p.Color = string(model.DefaultColor(i))
		}
		if _, dup := colors[p.Color]; dup {
			e.logger.Warn("players share a colour",
				slog.String("player", p.Name),
				slog.String("color", p.Color),
			)
		}
		colors[p.Color] = struct{}{}

		seated[i] = p
	}
	return seated, nil
}

// SetCurrentSession loads id as the current session and marks it active.
// An id that does not resolve, or resolves to a corrupt record, leaves
// no current session without error.
func (e *Engine) SetCurrentSession(ctx context.Context, id model.SessionID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.repo.Load(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrSessionNotFound), errors.Is(err, model.ErrCorruptSession):
		e.logger.Warn("session unavailable",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		e.current = nil
		return nil
	default:
		return err
	}

	if err := e.repo.SetActive(ctx, id); err != nil {
		return err
	}
	e.current = s
	return nil
}

// ClearCurrentSession drops the current session and the active pointer
func (e *Engine) ClearCurrentSession(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.repo.ClearActive(ctx); err != nil {
		return err
	}
	e.current = nil
	return nil
}

// Restore rehydrates the current session from the active pointer
func (e *Engine) Restore(ctx context.Context) error {
	id, err := e.repo.ActiveID(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	if err := e.SetCurrentSession(ctx, id); err != nil {
		return err
	}
	if s := e.Current(); s != nil {
		e.logger.Info("session restored", slog.String("session_id", string(s.ID)))
	}
	return nil
}

// Current returns a copy of the current session, or nil
func (e *Engine) Current() *model.GameSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.Clone()
}

// UpdateSession merges update into the session with the given id and
// persists it. When id is the current session, current is updated too.
// This works on completed sessions as well.
func (e *Engine) UpdateSession(ctx context.Context, id model.SessionID, update model.SessionUpdate) (*model.GameSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var prev *model.GameSession
	isCurrent := e.current != nil && e.current.ID == id
	if isCurrent {
		prev = e.current
	} else {
		loaded, err := e.repo.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		prev = loaded
	}
	staged := prev.Clone()

	if err := checkUpdate(staged, update); err != nil {
		return nil, err
	}
	update.Apply(staged)

	if err := e.repo.Save(ctx, staged); err != nil {
		return nil, err
	}
	if isCurrent {
		e.current = staged
	}
	e.committed(prev, staged)
	return staged.Clone(), nil
}

func checkUpdate(s *model.GameSession, u model.SessionUpdate) error {
	if u.CurrentPlayerIndex != nil && (*u.CurrentPlayerIndex < 0 || *u.CurrentPlayerIndex >= len(s.Players)) {
		return model.ErrInvalidPlayerIndex
	}
	if u.TurnNumber != nil && *u.TurnNumber < 1 {
		return fmt.Errorf("%w: turn number must be at least 1", model.ErrInvalidUpdate)
	}
	if u.RoundNumber != nil && *u.RoundNumber < 1 {
		return fmt.Errorf("%w: round number must be at least 1", model.ErrInvalidUpdate)
	}
	if u.Winner != nil && *u.Winner != "" && !s.HasPlayer(*u.Winner) {
		return fmt.Errorf("%w: winner %s is not in the session", model.ErrInvalidPlayer, *u.Winner)
	}
	for id := range u.Scores {
		if !s.HasPlayer(id) {
			return fmt.Errorf("%w: scores for unknown player %s", model.ErrInvalidUpdate, id)
		}
	}
	if u.Resources != nil && s.Resources == nil {
		return fmt.Errorf("%w: session tracks no resources", model.ErrInvalidUpdate)
	}
	for id, values := range u.Resources {
		if !s.HasPlayer(id) {
			return fmt.Errorf("%w: resources for unknown player %s", model.ErrInvalidUpdate, id)
		}
		for resourceID := range values {
			if _, ok := s.Resources[id][resourceID]; !ok {
				return fmt.Errorf("%w: unknown resource %s", model.ErrInvalidUpdate, resourceID)
			}
		}
	}
	return nil
}

// mutate stages fn on a copy of the current session and commits it after
// a successful write. fn reports whether it changed anything; unchanged
// sessions are not written.
func (e *Engine) mutate(ctx context.Context, op string, fn func(s *model.GameSession) (bool, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return nil
	}
	if e.current.IsCompleted() {
		e.logger.Debug("ignoring mutation of completed session",
			slog.String("session_id", string(e.current.ID)),
			slog.String("op", op),
		)
		return nil
	}

	staged := e.current.Clone()
	changed, err := fn(staged)
	if err != nil || !changed {
		return err
	}
	if err := e.repo.Save(ctx, staged); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	prev := e.current
	e.current = staged
	e.committed(prev, staged)
	return nil
}

// NextPlayer passes play to the next seat, wrapping after the last
func (e *Engine) NextPlayer(ctx context.Context) error {
	return e.mutate(ctx, "next player", func(s *model.GameSession) (bool, error) {
		s.CurrentPlayerIndex = (s.CurrentPlayerIndex + 1) % len(s.Players)
		return true, nil
	})
}

// AdvanceTurn increments the turn number
func (e *Engine) AdvanceTurn(ctx context.Context) error {
	return e.mutate(ctx, "advance turn", func(s *model.GameSession) (bool, error) {
		s.TurnNumber++
		return true, nil
	})
}

// PreviousTurn decrements the turn number, never below 1. Scores recorded
// during the undone turn are kept.
func (e *Engine) PreviousTurn(ctx context.Context) error {
	return e.mutate(ctx, "previous turn", func(s *model.GameSession) (bool, error) {
		if s.TurnNumber <= 1 {
			return false, nil
		}
		s.TurnNumber--
		return true, nil
	})
}

// NextTurn advances the turn and passes play to the next seat in one write
func (e *Engine) NextTurn(ctx context.Context) error {
	return e.mutate(ctx, "next turn", func(s *model.GameSession) (bool, error) {
		s.TurnNumber++
		s.CurrentPlayerIndex = (s.CurrentPlayerIndex + 1) % len(s.Players)
		return true, nil
	})
}

// AdvanceRound increments the round number
func (e *Engine) AdvanceRound(ctx context.Context) error {
	return e.mutate(ctx, "advance round", func(s *model.GameSession) (bool, error) {
		if s.RoundNumber < 1 {
			s.RoundNumber = 1
		}
		s.RoundNumber++
		return true, nil
	})
}

// SetCurrentPlayer jumps to the player at index. An index outside the
// seats returns ErrInvalidPlayerIndex.
func (e *Engine) SetCurrentPlayer(ctx context.Context, index int) error {
	return e.mutate(ctx, "set current player", func(s *model.GameSession) (bool, error) {
		if index < 0 || index >= len(s.Players) {
			return false, fmt.Errorf("%w: %d not in [0, %d)", model.ErrInvalidPlayerIndex, index, len(s.Players))
		}
		s.CurrentPlayerIndex = index
		return true, nil
	})
}

// UpdatePlayerScore appends a score entry to the player's log. Players
// outside the session are ignored.
func (e *Engine) UpdatePlayerScore(ctx context.Context, playerID model.PlayerID, category string, points int) error {
	return e.mutate(ctx, "update score", func(s *model.GameSession) (bool, error) {
		if !s.HasPlayer(playerID) {
			e.logger.Warn("score for unknown player ignored", slog.String("player_id", string(playerID)))
			return false, nil
		}
		s.Scores[playerID] = append(s.Scores[playerID], model.ScoreEntry{
			Points:    points,
			Category:  category,
			Timestamp: e.clock.Now(),
		})
		return true, nil
	})
}

// UndoPlayerScore removes the entry at index from the player's log.
// Unknown players or indexes are ignored.
func (e *Engine) UndoPlayerScore(ctx context.Context, playerID model.PlayerID, index int) error {
	return e.mutate(ctx, "undo score", func(s *model.GameSession) (bool, error) {
		log, ok := s.Scores[playerID]
		if !ok || index < 0 || index >= len(log) {
			return false, nil
		}
		s.Scores[playerID] = slices.Delete(log, index, index+1)
		return true, nil
	})
}

// UpdatePlayerResource overwrites a player's resource counter. Ignored when
// the session tracks no resources or the player is not in the session.
func (e *Engine) UpdatePlayerResource(ctx context.Context, playerID model.PlayerID, resourceID string, value int) error {
	return e.mutate(ctx, "update resource", func(s *model.GameSession) (bool, error) {
		if s.Resources == nil || !s.HasPlayer(playerID) {
			return false, nil
		}
		if s.Resources[playerID] == nil {
			s.Resources[playerID] = make(map[string]int)
		}
		s.Resources[playerID][resourceID] = value
		return true, nil
	})
}

// SetPhase overwrites the current phase. The id is not checked against
// the game's phases.
func (e *Engine) SetPhase(ctx context.Context, phaseID string) error {
	return e.mutate(ctx, "set phase", func(s *model.GameSession) (bool, error) {
		s.CurrentPhase = phaseID
		return true, nil
	})
}

// NextPhase moves to the game's next phase in order, starting from the
// first when no phase is set. It stays on the last phase.
func (e *Engine) NextPhase(ctx context.Context) error {
	return e.stepPhase(ctx, "next phase", 1)
}

// PreviousPhase moves to the game's previous phase, staying on the first
func (e *Engine) PreviousPhase(ctx context.Context) error {
	return e.stepPhase(ctx, "previous phase", -1)
}

func (e *Engine) stepPhase(ctx context.Context, op string, delta int) error {
	return e.mutate(ctx, op, func(s *model.GameSession) (bool, error) {
		game, err := e.catalog.Get(s.GameID)
		if err != nil {
			if errors.Is(err, model.ErrGameNotFound) {
				return false, nil
			}
			return false, err
		}
		phases := orderedPhases(game)
		if len(phases) == 0 {
			return false, nil
		}

		next := 0
		if i := slices.Index(phases, s.CurrentPhase); i >= 0 {
			next = min(max(i+delta, 0), len(phases)-1)
		}
		if phases[next] == s.CurrentPhase {
			return false, nil
		}
		s.CurrentPhase = phases[next]
		return true, nil
	})
}

func orderedPhases(game *model.GameDefinition) []string {
	phases := slices.Clone(game.Phases)
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].Order < phases[j].Order })
	ids := make([]string, len(phases))
	for i, p := range phases {
		ids[i] = p.ID
	}
	return ids
}

// SetNotes overwrites the session notes
func (e *Engine) SetNotes(ctx context.Context, notes string) error {
	return e.mutate(ctx, "set notes", func(s *model.GameSession) (bool, error) {
		s.Notes = notes
		return true, nil
	})
}

// EndSession completes the current session with an optional winner and
// rolls each linked player's result into their profile. Ending an already
// completed session changes nothing.
func (e *Engine) EndSession(ctx context.Context, winner model.PlayerID) error {
	var ended *model.GameSession
	err := e.mutate(ctx, "end session", func(s *model.GameSession) (bool, error) {
		if winner != "" && !s.HasPlayer(winner) {
			return false, fmt.Errorf("%w: winner %s is not in the session", model.ErrInvalidPlayer, winner)
		}
		now := e.clock.Now()
		s.CompletedAt = &now
		s.Winner = winner
		ended = s
		return true, nil
	})
	if err != nil || ended == nil {
		return err
	}

	e.logger.Info("session ended",
		slog.String("session_id", string(ended.ID)),
		slog.String("winner", string(ended.Winner)),
	)
	e.recordResults(ctx, ended)
	return nil
}

func (e *Engine) recordResults(ctx context.Context, s *model.GameSession) {
	if e.recorder == nil {
		return
	}
	for _, p := range s.Players {
		if p.ProfileID == "" {
			continue
		}
		won := s.Winner != "" && p.ID == s.Winner
		if err := e.recorder.RecordGameResult(ctx, p.ProfileID, s.GameID, s.PlayerTotal(p.ID), won); err != nil {
			e.logger.Warn("failed to record game result",
				slog.String("session_id", string(s.ID)),
				slog.String("profile_id", string(p.ProfileID)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Reads of the current session. Each returns the zero value when there is
// no current session.

// PlayerTotal sums the player's score log
func (e *Engine) PlayerTotal(playerID model.PlayerID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return 0
	}
	return e.current.PlayerTotal(playerID)
}

// ScoreHistory returns a copy of the player's score log
func (e *Engine) ScoreHistory(playerID model.PlayerID) []model.ScoreEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	return slices.Clone(e.current.Scores[playerID])
}

// Standings returns players ordered by total, highest first
func (e *Engine) Standings() []model.Standing {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	return e.current.Standings()
}

// PlayerResource returns one resource counter, 0 when untracked
func (e *Engine) PlayerResource(playerID model.PlayerID, resourceID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil || e.current.Resources == nil {
		return 0
	}
	return e.current.Resources[playerID][resourceID]
}

// PlayerResources returns a copy of all of a player's resource counters
func (e *Engine) PlayerResources(playerID model.PlayerID) map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil || e.current.Resources == nil {
		return map[string]int{}
	}
	return maps.Clone(e.current.Resources[playerID])
}

// Session collection

// DeleteSession removes a session. Deleting the current session leaves
// no current session.
func (e *Engine) DeleteSession(ctx context.Context, id model.SessionID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.repo.Delete(ctx, id); err != nil {
		return err
	}
	if e.current != nil && e.current.ID == id {
		e.current = nil
	}
	return nil
}

// DeleteAllSessions removes every session and clears the current one
func (e *Engine) DeleteAllSessions(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.repo.DeleteAll(ctx); err != nil {
		return err
	}
	e.current = nil
	return nil
}

// GetSession loads any saved session by id
func (e *Engine) GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	return e.repo.Load(ctx, id)
}

// ListSessions returns every saved session, most recently updated first
func (e *Engine) ListSessions(ctx context.Context) ([]*model.GameSession, error) {
	sessions, err := e.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].LastUpdatedAt.Equal(sessions[j].LastUpdatedAt) {
			return sessions[i].LastUpdatedAt.After(sessions[j].LastUpdatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions, nil
}

// Summaries returns listing entries for every saved session, most
// recently updated first. Sessions whose game left the catalog are named
// by game id.
func (e *Engine) Summaries(ctx context.Context) ([]model.SessionSummary, error) {
	sessions, err := e.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.SessionSummary, len(sessions))
	for i, s := range sessions {
		name := string(s.GameID)
		if game, err := e.catalog.Get(s.GameID); err == nil {
			name = game.Name
		}
		summaries[i] = model.SessionSummary{
			ID:            s.ID,
			GameID:        s.GameID,
			GameName:      name,
			PlayerCount:   len(s.Players),
			TurnNumber:    s.TurnNumber,
			StartedAt:     s.StartedAt,
			LastUpdatedAt: s.LastUpdatedAt,
			CompletedAt:   s.CompletedAt,
			Winner:        s.Winner,
		}
	}
	return summaries, nil
}
