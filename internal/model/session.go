package model

import (
	"maps"
	"slices"
	"sort"
	"time"
)

// SessionID uniquely identifies a play session
type SessionID string

// ScoreEntry is one atomic scoring event for a player
type ScoreEntry struct {
	Points    int       `json:"points"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PlayerScores maps each player to an append-only score log
type PlayerScores map[PlayerID][]ScoreEntry

// PlayerResources maps each player to their resource counters
type PlayerResources map[PlayerID]map[string]int

// GameSession is one playthrough of a game
type GameSession struct {
	ID      SessionID `json:"id"`
	GameID  GameID    `json:"game_id"`
	Players []Player  `json:"players"`

	Scores    PlayerScores    `json:"scores"`
	Resources PlayerResources `json:"resources,omitempty"` // nil when the game defines none

	// Turn tracking
	CurrentPlayerIndex int    `json:"current_player_index"`
	TurnNumber         int    `json:"turn_number"`
	RoundNumber        int    `json:"round_number,omitempty"`
	CurrentPhase       string `json:"current_phase,omitempty"`

	Notes string `json:"notes,omitempty"`

	// Timing
	StartedAt     time.Time  `json:"started_at"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	Winner PlayerID `json:"winner,omitempty"` // set only when the session ends
}

// IsCompleted reports whether the session has ended
func (s *GameSession) IsCompleted() bool {
	return s.CompletedAt != nil
}

// PlayerIndex returns the seat of the given player, or -1
func (s *GameSession) PlayerIndex(id PlayerID) int {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// HasPlayer reports whether the player takes part in this session
func (s *GameSession) HasPlayer(id PlayerID) bool {
	return s.PlayerIndex(id) >= 0
}

// CurrentPlayer returns the player whose turn it is, or nil
func (s *GameSession) CurrentPlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return &s.Players[s.CurrentPlayerIndex]
}

// PlayerTotal sums the points in a player's score log
func (s *GameSession) PlayerTotal(id PlayerID) int {
	total := 0
	for _, entry := range s.Scores[id] {
		total += entry.Points
	}
	return total
}

// Standing is a player's position in the running totals
type Standing struct {
	Player Player `json:"player"`
	Total  int    `json:"total"`
}

// Standings returns every player with their total, highest first.
// Ties keep seat order.
func (s *GameSession) Standings() []Standing {
	standings := make([]Standing, len(s.Players))
	for i, p := range s.Players {
		standings[i] = Standing{Player: p, Total: s.PlayerTotal(p.ID)}
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Total > standings[j].Total
	})
	return standings
}

// Clone returns a deep copy that shares no mutable state with s
func (s *GameSession) Clone() *GameSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Players = slices.Clone(s.Players)
	if s.Scores != nil {
		c.Scores = make(PlayerScores, len(s.Scores))
		for id, log := range s.Scores {
			c.Scores[id] = cloneLog(log)
		}
	}
	c.Resources = s.Resources.clone()
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func cloneLog(log []ScoreEntry) []ScoreEntry {
	if log == nil {
		return nil
	}
	out := make([]ScoreEntry, len(log))
	copy(out, log)
	return out
}

func (r PlayerResources) clone() PlayerResources {
	if r == nil {
		return nil
	}
	out := make(PlayerResources, len(r))
	for id, values := range r {
		out[id] = maps.Clone(values)
	}
	return out
}

// SessionUpdate is a partial update merged into a session.
// Nil fields are left unchanged.
type SessionUpdate struct {
	Scores             PlayerScores    `json:"scores,omitempty"`
	Resources          PlayerResources `json:"resources,omitempty"`
	CurrentPlayerIndex *int            `json:"current_player_index,omitempty"`
	TurnNumber         *int            `json:"turn_number,omitempty"`
	RoundNumber        *int            `json:"round_number,omitempty"`
	CurrentPhase       *string         `json:"current_phase,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	Winner             *PlayerID       `json:"winner,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u SessionUpdate) IsEmpty() bool {
	return u.Scores == nil && u.Resources == nil && u.CurrentPlayerIndex == nil &&
		u.TurnNumber == nil && u.RoundNumber == nil && u.CurrentPhase == nil &&
		u.Notes == nil && u.CompletedAt == nil && u.Winner == nil
}

// Apply merges the update into s. Scores replace the logs of the players
// they name and Resources overwrite the counters they name; every other
// player and counter is kept. Maps are copied, not aliased.
func (u SessionUpdate) Apply(s *GameSession) {
	if len(u.Scores) > 0 && s.Scores == nil {
		s.Scores = make(PlayerScores, len(u.Scores))
	}
	for id, log := range u.Scores {
		s.Scores[id] = cloneLog(log)
	}
	if len(u.Resources) > 0 && s.Resources == nil {
		s.Resources = make(PlayerResources, len(u.Resources))
	}
	for id, values := range u.Resources {
		if s.Resources[id] == nil {
			s.Resources[id] = make(map[string]int, len(values))
		}
		maps.Copy(s.Resources[id], values)
	}
	if u.CurrentPlayerIndex != nil {
		s.CurrentPlayerIndex = *u.CurrentPlayerIndex
	}
	if u.TurnNumber != nil {
		s.TurnNumber = *u.TurnNumber
	}
	if u.RoundNumber != nil {
		s.RoundNumber = *u.RoundNumber
	}
	if u.CurrentPhase != nil {
		s.CurrentPhase = *u.CurrentPhase
	}
	if u.Notes != nil {
		s.Notes = *u.Notes
	}
	if u.CompletedAt != nil {
		t := *u.CompletedAt
		s.CompletedAt = &t
	}
	if u.Winner != nil {
		s.Winner = *u.Winner
	}
}

// SessionSummary is a lightweight listing entry for saved sessions
type SessionSummary struct {
	ID            SessionID  `json:"id"`
	GameID        GameID     `json:"game_id"`
	GameName      string     `json:"game_name"`
	PlayerCount   int        `json:"player_count"`
	TurnNumber    int        `json:"turn_number"`
	StartedAt     time.Time  `json:"started_at"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Winner        PlayerID   `json:"winner,omitempty"`
}
