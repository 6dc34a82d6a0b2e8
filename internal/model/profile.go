package model

import (
	"slices"
	"time"
)

// ProfileID uniquely identifies a reusable player profile
type ProfileID string

// PlayerStats are lifetime statistics rolled up at session completion
type PlayerStats struct {
	GamesPlayed   int      `json:"games_played"`
	GamesWon      int      `json:"games_won"`
	TotalScore    int      `json:"total_score"`
	FavoriteGames []GameID `json:"favorite_games"`
}

// PlayerProfile is a reusable player identity, independent of sessions
type PlayerProfile struct {
	ID            ProfileID   `json:"id"`
	Name          string      `json:"name"`
	FavoriteColor string      `json:"favorite_color"`
	Stats         PlayerStats `json:"stats"`
	CreatedAt     time.Time   `json:"created_at"`
	LastPlayedAt  *time.Time  `json:"last_played_at,omitempty"`
}

// Clone returns a deep copy of the profile
func (p *PlayerProfile) Clone() *PlayerProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Stats.FavoriteGames = slices.Clone(p.Stats.FavoriteGames)
	if p.LastPlayedAt != nil {
		t := *p.LastPlayedAt
		c.LastPlayedAt = &t
	}
	return &c
}

// ProfileUpdate is a partial update merged into a profile.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	Name          *string      `json:"name,omitempty"`
	FavoriteColor *string      `json:"favorite_color,omitempty"`
	Stats         *PlayerStats `json:"stats,omitempty"`
	LastPlayedAt  *time.Time   `json:"last_played_at,omitempty"`
}

// Apply merges the update into p
func (u ProfileUpdate) Apply(p *PlayerProfile) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.FavoriteColor != nil {
		p.FavoriteColor = *u.FavoriteColor
	}
	if u.Stats != nil {
		p.Stats = *u.Stats
		p.Stats.FavoriteGames = slices.Clone(u.Stats.FavoriteGames)
	}
	if u.LastPlayedAt != nil {
		t := *u.LastPlayedAt
		p.LastPlayedAt = &t
	}
}
