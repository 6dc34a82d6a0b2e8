package response

import (
	"time"

	"github.com/mcoot/tabletop-companion/internal/model"
)

// GameListing is a catalog entry without rule content
type GameListing struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Publisher   string      `json:"publisher,omitempty"`
	PlayerCount model.Range `json:"player_count"`
	PlayTime    model.Range `json:"play_time"`
	Complexity  float64     `json:"complexity,omitempty"`
	Categories  []string    `json:"categories,omitempty"`
}

// GameListingFromModel converts a game definition to a listing entry
func GameListingFromModel(g *model.GameDefinition) GameListing {
	return GameListing{
		ID:          string(g.ID),
		Name:        g.Name,
		Publisher:   g.Publisher,
		PlayerCount: g.PlayerCount,
		PlayTime:    g.PlayTime,
		Complexity:  g.Complexity,
		Categories:  g.Categories,
	}
}

// GameListingsFromModel converts a slice of game definitions
func GameListingsFromModel(games []*model.GameDefinition) []GameListing {
	out := make([]GameListing, len(games))
	for i, g := range games {
		out[i] = GameListingFromModel(g)
	}
	return out
}

// PlayerState is one player's seat, running total and counters
type PlayerState struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Color     string         `json:"color"`
	ColorHex  string         `json:"color_hex,omitempty"`
	ProfileID string         `json:"profile_id,omitempty"`
	Total     int            `json:"total"`
	Scores    []ScoreEntry   `json:"scores"`
	Resources map[string]int `json:"resources,omitempty"`
}

// ScoreEntry is one entry of a player's score log
type ScoreEntry struct {
	Points    int       `json:"points"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Session represents a play session in API responses
type Session struct {
	ID            string        `json:"id"`
	GameID        string        `json:"game_id"`
	GameName      string        `json:"game_name"`
	Players       []PlayerState `json:"players"`
	CurrentPlayer string        `json:"current_player,omitempty"`
	PlayerIndex   int           `json:"current_player_index"`
	TurnNumber    int           `json:"turn_number"`
	RoundNumber   int           `json:"round_number"`
	CurrentPhase  string        `json:"current_phase,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	LastUpdatedAt time.Time     `json:"last_updated_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	Winner        string        `json:"winner,omitempty"`
	Standings     []Standing    `json:"standings"`
}

// Standing is a player's place in the running totals
type Standing struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Total    int    `json:"total"`
}

// SessionFromModel converts a session. gameName falls back to the game id
// when empty.
func SessionFromModel(s *model.GameSession, gameName string) Session {
	if gameName == "" {
		gameName = string(s.GameID)
	}

	players := make([]PlayerState, len(s.Players))
	for i, p := range s.Players {
		log := s.Scores[p.ID]
		scores := make([]ScoreEntry, len(log))
		for j, e := range log {
			scores[j] = ScoreEntry{Points: e.Points, Category: e.Category, Timestamp: e.Timestamp}
		}
		players[i] = PlayerState{
			ID:        string(p.ID),
			Name:      p.Name,
			Color:     p.Color,
			ColorHex:  model.PlayerColor(p.Color).Hex(),
			ProfileID: string(p.ProfileID),
			Total:     s.PlayerTotal(p.ID),
			Scores:    scores,
			Resources: s.Resources[p.ID],
		}
	}

	standings := s.Standings()
	ranked := make([]Standing, len(standings))
	for i, st := range standings {
		ranked[i] = Standing{PlayerID: string(st.Player.ID), Name: st.Player.Name, Total: st.Total}
	}

	var current string
	if p := s.CurrentPlayer(); p != nil {
		current = string(p.ID)
	}

	return Session{
		ID:            string(s.ID),
		GameID:        string(s.GameID),
		GameName:      gameName,
		Players:       players,
		CurrentPlayer: current,
		PlayerIndex:   s.CurrentPlayerIndex,
		TurnNumber:    s.TurnNumber,
		RoundNumber:   s.RoundNumber,
		CurrentPhase:  s.CurrentPhase,
		Notes:         s.Notes,
		StartedAt:     s.StartedAt,
		LastUpdatedAt: s.LastUpdatedAt,
		CompletedAt:   s.CompletedAt,
		Winner:        string(s.Winner),
		Standings:     ranked,
	}
}

// Profile represents a player profile in API responses
type Profile struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	FavoriteColor string     `json:"favorite_color"`
	GamesPlayed   int        `json:"games_played"`
	GamesWon      int        `json:"games_won"`
	TotalScore    int        `json:"total_score"`
	FavoriteGames []string   `json:"favorite_games"`
	CreatedAt     time.Time  `json:"created_at"`
	LastPlayedAt  *time.Time `json:"last_played_at,omitempty"`
}

// ProfileFromModel converts model.PlayerProfile
func ProfileFromModel(p *model.PlayerProfile) Profile {
	games := make([]string, len(p.Stats.FavoriteGames))
	for i, g := range p.Stats.FavoriteGames {
		games[i] = string(g)
	}
	return Profile{
		ID:            string(p.ID),
		Name:          p.Name,
		FavoriteColor: p.FavoriteColor,
		GamesPlayed:   p.Stats.GamesPlayed,
		GamesWon:      p.Stats.GamesWon,
		TotalScore:    p.Stats.TotalScore,
		FavoriteGames: games,
		CreatedAt:     p.CreatedAt,
		LastPlayedAt:  p.LastPlayedAt,
	}
}

// ProfilesFromModel converts a slice of profiles
func ProfilesFromModel(profiles []*model.PlayerProfile) []Profile {
	out := make([]Profile, len(profiles))
	for i, p := range profiles {
		out[i] = ProfileFromModel(p)
	}
	return out
}
