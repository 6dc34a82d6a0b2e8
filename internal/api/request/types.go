package request

import "github.com/mcoot/tabletop-companion/internal/model"

// PlayerInput describes one seat at session setup. Either Name or
// ProfileID must be given; a profile pre-fills name and colour.
type PlayerInput struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Color     string `json:"color,omitempty"`
	ProfileID string `json:"profile_id,omitempty"`
}

// CreateSessionRequest is the request body for starting a session
type CreateSessionRequest struct {
	GameID  string        `json:"game_id"`
	Players []PlayerInput `json:"players"`
}

// UpdateSessionRequest is a partial update of a saved session
type UpdateSessionRequest = model.SessionUpdate

// SetCurrentRequest selects the session being played
type SetCurrentRequest struct {
	SessionID string `json:"session_id"`
}

// SetPlayerRequest jumps to a seat
type SetPlayerRequest struct {
	Index *int `json:"index"`
}

// ScoreRequest records points for a player
type ScoreRequest struct {
	PlayerID string `json:"player_id"`
	Category string `json:"category,omitempty"`
	Points   int    `json:"points"`
}

// ResourceRequest overwrites a resource counter
type ResourceRequest struct {
	Value *int `json:"value"`
}

// PhaseRequest sets the current phase
type PhaseRequest struct {
	Phase string `json:"phase"`
}

// NotesRequest replaces the session notes
type NotesRequest struct {
	Notes string `json:"notes"`
}

// EndSessionRequest completes the current session
type EndSessionRequest struct {
	Winner string `json:"winner,omitempty"`
}

// CreateProfileRequest is the request body for creating a profile
type CreateProfileRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// UpdateProfileRequest is a partial update of a profile
type UpdateProfileRequest = model.ProfileUpdate
