package storage

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/mcoot/tabletop-companion/internal/model"
)

// Sessions and profiles are persisted as JSON documents. Timestamps are
// written as RFC 3339 strings and parsed back into time.Time on decode.

// EncodeSession serializes a session for storage
func EncodeSession(session *model.GameSession) ([]byte, error) {
	return json.Marshal(session)
}

// DecodeSession parses a stored session. A document that does not parse
// or lacks a required field yields ErrCorruptSession; a partially
// populated session is never returned.
func DecodeSession(data []byte) (*model.GameSession, error) {
	var session model.GameSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCorruptSession, err)
	}
	if reason := checkSession(&session); reason != "" {
		return nil, fmt.Errorf("%w: %s", model.ErrCorruptSession, reason)
	}
	return &session, nil
}

func checkSession(s *model.GameSession) string {
	switch {
	case s.ID == "":
		return "missing id"
	case s.GameID == "":
		return "missing game_id"
	case len(s.Players) == 0:
		return "missing players"
	case s.Scores == nil:
		return "missing scores"
	case s.StartedAt.IsZero():
		return "missing started_at"
	case s.LastUpdatedAt.IsZero():
		return "missing last_updated_at"
	case s.TurnNumber < 1:
		return "invalid turn_number"
	case s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players):
		return "current_player_index out of range"
	}
	for _, p := range s.Players {
		if p.ID == "" || p.Name == "" {
			return "player missing id or name"
		}
	}
	return ""
}

// EncodeProfile serializes a profile for storage
func EncodeProfile(profile *model.PlayerProfile) ([]byte, error) {
	return json.Marshal(profile)
}

// DecodeProfile parses a stored profile, failing closed with ErrCorruptProfile
func DecodeProfile(data []byte) (*model.PlayerProfile, error) {
	var profile model.PlayerProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCorruptProfile, err)
	}
	switch {
	case profile.ID == "":
		return nil, fmt.Errorf("%w: missing id", model.ErrCorruptProfile)
	case profile.Name == "":
		return nil, fmt.Errorf("%w: missing name", model.ErrCorruptProfile)
	case profile.CreatedAt.IsZero():
		return nil, fmt.Errorf("%w: missing created_at", model.ErrCorruptProfile)
	}
	return &profile, nil
}
