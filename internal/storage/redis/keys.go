package redis

import (
	"fmt"

	"github.com/mcoot/tabletop-companion/internal/model"
)

// Key prefix for all companion data
const keyPrefix = "companion"

// sessionKey returns the Redis key for a GameSession document
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionsIndexKey returns the Redis key for the SET of session ids
func sessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// activeSessionKey returns the Redis key holding the active session id
func activeSessionKey() string {
	return fmt.Sprintf("%s:active_session", keyPrefix)
}

// profileKey returns the Redis key for a PlayerProfile document
func profileKey(id model.ProfileID) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, id)
}

// profilesIndexKey returns the Redis key for the SET of profile ids
func profilesIndexKey() string {
	return fmt.Sprintf("%s:idx:profiles", keyPrefix)
}
