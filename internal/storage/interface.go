package storage

import (
	"context"

	"github.com/mcoot/tabletop-companion/internal/model"
)

// Storage defines the interface for data persistence.
//
// Lookups of missing records return the model's not-found sentinel and
// undecodable records return ErrCorruptSession or ErrCorruptProfile. Any
// other error is a storage failure and is returned as-is.
type Storage interface {
	// Session operations
	SaveSession(ctx context.Context, session *model.GameSession) error
	GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error)
	ListSessionIDs(ctx context.Context) ([]model.SessionID, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	DeleteAllSessions(ctx context.Context) error

	// Active session pointer. GetActiveSessionID returns "" when unset.
	SetActiveSessionID(ctx context.Context, id model.SessionID) error
	GetActiveSessionID(ctx context.Context) (model.SessionID, error)
	ClearActiveSessionID(ctx context.Context) error

	// Profile operations
	SaveProfile(ctx context.Context, profile *model.PlayerProfile) error
	GetProfile(ctx context.Context, id model.ProfileID) (*model.PlayerProfile, error)
	ListProfileIDs(ctx context.Context) ([]model.ProfileID, error)
	DeleteProfile(ctx context.Context, id model.ProfileID) error

	// Close releases any underlying connections
	Close() error
}
