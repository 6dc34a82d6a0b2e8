package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/tabletop-companion/internal/dependencies/clock"
	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/storage"
)

// Repository is durable CRUD for sessions plus the active session pointer.
// Storage failures are returned unchanged and never retried.
type Repository struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewRepository creates a new session Repository
func NewRepository(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Repository {
	return &Repository{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Save upserts the session. LastUpdatedAt is stamped with the write time,
// overwriting the caller's value.
func (r *Repository) Save(ctx context.Context, s *model.GameSession) error {
	s.LastUpdatedAt = r.clock.Now()
	if err := r.storage.SaveSession(ctx, s); err != nil {
		r.logger.Error("failed to save session",
			slog.String("session_id", string(s.ID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// Load returns the session with the given id. A missing record yields
// ErrSessionNotFound and an unreadable one ErrCorruptSession.
func (r *Repository) Load(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	return r.storage.GetSession(ctx, id)
}

// ListAll returns every readable session in storage order. Corrupt
// records are skipped with a warning.
func (r *Repository) ListAll(ctx context.Context) ([]*model.GameSession, error) {
	ids, err := r.storage.ListSessionIDs(ctx)
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.GameSession, 0, len(ids))
	for _, id := range ids {
		s, err := r.storage.GetSession(ctx, id)
		switch {
		case err == nil:
			sessions = append(sessions, s)
		case errors.Is(err, model.ErrSessionNotFound):
			// Removed or expired since the ids were listed
		case errors.Is(err, model.ErrCorruptSession):
			r.logger.Warn("skipping corrupt session",
				slog.String("session_id", string(id)),
				slog.String("error", err.Error()),
			)
		default:
			return nil, err
		}
	}
	return sessions, nil
}

// Delete removes the session, clearing the active pointer if it named it
func (r *Repository) Delete(ctx context.Context, id model.SessionID) error {
	if err := r.storage.DeleteSession(ctx, id); err != nil {
		return err
	}

	active, err := r.storage.GetActiveSessionID(ctx)
	if err != nil {
		return err
	}
	if active == id {
		if err := r.storage.ClearActiveSessionID(ctx); err != nil {
			return err
		}
	}

	r.logger.Info("session deleted", slog.String("session_id", string(id)))
	return nil
}

// DeleteAll removes every session and the active pointer
func (r *Repository) DeleteAll(ctx context.Context) error {
	if err := r.storage.DeleteAllSessions(ctx); err != nil {
		return err
	}
	if err := r.storage.ClearActiveSessionID(ctx); err != nil {
		return err
	}
	r.logger.Info("all sessions deleted")
	return nil
}

// SetActive records id as the active session. The record need not exist.
func (r *Repository) SetActive(ctx context.Context, id model.SessionID) error {
	return r.storage.SetActiveSessionID(ctx, id)
}

// ActiveID returns the active session id, or "" when there is none. A
// pointer to a session that no longer exists is cleared and reported as "".
func (r *Repository) ActiveID(ctx context.Context) (model.SessionID, error) {
	id, err := r.storage.GetActiveSessionID(ctx)
	if err != nil || id == "" {
		return "", err
	}

	_, err = r.storage.GetSession(ctx, id)
	switch {
	case err == nil, errors.Is(err, model.ErrCorruptSession):
		return id, nil
	case errors.Is(err, model.ErrSessionNotFound):
		r.logger.Debug("clearing dangling active session pointer", slog.String("session_id", string(id)))
		if err := r.storage.ClearActiveSessionID(ctx); err != nil {
			return "", err
		}
		return "", nil
	default:
		return "", err
	}
}

// ClearActive removes the active pointer
func (r *Repository) ClearActive(ctx context.Context) error {
	return r.storage.ClearActiveSessionID(ctx)
}
