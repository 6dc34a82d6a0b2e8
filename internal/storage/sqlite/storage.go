// Package sqlite provides a SQLite-backed storage implementation for
// sessions and profiles on the local device.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/storage"
	"github.com/mcoot/tabletop-companion/internal/storage/sqlite/migrations"
)

const activeSessionSetting = "active_session_id"

// Storage persists sessions and profiles in a SQLite database
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens (creating if needed) the database at path and applies
// embedded migrations
func Open(ctx context.Context, path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time keeps SQLite free of lock contention
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the SQLite handle
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.GameSession) error {
	data, err := storage.EncodeSession(session)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, game_id, data, started_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   game_id = excluded.game_id,
		   data = excluded.data,
		   started_at = excluded.started_at,
		   updated_at = excluded.updated_at`,
		string(session.ID),
		string(session.GameID),
		string(data),
		toMillis(session.StartedAt),
		toMillis(session.LastUpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id = ?`, string(id)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return storage.DecodeSession([]byte(data))
}

func (s *Storage) ListSessionIDs(ctx context.Context) ([]model.SessionID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []model.SessionID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, model.SessionID(id))
	}
	return ids, rows.Err()
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, string(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Storage) DeleteAllSessions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// Active session pointer

func (s *Storage) SetActiveSessionID(ctx context.Context, id model.SessionID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		activeSessionSetting, string(id),
	)
	if err != nil {
		return fmt.Errorf("set active session: %w", err)
	}
	return nil
}

func (s *Storage) GetActiveSessionID(ctx context.Context) (model.SessionID, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, activeSessionSetting).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get active session: %w", err)
	}
	return model.SessionID(id), nil
}

func (s *Storage) ClearActiveSessionID(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, activeSessionSetting); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}

// Profile operations

func (s *Storage) SaveProfile(ctx context.Context, profile *model.PlayerProfile) error {
	data, err := storage.EncodeProfile(profile)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, data, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   data = excluded.data,
		   created_at = excluded.created_at`,
		string(profile.ID),
		profile.Name,
		string(data),
		toMillis(profile.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id model.ProfileID) (*model.PlayerProfile, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE id = ?`, string(id)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return storage.DecodeProfile([]byte(data))
}

func (s *Storage) ListProfileIDs(ctx context.Context) ([]model.ProfileID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM profiles ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var ids []model.ProfileID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan profile id: %w", err)
		}
		ids = append(ids, model.ProfileID(id))
	}
	return ids, rows.Err()
}

func (s *Storage) DeleteProfile(ctx context.Context, id model.ProfileID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, string(id)); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
