package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are kept as encoded documents so reads never alias a caller's
// value and decode exactly like the durable backends.
type Storage struct {
	mu sync.RWMutex

	sessions        map[model.SessionID][]byte
	profiles        map[model.ProfileID][]byte
	activeSessionID model.SessionID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions: make(map[model.SessionID][]byte),
		profiles: make(map[model.ProfileID][]byte),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.GameSession) error {
	data, err := storage.EncodeSession(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = data
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	s.mu.RLock()
	data, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return storage.DecodeSession(data)
}

func (s *Storage) ListSessionIDs(ctx context.Context) ([]model.SessionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(maps.Keys(s.sessions)), nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Storage) DeleteAllSessions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.sessions)
	return nil
}

// PutRawSession stores an arbitrary document under id (for testing corrupt records)
func (s *Storage) PutRawSession(id model.SessionID, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = slices.Clone(data)
}

// Active session pointer

func (s *Storage) SetActiveSessionID(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeSessionID = id
	return nil
}

func (s *Storage) GetActiveSessionID(ctx context.Context) (model.SessionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSessionID, nil
}

func (s *Storage) ClearActiveSessionID(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeSessionID = ""
	return nil
}

// Profile operations

func (s *Storage) SaveProfile(ctx context.Context, profile *model.PlayerProfile) error {
	data, err := storage.EncodeProfile(profile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = data
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id model.ProfileID) (*model.PlayerProfile, error) {
	s.mu.RLock()
	data, ok := s.profiles[id]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return storage.DecodeProfile(data)
}

func (s *Storage) ListProfileIDs(ctx context.Context) ([]model.ProfileID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(maps.Keys(s.profiles)), nil
}

func (s *Storage) DeleteProfile(ctx context.Context, id model.ProfileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, id)
	return nil
}

// PutRawProfile stores an arbitrary document under id (for testing corrupt records)
func (s *Storage) PutRawProfile(id model.ProfileID, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = slices.Clone(data)
}
