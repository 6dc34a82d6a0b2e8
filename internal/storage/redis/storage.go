package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.GameSession) error {
	data, err := storage.EncodeSession(session)
	if err != nil {
		return err
	}

	// Use pipeline so the record and its index entry are written together
	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, sessionsIndexKey(), string(session.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	return storage.DecodeSession(data)
}

// ListSessionIDs returns the indexed session ids. An id whose record has
// expired is still listed until the next delete; GetSession reports it
// as not found.
func (s *Storage) ListSessionIDs(ctx context.Context) ([]model.SessionID, error) {
	members, err := s.client.SMembers(ctx, sessionsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]model.SessionID, len(members))
	for i, m := range members {
		ids[i] = model.SessionID(m)
	}
	return ids, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, sessionsIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) DeleteAllSessions(ctx context.Context) error {
	ids, err := s.ListSessionIDs(ctx)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, sessionsIndexKey())
	return s.client.Del(ctx, keys...).Err()
}

// Active session pointer

func (s *Storage) SetActiveSessionID(ctx context.Context, id model.SessionID) error {
	return s.client.Set(ctx, activeSessionKey(), string(id), 0).Err()
}

func (s *Storage) GetActiveSessionID(ctx context.Context) (model.SessionID, error) {
	id, err := s.client.Get(ctx, activeSessionKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return model.SessionID(id), nil
}

func (s *Storage) ClearActiveSessionID(ctx context.Context) error {
	return s.client.Del(ctx, activeSessionKey()).Err()
}

// Profile operations

func (s *Storage) SaveProfile(ctx context.Context, profile *model.PlayerProfile) error {
	data, err := storage.EncodeProfile(profile)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, profileKey(profile.ID), data, 0) // No TTL
	pipe.SAdd(ctx, profilesIndexKey(), string(profile.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetProfile(ctx context.Context, id model.ProfileID) (*model.PlayerProfile, error) {
	data, err := s.client.Get(ctx, profileKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}
	return storage.DecodeProfile(data)
}

func (s *Storage) ListProfileIDs(ctx context.Context) ([]model.ProfileID, error) {
	members, err := s.client.SMembers(ctx, profilesIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]model.ProfileID, len(members))
	for i, m := range members {
		ids[i] = model.ProfileID(m)
	}
	return ids, nil
}

func (s *Storage) DeleteProfile(ctx context.Context, id model.ProfileID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, profileKey(id))
	pipe.SRem(ctx, profilesIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}
