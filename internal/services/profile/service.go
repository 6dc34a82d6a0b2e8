// Package profile manages reusable player profiles and their lifetime stats.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/tabletop-companion/internal/dependencies/clock"
	"github.com/mcoot/tabletop-companion/internal/dependencies/random"
	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/storage"
	"github.com/mcoot/tabletop-companion/internal/textutil"
)

// Service handles player profile operations
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	// Serialises read-modify-write cycles
	mu sync.Mutex
}

// NewService creates a new profile Service
func NewService(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// Create stores a new profile with zeroed stats. A blank colour falls back
// to the first palette colour.
func (s *Service) Create(ctx context.Context, name, color string) (*model.PlayerProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrInvalidProfileName
	}
	if color == "" {
		color = string(model.DefaultColor(0))
	}

	p := &model.PlayerProfile{
		ID:            model.ProfileID(s.random.ID("profile")),
		Name:          name,
		FavoriteColor: color,
		Stats:         model.PlayerStats{FavoriteGames: []model.GameID{}},
		CreatedAt:     s.clock.Now(),
	}
	if err := s.storage.SaveProfile(ctx, p); err != nil {
		s.logger.Error("failed to save profile", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.Info("profile created",
		slog.String("profile_id", string(p.ID)),
		slog.String("name", p.Name),
	)
	return p, nil
}

// Get returns the profile with the given id
func (s *Service) Get(ctx context.Context, id model.ProfileID) (*model.PlayerProfile, error) {
	return s.storage.GetProfile(ctx, id)
}

// Update merges update into the profile and persists it
func (s *Service) Update(ctx context.Context, id model.ProfileID, update model.ProfileUpdate) (*model.PlayerProfile, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, model.ErrInvalidProfileName
		}
		update.Name = &name
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.storage.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	update.Apply(p)
	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile %s: %w", id, err)
	}
	return p, nil
}

// Delete removes the profile. Sessions that linked it keep their player
// snapshots.
func (s *Service) Delete(ctx context.Context, id model.ProfileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.DeleteProfile(ctx, id); err != nil {
		return err
	}
	s.logger.Info("profile deleted", slog.String("profile_id", string(id)))
	return nil
}

// GetAll returns every readable profile, oldest first. Corrupt records are
// skipped with a warning.
func (s *Service) GetAll(ctx context.Context) ([]*model.PlayerProfile, error) {
	ids, err := s.storage.ListProfileIDs(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]*model.PlayerProfile, 0, len(ids))
	for _, id := range ids {
		p, err := s.storage.GetProfile(ctx, id)
		switch {
		case err == nil:
			profiles = append(profiles, p)
		case errors.Is(err, model.ErrProfileNotFound):
		case errors.Is(err, model.ErrCorruptProfile):
			s.logger.Warn("skipping corrupt profile",
				slog.String("profile_id", string(id)),
				slog.String("error", err.Error()),
			)
		default:
			return nil, err
		}
	}

	sort.Slice(profiles, func(i, j int) bool {
		if !profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
		}
		return profiles[i].ID < profiles[j].ID
	})
	return profiles, nil
}

// Search returns the profiles whose name contains query, ignoring case
func (s *Service) Search(ctx context.Context, query string) ([]*model.PlayerProfile, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(p *model.PlayerProfile) bool {
		return !textutil.ContainsFold(p.Name, query)
	}), nil
}

// RecordGameResult rolls one finished game into the profile's stats.
// Unknown profiles are ignored.
func (s *Service) RecordGameResult(ctx context.Context, id model.ProfileID, gameID model.GameID, score int, won bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.storage.GetProfile(ctx, id)
	if errors.Is(err, model.ErrProfileNotFound) {
		s.logger.Debug("result for unknown profile ignored", slog.String("profile_id", string(id)))
		return nil
	}
	if err != nil {
		return err
	}

	p.Stats.GamesPlayed++
	if won {
		p.Stats.GamesWon++
	}
	p.Stats.TotalScore += score
	if !slices.Contains(p.Stats.FavoriteGames, gameID) {
		p.Stats.FavoriteGames = append(p.Stats.FavoriteGames, gameID)
	}
	now := s.clock.Now()
	p.LastPlayedAt = &now

	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("record result for %s: %w", id, err)
	}
	return nil
}

// PlayerFromProfile pre-fills a session player from a profile. The player
// id is left blank for the engine to assign.
func PlayerFromProfile(p *model.PlayerProfile) model.Player {
	return model.Player{
		Name:      p.Name,
		Color:     p.FavoriteColor,
		ProfileID: p.ID,
	}
}
