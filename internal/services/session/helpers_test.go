package session

import (
	"context"
	"errors"
	"sync"

	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/storage"
)

func intPtr(v int) *int { return &v }

// testGames is a small catalog used across the session tests
func testGames() []*model.GameDefinition {
	return []*model.GameDefinition{
		{
			ID:          "duel",
			Name:        "Duel of Merchants",
			PlayerCount: model.Range{Min: 2, Max: 4},
			Scoring: model.ScoringConfig{
				Categories: []model.ScoringCategory{{ID: "main", Name: "Main"}},
			},
			Resources: []model.ResourceDefinition{
				{ID: "gold", Name: "Gold", StartingValue: 10, Min: intPtr(0), PerPlayer: true},
				{ID: "wood", Name: "Wood", PerPlayer: true},
			},
			Phases: []model.Phase{
				{ID: "harvest", Name: "Harvest", Order: 2},
				{ID: "setup", Name: "Setup", Order: 1},
				{ID: "scoring", Name: "Scoring", Order: 3},
			},
		},
		{
			ID:          "solo-race",
			Name:        "Solo Race",
			PlayerCount: model.Range{Min: 1, Max: 5},
			Scoring: model.ScoringConfig{
				Categories: []model.ScoringCategory{{ID: "laps", Name: "Laps"}},
			},
		},
	}
}

// faultyStorage wraps a backend and fails writes on demand
type faultyStorage struct {
	storage.Storage

	mu        sync.Mutex
	failSaves bool
	saves     int
}

var errDiskFull = errors.New("disk full")

func (f *faultyStorage) SaveSession(ctx context.Context, s *model.GameSession) error {
	f.mu.Lock()
	fail := f.failSaves
	f.saves++
	f.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return f.Storage.SaveSession(ctx, s)
}

func (f *faultyStorage) setFailSaves(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSaves = fail
}

func (f *faultyStorage) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

type recordedResult struct {
	profileID model.ProfileID
	gameID    model.GameID
	score     int
	won       bool
}

// fakeRecorder captures results handed over at the end of a session
type fakeRecorder struct {
	results []recordedResult
	err     error
}

func (r *fakeRecorder) RecordGameResult(ctx context.Context, id model.ProfileID, gameID model.GameID, score int, won bool) error {
	r.results = append(r.results, recordedResult{id, gameID, score, won})
	return r.err
}
