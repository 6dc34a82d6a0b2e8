package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tabletop-companion/internal/dependencies/mocks"
	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/storage/memory"
	"github.com/mcoot/tabletop-companion/internal/storage/storagetest"
	"github.com/mcoot/tabletop-companion/internal/testutil"
)

type RepositorySuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	logs    *testutil.LogBuffer
	repo    *Repository
	ctx     context.Context
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger, logs := testutil.CaptureLogger()
	s.logs = logs
	s.repo = NewRepository(s.storage, s.clock, logger)
	s.ctx = context.Background()
}

func (s *RepositorySuite) TestSaveStampsLastUpdatedAt() {
	session := storagetest.NewSession("session-1")
	s.clock.Advance(time.Hour)

	s.Require().NoError(s.repo.Save(s.ctx, session))

	s.Equal(s.clock.Now(), session.LastUpdatedAt)
	loaded, err := s.repo.Load(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(s.clock.Now(), loaded.LastUpdatedAt)
}

func (s *RepositorySuite) TestSaveLoadRoundTrip() {
	session := storagetest.NewSession("session-1")
	before := session.LastUpdatedAt
	s.clock.Advance(time.Minute)

	s.Require().NoError(s.repo.Save(s.ctx, session.Clone()))

	loaded, err := s.repo.Load(s.ctx, "session-1")
	s.Require().NoError(err)
	s.False(loaded.LastUpdatedAt.Before(before))

	loaded.LastUpdatedAt = session.LastUpdatedAt
	s.Equal(session, loaded)
}

func (s *RepositorySuite) TestLoadMissing() {
	_, err := s.repo.Load(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *RepositorySuite) TestLoadCorruptFailsClosed() {
	s.storage.PutRawSession("broken", []byte(`{"id":"broken","game_id":"duel"}`))

	session, err := s.repo.Load(s.ctx, "broken")
	s.ErrorIs(err, model.ErrCorruptSession)
	s.Nil(session)
}

func (s *RepositorySuite) TestListAllSkipsCorruptRecords() {
	s.Require().NoError(s.repo.Save(s.ctx, storagetest.NewSession("session-1")))
	s.Require().NoError(s.repo.Save(s.ctx, storagetest.NewSession("session-2")))
	s.storage.PutRawSession("broken", []byte(`{`))

	sessions, err := s.repo.ListAll(s.ctx)
	s.Require().NoError(err)

	ids := make([]model.SessionID, len(sessions))
	for i, session := range sessions {
		ids[i] = session.ID
	}
	s.ElementsMatch([]model.SessionID{"session-1", "session-2"}, ids)
	s.Contains(s.logs.String(), "skipping corrupt session")
}

func (s *RepositorySuite) TestDeleteActiveClearsPointer() {
	s.Require().NoError(s.repo.Save(s.ctx, storagetest.NewSession("session-1")))
	s.Require().NoError(s.repo.SetActive(s.ctx, "session-1"))

	s.Require().NoError(s.repo.Delete(s.ctx, "session-1"))

	id, err := s.repo.ActiveID(s.ctx)
	s.Require().NoError(err)
	s.Empty(id)
	raw, err := s.storage.GetActiveSessionID(s.ctx)
	s.Require().NoError(err)
	s.Empty(raw)
}

func (s *RepositorySuite) TestDeleteOtherKeepsPointer() {
	s.Require().NoError(s.repo.Save(s.ctx, storagetest.NewSession("session-1")))
	s.Require().NoError(s.repo.Save(s.ctx, storagetest.NewSession("session-2")))
	s.Require().NoError(s.repo.SetActive(s.ctx, "session-1"))

	s.Require().NoError(s.repo.Delete(s.ctx, "session-2"))

	id, err := s.repo.ActiveID(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.SessionID("session-1"), id)
}

func (s *RepositorySuite) TestDeleteAllClearsEverything() {
	s.Require().NoError(s.repo.Save(s.ctx, storagetest.NewSession("session-1")))
	s.Require().NoError(s.repo.SetActive(s.ctx, "session-1"))

	s.Require().NoError(s.repo.DeleteAll(s.ctx))

	sessions, err := s.repo.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
	id, err := s.repo.ActiveID(s.ctx)
	s.Require().NoError(err)
	s.Empty(id)
}

func (s *RepositorySuite) TestActiveIDClearsDanglingPointer() {
	s.Require().NoError(s.repo.SetActive(s.ctx, "gone"))

	id, err := s.repo.ActiveID(s.ctx)
	s.Require().NoError(err)
	s.Empty(id)

	raw, err := s.storage.GetActiveSessionID(s.ctx)
	s.Require().NoError(err)
	s.Empty(raw, "dangling pointer should be cleared on read")
}

func (s *RepositorySuite) TestClearActive() {
	s.Require().NoError(s.repo.Save(s.ctx, storagetest.NewSession("session-1")))
	s.Require().NoError(s.repo.SetActive(s.ctx, "session-1"))

	s.Require().NoError(s.repo.ClearActive(s.ctx))

	id, err := s.repo.ActiveID(s.ctx)
	s.Require().NoError(err)
	s.Empty(id)

	_, err = s.repo.Load(s.ctx, "session-1")
	s.NoError(err, "clearing the pointer keeps the record")
}

func (s *RepositorySuite) TestStorageFailurePropagates() {
	faulty := &faultyStorage{Storage: s.storage, failSaves: true}
	repo := NewRepository(faulty, s.clock, testutil.NopLogger())

	err := repo.Save(s.ctx, storagetest.NewSession("session-1"))
	s.ErrorIs(err, errDiskFull)
	s.Equal(1, faulty.saveCount(), "no retries")
}
