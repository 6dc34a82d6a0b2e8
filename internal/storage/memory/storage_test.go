package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/storage"
	"github.com/mcoot/tabletop-companion/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage { return New() }
	suite.Run(t, s)
}

func (s *StorageSuite) TestCorruptSessionRecord() {
	mem := s.Storage.(*Storage)
	mem.PutRawSession("broken", []byte(`{"id":"broken"}`))

	_, err := s.Storage.GetSession(s.Ctx, "broken")
	s.ErrorIs(err, model.ErrCorruptSession)

	ids, err := s.Storage.ListSessionIDs(s.Ctx)
	s.Require().NoError(err)
	s.Contains(ids, model.SessionID("broken"))
}

func (s *StorageSuite) TestCorruptProfileRecord() {
	mem := s.Storage.(*Storage)
	mem.PutRawProfile("broken", []byte(`not json`))

	_, err := s.Storage.GetProfile(s.Ctx, "broken")
	s.ErrorIs(err, model.ErrCorruptProfile)
}
