package factory

import (
	"time"

	"github.com/mcoot/tabletop-companion/internal/dependencies/mocks"
	"github.com/mcoot/tabletop-companion/internal/services/catalog"
	"github.com/mcoot/tabletop-companion/internal/storage/memory"
	"github.com/mcoot/tabletop-companion/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
	MemoryStore *memory.Storage
}

// NewTestApp creates an App over the built-in catalog and in-memory
// storage, with mocked clock and random sources
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	defs, err := catalog.Builtin()
	if err != nil {
		panic(err)
	}
	games, err := catalog.New(defs)
	if err != nil {
		panic(err)
	}

	app := newWithDependencies(store, games, mockClock, mockRandom, testutil.NopLogger())

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		MemoryStore: store,
	}
}
