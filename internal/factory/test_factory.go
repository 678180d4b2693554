package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/dependencies/mocks"
	"github.com/metaloot/registry/internal/storage"
	"github.com/metaloot/registry/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
}

// NewTestApp creates an in-memory App configured for testing with mocked
// dependencies and the faucet enabled
func NewTestApp() *TestApp {
	return NewTestAppWithStore(memory.New())
}

// NewTestAppWithStore is NewTestApp over the given store
func NewTestAppWithStore(store storage.Store) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, address.DefaultProgramID, true, logger)

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mocks.NewMockIDs(),
	}
}
