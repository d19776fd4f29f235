package factory

import (
	"time"

	"github.com/zn-har/Bingo/internal/dependencies/mocks"
	"github.com/zn-har/Bingo/internal/storage/memory"
	"github.com/zn-har/Bingo/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDGenerator
	MockQR    *mocks.MockQREncoder
}

// NewTestApp creates an App configured for testing with mocked dependencies,
// in-memory storage and the default rules with board shuffling disabled
func NewTestApp() *TestApp {
	cfg := DefaultGameConfig()
	cfg.ShuffleBoards = false
	return NewTestAppWithConfig(cfg)
}

// NewTestAppWithConfig creates a TestApp with the given game rules
func NewTestAppWithConfig(cfg GameConfig) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDGenerator()
	mockQR := mocks.NewMockQREncoder()

	app := newWithDependencies(store, mockClock, mockIDs, mockQR, cfg, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
		MockQR:    mockQR,
	}
}
