package factory

import (
	"time"

	"github.com/cantorhq/cantor/internal/dependencies/mocks"
	"github.com/cantorhq/cantor/internal/services/auth"
	"github.com/cantorhq/cantor/internal/services/payment"
	"github.com/cantorhq/cantor/internal/services/room"
	"github.com/cantorhq/cantor/internal/storage/memory"
	"github.com/cantorhq/cantor/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The coordinator loop is started; call Close when done.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(
		store, mockClock, mockRandom,
		auth.DefaultConfig(), room.DefaultConfig(), payment.DefaultConfig(),
		testutil.NopLogger(),
	)
	go app.Coordinator.Run()

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
