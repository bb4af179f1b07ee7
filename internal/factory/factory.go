package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/cantorhq/cantor/internal/coordinator"
	"github.com/cantorhq/cantor/internal/dependencies/clock"
	"github.com/cantorhq/cantor/internal/dependencies/random"
	"github.com/cantorhq/cantor/internal/services/auth"
	"github.com/cantorhq/cantor/internal/services/payment"
	"github.com/cantorhq/cantor/internal/services/room"
	"github.com/cantorhq/cantor/internal/services/wallet"
	"github.com/cantorhq/cantor/internal/storage"
	"github.com/cantorhq/cantor/internal/storage/memory"
	redisstorage "github.com/cantorhq/cantor/internal/storage/redis"
	"github.com/cantorhq/cantor/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService    *auth.Service
	WalletService  *wallet.Service
	PaymentService *payment.Service
	Coordinator    *coordinator.Coordinator
	Hub            *ws.Hub

	closeStorage func() error
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// RoomConfig holds room timing and bot settings (optional)
	// If zero value, defaults to room.DefaultConfig()
	RoomConfig room.Config
	// PaymentConfig holds checkout settings (optional)
	// If zero value, defaults to payment.DefaultConfig()
	PaymentConfig payment.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired. The room
// coordinator's loop is started; call Close to stop it.
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	var closeStorage func() error
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closeStorage = redisStore.Close
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default configs where the caller gave zero values
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}
	roomCfg := cfg.RoomConfig
	if roomCfg.ClaimWindow == 0 {
		roomCfg = room.DefaultConfig()
	}
	paymentCfg := cfg.PaymentConfig
	if paymentCfg.CheckoutBaseURL == "" {
		paymentCfg = payment.DefaultConfig()
	}

	app := newWithDependencies(store, clk, rnd, authCfg, roomCfg, paymentCfg, logger)
	app.closeStorage = closeStorage
	go app.Coordinator.Run()

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing).
// It does not start the coordinator loop.
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	roomCfg room.Config,
	paymentCfg payment.Config,
	logger *slog.Logger,
) *App {
	// Create services
	authService := auth.New(store, clk, authCfg)
	walletService := wallet.New(store, clk, logger, wallet.DefaultConfig())
	paymentService := payment.New(store, clk, logger, paymentCfg)
	hub := ws.NewHub(logger)

	coord := coordinator.New(roomCfg, coordinator.Deps{
		Clock:  clk,
		Random: rnd,
		Sink:   walletService,
		Sender: hub,
		Logger: logger,
	})

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		AuthService:    authService,
		WalletService:  walletService,
		PaymentService: paymentService,
		Coordinator:    coord,
		Hub:            hub,
	}
}

// Close stops the coordinator loop, flushes pending wallet writes, and
// releases the storage backend.
func (a *App) Close() error {
	a.Coordinator.Stop()
	a.WalletService.Close()
	if a.closeStorage != nil {
		return a.closeStorage()
	}
	return nil
}
