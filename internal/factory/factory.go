package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/dependencies/clock"
	"github.com/metaloot/registry/internal/metrics"
	"github.com/metaloot/registry/internal/processor"
	"github.com/metaloot/registry/internal/services/custody"
	"github.com/metaloot/registry/internal/services/player"
	"github.com/metaloot/registry/internal/services/records"
	"github.com/metaloot/registry/internal/services/studio"
	"github.com/metaloot/registry/internal/services/system"
	"github.com/metaloot/registry/internal/services/tokenledger"
	"github.com/metaloot/registry/internal/services/transfer"
	"github.com/metaloot/registry/internal/storage"
	"github.com/metaloot/registry/internal/storage/memory"
	redisstorage "github.com/metaloot/registry/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock    clock.Clock
	Deriver  *address.Deriver
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Services
	SystemService   *system.Service
	TokenLedger     *tokenledger.Service
	StudioService   *studio.Service
	PlayerService   *player.Service
	CustodyService  *custody.Service
	TransferService *transfer.Service
	Processor       *processor.Processor
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// ProgramID is the registry program addresses are derived under
	// If zero, defaults to address.DefaultProgramID
	ProgramID solana.PublicKey
	// FaucetEnabled allows airdrop instructions
	FaucetEnabled bool
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Store
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
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	programID := cfg.ProgramID
	if programID.IsZero() {
		programID = address.DefaultProgramID
	}

	return newWithDependencies(store, clock.New(), programID, cfg.FaucetEnabled, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, programID solana.PublicKey, faucet bool, logger *slog.Logger) *App {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	deriver := address.New(programID)

	// Create services
	systemService := system.New(store, logger)
	ledger := tokenledger.New(store, systemService, logger)
	repo := records.New(deriver, systemService)
	studioService := studio.New(store, repo, logger)
	playerService := player.New(store, repo, clk, logger)
	custodyService := custody.New(store, repo, ledger, logger)
	transferService := transfer.New(store, repo, ledger, logger)

	proc := processor.New(processor.Services{
		System:   systemService,
		Ledger:   ledger,
		Studio:   studioService,
		Player:   playerService,
		Custody:  custodyService,
		Transfer: transferService,
	}, store, clk, m, logger, processor.Config{FaucetEnabled: faucet})

	return &App{
		Storage:         store,
		Clock:           clk,
		Deriver:         deriver,
		Registry:        registry,
		Metrics:         m,
		SystemService:   systemService,
		TokenLedger:     ledger,
		StudioService:   studioService,
		PlayerService:   playerService,
		CustodyService:  custodyService,
		TransferService: transferService,
		Processor:       proc,
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
