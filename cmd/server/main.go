package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/metaloot/registry/internal/api"
	"github.com/metaloot/registry/internal/config"
	"github.com/metaloot/registry/internal/factory"
	redisstorage "github.com/metaloot/registry/internal/storage/redis"
	"github.com/metaloot/registry/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := cfg.Level()
	programID, _ := cfg.Program()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	factoryCfg := factory.Config{
		Logger:        logger,
		StorageType:   cfg.Storage,
		ProgramID:     programID,
		FaucetEnabled: cfg.FaucetEnabled,
	}
	if cfg.Storage == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.MaxRetries = cfg.MaxRetries
		redisCfg.ProcessedTTL = cfg.ProcessedTTL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Processor:      app.Processor,
		StudioService:  app.StudioService,
		PlayerService:  app.PlayerService,
		CustodyService: app.CustodyService,
		SystemService:  app.SystemService,
		Deriver:        app.Deriver,
		Gatherer:       app.Registry,
	})

	// Create explorer router
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		StudioService:  app.StudioService,
		PlayerService:  app.PlayerService,
		CustodyService: app.CustodyService,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/health", apiRouter)
	mux.Handle("/metrics", apiRouter)
	mux.Handle("/", webRouter)

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.Addr
	serverConfig.ShutdownTimeout = cfg.ShutdownTimeout
	server := api.NewServer(mux, serverConfig, logger)

	// Serve until SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting",
		slog.String("addr", cfg.Addr),
		slog.String("storage", cfg.Storage),
		slog.String("program_id", programID.String()),
		slog.Bool("faucet", cfg.FaucetEnabled),
	)

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
