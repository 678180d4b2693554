package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/api/apierr"
	"github.com/metaloot/registry/internal/api/handler"
	"github.com/metaloot/registry/internal/api/response"
	"github.com/metaloot/registry/internal/middleware"
	"github.com/metaloot/registry/internal/processor"
	"github.com/metaloot/registry/internal/services/custody"
	"github.com/metaloot/registry/internal/services/player"
	"github.com/metaloot/registry/internal/services/studio"
	"github.com/metaloot/registry/internal/services/system"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Processor      *processor.Processor
	StudioService  *studio.Service
	PlayerService  *player.Service
	CustodyService *custody.Service
	SystemService  *system.Service
	Deriver        *address.Deriver
	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	// Create handlers
	transactionHandler := handler.NewTransactionHandler(cfg.Processor)
	registryHandler := handler.NewRegistryHandler(cfg.StudioService, cfg.PlayerService, cfg.CustodyService)
	accountHandler := handler.NewAccountHandler(cfg.SystemService, cfg.Deriver)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})

	// Operational endpoints
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/transactions", transactionHandler.Submit).Methods(http.MethodPost)

	api.HandleFunc("/studios/{seed}", registryHandler.GetStudio).Methods(http.MethodGet)
	api.HandleFunc("/studios/{seed}/custody/{mint}", registryHandler.GetStudioCustody).Methods(http.MethodGet)
	api.HandleFunc("/players/{seed}", registryHandler.GetPlayer).Methods(http.MethodGet)
	api.HandleFunc("/custody/{mint}/{seed}", registryHandler.GetCustody).Methods(http.MethodGet)

	api.HandleFunc("/accounts/{address}", accountHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/derive/{tag}/{seed}", accountHandler.Derive).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
