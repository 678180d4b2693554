package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	httpmw "github.com/metaloot/registry/internal/middleware"
	"github.com/metaloot/registry/internal/services/custody"
	"github.com/metaloot/registry/internal/services/player"
	"github.com/metaloot/registry/internal/services/studio"
	"github.com/metaloot/registry/internal/web/handler"
	"github.com/metaloot/registry/internal/web/middleware"
)

// RouterConfig holds configuration for the explorer router
type RouterConfig struct {
	Logger         *slog.Logger
	StudioService  *studio.Service
	PlayerService  *player.Service
	CustodyService *custody.Service
}

// NewRouter creates the read-only registry explorer
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := httpmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(flashMiddleware)

	// Create handlers
	homeHandler := handler.NewHomeHandler()
	recordHandler := handler.NewRecordHandler(cfg.StudioService, cfg.PlayerService, cfg.CustodyService, cfg.Logger)

	r.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	r.HandleFunc("/search", homeHandler.Search).Methods(http.MethodGet)
	r.HandleFunc("/studios/{seed}", recordHandler.Studio).Methods(http.MethodGet)
	r.HandleFunc("/players/{seed}", recordHandler.Player).Methods(http.MethodGet)

	return r
}
