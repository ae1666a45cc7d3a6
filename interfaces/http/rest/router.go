package rest

import (
	"net/http"

	"vaultgraph/application/ports"
	"vaultgraph/application/services"
	"vaultgraph/domain/core/valueobjects"
	"vaultgraph/infrastructure/config"
	"vaultgraph/interfaces/http/rest/handlers"
	"vaultgraph/interfaces/http/rest/middleware"
	apperrors "vaultgraph/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg            *config.Config
	graphService   *services.GraphService
	contextService *services.ContextService
	resolver       *services.ConnectionResolver
	store          ports.GraphStore
	views          ports.ViewStore
	logger         *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	graphService *services.GraphService,
	contextService *services.ContextService,
	resolver *services.ConnectionResolver,
	store ports.GraphStore,
	views ports.ViewStore,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:            cfg,
		graphService:   graphService,
		contextService: contextService,
		resolver:       resolver,
		store:          store,
		views:          views,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	errHandler := apperrors.NewErrorHandler(rt.logger, rt.cfg.IsDevelopment())

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		// Node and edge endpoints
		r.Route("/nodes", func(r chi.Router) {
			nodeHandler := handlers.NewNodeHandler(rt.graphService, rt.resolver, rt.store, errHandler, rt.logger)
			r.Post("/", nodeHandler.CreateNodes)
			r.Get("/", nodeHandler.GetNodeByPath)
			r.Get("/{nodeUUID}", nodeHandler.GetNode)
			r.Get("/{nodeUUID}/connections", nodeHandler.GetConnections)
		})

		r.Route("/edges", func(r chi.Router) {
			nodeHandler := handlers.NewNodeHandler(rt.graphService, rt.resolver, rt.store, errHandler, rt.logger)
			r.Post("/", nodeHandler.CreateEdge)
		})

		// Context and saved-view endpoints
		contextHandler := handlers.NewContextHandler(rt.contextService, rt.views, errHandler, rt.logger)
		r.Get("/context", contextHandler.OpenContext)
		r.Route("/views", func(r chi.Router) {
			r.Post("/", contextHandler.SaveView)
			r.Get("/{focalUUID}", contextHandler.GetView)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	// The store bootstraps at startup; reachable root means the engine is usable.
	if _, err := rt.store.GetNode(req.Context(), ports.UUIDHandle(valueobjects.RootUUID)); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
