// Package host serves diagram nodes over HTTP: a browser editor page, a
// websocket event channel bound to a session.Session, and a small JSON API
// over the node store and the codec.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/corbenferris/figjam-plantuml/internal/events"
	"github.com/corbenferris/figjam-plantuml/internal/render"
	"github.com/corbenferris/figjam-plantuml/internal/session"
	"github.com/corbenferris/figjam-plantuml/internal/store"
)

// Config holds server configuration.
type Config struct {
	Port         int
	AllowAll     bool          // allow all CORS origins (dev mode)
	RenderServer string        // PlantUML rendering service base URL
	Debounce     time.Duration // preview debounce for editor sessions
}

// Server hosts diagram nodes for browser editing.
type Server struct {
	cfg        Config
	nodes      *store.Store
	fetcher    render.Fetcher
	logger     *slog.Logger
	bus        *events.Bus
	router     chi.Router
	httpServer *http.Server
}

// New creates a server over the node store. fetcher renders diagrams on
// submission.
func New(cfg Config, nodes *store.Store, fetcher render.Fetcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		nodes:   nodes,
		fetcher: fetcher,
		logger:  logger,
		bus:     events.NewBus(),
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Websockets outlive any request timeout.
	r.Get("/ws/nodes/{id}", s.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/nodes/{id}/edit", s.handleEditor)
		registerNodeRoutes(r, s.nodes, s.cfg.RenderServer)
		registerCodecRoutes(r, s.cfg.RenderServer)
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Nodes returns the node store.
func (s *Server) Nodes() *store.Store { return s.nodes }

// Events returns the bus every editor session publishes to, after the
// event has been persisted and delivered to its view.
func (s *Server) Events() *events.Bus { return s.bus }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

func (s *Server) newSession(initial session.State, emitter events.Emitter) *session.Session {
	return session.New(session.Options{
		Server:   s.cfg.RenderServer,
		Initial:  initial,
		Fetcher:  s.fetcher,
		Emitter:  emitter,
		Debounce: s.cfg.Debounce,
		Logger:   s.logger,
	})
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("umlwidget host listening", "addr", addr, "render_server", s.cfg.RenderServer)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
