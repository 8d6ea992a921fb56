package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/quantforge/ta/pkg/config"
	"github.com/quantforge/ta/pkg/database"
)

// Server provides the REST API and WebSocket endpoints
type Server struct {
	config     *config.Config
	logger     zerolog.Logger
	db         *database.DB
	server     *http.Server
	wsUpgrader websocket.Upgrader
}

// New creates a new API server
func New(cfg *config.Config, logger zerolog.Logger, db *database.DB) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		wsUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router(),
		ReadTimeout:  s.config.Server.Timeout,
		WriteTimeout: s.config.Server.Timeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", s.config.Server.Port).Msg("Starting API server")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Stopping API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.trackInFlight)

	// CORS for development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

			if r.Method == "OPTIONS" {
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Routes; the websocket lives outside the timeout so long sessions
	// keep a live request context
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(s.config.Server.Timeout))
		r.Get("/health", s.handleHealth)

		r.Route("/indicators", func(r chi.Router) {
			r.Get("/", s.handleListIndicators)
			r.Get("/{name}", s.handleGetIndicator)
			r.Post("/{name}", s.handleComputeIndicator)
		})

		r.Get("/candles/{symbol}", s.handleGetCandles)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/ws", s.handleWebSocket)

	return r
}
