// Package api is a read-only HTTP/WebSocket monitoring surface over a
// running engine: GET /health, GET /api/snapshot, and a GET /ws feed that
// pushes the same snapshot on an interval. Adapted from the teacher's
// multi-market dashboard, narrowed to the single-engine, single-strategy
// shape this module's Engine actually runs.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"okx-trading-core/internal/config"
	"okx-trading-core/pkg/types"
)

// snapshotPushInterval is how often the WebSocket feed pushes a fresh
// snapshot to connected clients. The monitor has no hook into the engine's
// internal event loop (spec section 5: no shared mutable state between
// broker and strategy, and the engine exposes no event channel), so it
// polls the provider instead of being pushed to.
const snapshotPushInterval = 2 * time.Second

// Server runs the monitoring HTTP/WebSocket API.
type Server struct {
	cfg         config.APIConfig
	provider    Provider
	instruments []types.InstrumentID
	hub         *Hub
	handlers    *Handlers
	server      *http.Server
	logger      *slog.Logger
	stop        chan struct{}
}

// NewServer creates a new monitoring API server.
func NewServer(
	cfg config.APIConfig,
	provider Provider,
	instruments []types.InstrumentID,
	logger *slog.Logger,
) *Server {
	hub := NewHub(logger)
	handlers := NewHandlers(provider, instruments, cfg, hub, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.HandleHealth)
	mux.HandleFunc("/api/snapshot", handlers.HandleSnapshot)
	mux.HandleFunc("/ws", handlers.HandleWebSocket)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		cfg:         cfg,
		provider:    provider,
		instruments: instruments,
		hub:         hub,
		handlers:    handlers,
		server:      server,
		logger:      logger.With("component", "api-server"),
		stop:        make(chan struct{}),
	}
}

// Start runs the periodic snapshot pusher and the HTTP server. The hub
// itself needs no goroutine of its own: registration and broadcast are
// synchronous methods. Blocks until the server stops; call Stop from
// another goroutine to end it gracefully.
func (s *Server) Start() error {
	go s.pushSnapshots()

	s.logger.Info("monitoring server starting", "addr", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop() error {
	s.logger.Info("stopping monitoring server")
	close(s.stop)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *Server) pushSnapshots() {
	ticker := time.NewTicker(snapshotPushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.hub.BroadcastSnapshot(BuildSnapshot(s.provider, s.instruments))
		}
	}
}
