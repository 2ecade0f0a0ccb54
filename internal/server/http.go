package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/fermisquasar/Filling-the-Void/internal/config"
	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
)

// HTTPServer exposes the telemetry hub: the latest snapshot as JSON, a
// websocket feed and a health probe.
type HTTPServer struct {
	cfg    config.TelemetryConfig
	hub    *Hub
	logger log.Log

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

func NewHTTPServer(cfg config.TelemetryConfig, hub *Hub, logger log.Log) *HTTPServer {
	if logger == nil {
		logger = log.NewNop()
	}
	return &HTTPServer{
		cfg:    cfg,
		hub:    hub,
		logger: logger.With(log.String("component", "http")),
	}
}

// HubConfigFrom maps the telemetry section onto hub settings.
func HubConfigFrom(cfg config.TelemetryConfig) HubConfig {
	return HubConfig{
		BroadcastHz:    cfg.BroadcastHz,
		Burst:          cfg.Burst,
		MaxClients:     cfg.MaxClients,
		AllowedOrigins: cfg.AllowedOrigins,
	}
}

func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /ws", s.hub.ServeWS)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	return c.Handler(mux)
}

func (s *HTTPServer) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	msg, err := s.hub.Latest()
	if err != nil {
		s.logger.Error("Failed to encode snapshot", log.Error(err))
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	if msg == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(msg)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.hub.Clients(),
	})
}

// Start listens on the configured address and serves in the background.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return ErrServerAlreadyRunning
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return errors.Join(ErrListenerFailed, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.done = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Telemetry server failed", log.Error(err))
		}
	}(s.server, s.done)

	s.logger.Info("Telemetry server listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr is the bound address, useful with port 0.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop closes the hub, then shuts the HTTP server down.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.server, s.done
	s.server, s.listener = nil, nil
	s.mu.Unlock()
	if srv == nil {
		return ErrServerNotRunning
	}

	if err := s.hub.Close(); err != nil && !errors.Is(err, ErrServerClosed) {
		s.logger.Warn("Failed to close hub", log.Error(err))
	}
	err := srv.Shutdown(ctx)
	<-done
	s.logger.Info("Telemetry server stopped")
	return err
}
