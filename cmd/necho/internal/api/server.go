package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/logger"
)

// StatusSource is the part of the echo server the health endpoints read.
type StatusSource interface {
	Accepting() bool
	Stats() core.Stats
}

type HealthServer struct {
	server *http.Server
	source StatusSource
}

func NewHealthServer(addr string, source StatusSource) *HealthServer {
	mux := http.NewServeMux()
	hs := &HealthServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		source: source,
	}

	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/ready", hs.handleReady)
	mux.HandleFunc("/stats", hs.handleStats)

	return hs
}

// Handler exposes the routes, mainly for tests.
func (s *HealthServer) Handler() http.Handler {
	return s.server.Handler
}

// Serve listens and blocks until Stop is called.
func (s *HealthServer) Serve() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	logger.Info("Health server listening", "addr", ln.Addr().String())
	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HealthServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.source != nil && s.source.Accepting() {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	}
}

func (s *HealthServer) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats core.Stats
	if s.source != nil {
		stats = s.source.Stats()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		logger.Error("Failed to write stats", "error", err)
	}
}
