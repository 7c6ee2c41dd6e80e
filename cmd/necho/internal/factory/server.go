package factory

import (
	"github.com/hasirciogluhq/necho/cmd/necho/internal/config"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/echo"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/logger"
)

// ServerFactory wires the echo server from configuration
type ServerFactory struct {
	cfg *config.Config
}

// NewServerFactory creates a new server factory
func NewServerFactory(cfg *config.Config) *ServerFactory {
	return &ServerFactory{cfg: cfg}
}

// Create builds a server with its binder, handler and event logger.
func (f *ServerFactory) Create() (*core.Server, error) {
	binder, err := NewListenerFactory(f.cfg).Create()
	if err != nil {
		return nil, err
	}

	events := logger.NewEventLogger(nil)

	handler := echo.NewHandler(events)
	handler.MaxResponseBytes = f.cfg.MaxResponseBytes

	return &core.Server{
		Config:       f.cfg.ServerConfig(),
		Binder:       binder,
		Handler:      handler,
		Events:       events,
		MaxLineBytes: f.cfg.MaxLineBytes,
		IdleTimeout:  f.cfg.IdleTimeout,
	}, nil
}
