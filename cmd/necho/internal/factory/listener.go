package factory

import (
	"fmt"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/config"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/listener"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/logger"
)

// ListenerFactory creates binders based on configuration
type ListenerFactory struct {
	cfg *config.Config
}

// NewListenerFactory creates a new listener factory
func NewListenerFactory(cfg *config.Config) *ListenerFactory {
	return &ListenerFactory{cfg: cfg}
}

// Create creates a binder for the configured listener mode
func (f *ListenerFactory) Create() (core.Binder, error) {
	switch f.cfg.ListenerMode {
	case config.ListenerModeSocket:
		logger.Debug("Creating socket binder", "backlog", f.cfg.Backlog)
		return listener.NewSocket(), nil
	case config.ListenerModeStandard:
		logger.Debug("Creating standard binder")
		return listener.NewStandard(), nil
	default:
		return nil, fmt.Errorf("unknown listener mode: %s", f.cfg.ListenerMode)
	}
}
