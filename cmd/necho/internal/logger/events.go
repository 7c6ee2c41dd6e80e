package logger

import (
	"errors"
	"log/slog"
	"net"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
)

// EventLogger writes server notifications to a slog.Logger.
// It satisfies core.EventSink and echo.Observer.
type EventLogger struct {
	log *slog.Logger
}

// NewEventLogger wraps l; a nil l uses the global logger.
func NewEventLogger(l *slog.Logger) *EventLogger {
	if l == nil {
		l = With("component", "server")
	}
	return &EventLogger{log: l}
}

func (e *EventLogger) Listening(addr net.Addr) {
	e.log.Info("Server listening", "addr", addr.String())
}

func (e *EventLogger) ConnectionOpened(peer net.Addr) {
	e.log.Info("Client connected", "remote_addr", peer)
}

func (e *EventLogger) LineReceived(peer net.Addr, line string) {
	e.log.Debug("Request received", "remote_addr", peer, "line", line)
}

func (e *EventLogger) Responded(peer net.Addr, n int) {
	e.log.Info("Echo sent", "remote_addr", peer, "n", n)
}

func (e *EventLogger) ConnectionClosed(peer net.Addr) {
	e.log.Info("Client disconnected", "remote_addr", peer)
}

func (e *EventLogger) ConnectionFailed(peer net.Addr, err error) {
	if errors.Is(err, core.ErrIdleTimeout) {
		e.log.Info("Closing idle connection", "remote_addr", peer, "reason", err)
		return
	}
	e.log.Error("Connection error", "remote_addr", peer, "error", err)
}

func (e *EventLogger) BindFailed(address string, err error) {
	e.log.Error("Failed to bind listener", "addr", address, "error", err)
}

func (e *EventLogger) AcceptFailed(err error) {
	e.log.Error("Accept failed, shutting down", "error", err)
}

func (e *EventLogger) StopRequested() {
	e.log.Info("Stop requested")
}
