package core

import (
	"context"
	"net"
	"strconv"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/protocol"
)

// ServerConfig describes the listening endpoint. It is not modified after
// the server is constructed.
type ServerConfig struct {
	BindAddress string
	Port        int
	Backlog     int
}

// Address returns the host:port pair to bind.
func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.Port))
}

// Binder acquires the listening endpoint.
// Implementations must enable address reuse and honour the backlog where
// the platform allows it.
type Binder interface {
	Bind(ctx context.Context, cfg ServerConfig) (net.Listener, error)
}

// RequestHandler turns one received line into a response.
// It must be safe for concurrent use and must not panic.
type RequestHandler interface {
	HandleLine(peer net.Addr, line string) protocol.Response
}

// EventSink receives advisory notifications from the server.
// Implementations must not block for long; they never affect control flow.
type EventSink interface {
	Listening(addr net.Addr)
	ConnectionOpened(peer net.Addr)
	LineReceived(peer net.Addr, line string)
	ConnectionClosed(peer net.Addr)
	ConnectionFailed(peer net.Addr, err error)
	BindFailed(address string, err error)
	AcceptFailed(err error)
	StopRequested()
}

// Stats is a snapshot of the server counters.
type Stats struct {
	ActiveConnections int64 `json:"active_connections"`
	TotalConnections  int64 `json:"total_connections"`
	LinesProcessed    int64 `json:"lines_processed"`
}

type nopSink struct{}

func (nopSink) Listening(net.Addr)               {}
func (nopSink) ConnectionOpened(net.Addr)        {}
func (nopSink) LineReceived(net.Addr, string)    {}
func (nopSink) ConnectionClosed(net.Addr)        {}
func (nopSink) ConnectionFailed(net.Addr, error) {}
func (nopSink) BindFailed(string, error)         {}
func (nopSink) AcceptFailed(error)               {}
func (nopSink) StopRequested()                   {}
