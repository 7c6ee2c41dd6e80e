package listener

import (
	"bufio"
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
)

func binders() map[string]core.Binder {
	return map[string]core.Binder{
		"socket":   NewSocket(),
		"standard": NewStandard(),
	}
}

func TestBindAcceptsConnections(t *testing.T) {
	for name, binder := range binders() {
		t.Run(name, func(t *testing.T) {
			ln, err := binder.Bind(context.Background(), core.ServerConfig{BindAddress: "127.0.0.1", Port: 0, Backlog: 5})
			require.NoError(t, err)
			defer ln.Close()

			go func() {
				conn, err := ln.Accept()
				if err != nil {
					return
				}
				defer conn.Close()
				_, _ = conn.Write([]byte("hello\n"))
			}()

			conn, err := net.Dial("tcp", ln.Addr().String())
			require.NoError(t, err)
			defer conn.Close()

			line, err := bufio.NewReader(conn).ReadString('\n')
			require.NoError(t, err)
			assert.Equal(t, "hello\n", line)
		})
	}
}

func TestBindRebindsAfterClose(t *testing.T) {
	for name, binder := range binders() {
		t.Run(name, func(t *testing.T) {
			cfg := core.ServerConfig{BindAddress: "127.0.0.1", Port: 0, Backlog: 5}
			ln, err := binder.Bind(context.Background(), cfg)
			require.NoError(t, err)

			// Leave a server-closed connection behind so the port has TIME_WAIT state.
			accepted := make(chan struct{})
			go func() {
				defer close(accepted)
				if conn, err := ln.Accept(); err == nil {
					conn.Close()
				}
			}()
			conn, err := net.Dial("tcp", ln.Addr().String())
			require.NoError(t, err)
			<-accepted
			conn.Close()

			cfg.Port = ln.Addr().(*net.TCPAddr).Port
			require.NoError(t, ln.Close())

			again, err := binder.Bind(context.Background(), cfg)
			require.NoError(t, err)
			assert.Equal(t, cfg.Port, again.Addr().(*net.TCPAddr).Port)
			require.NoError(t, again.Close())
		})
	}
}

func TestBindFailsWhenPortIsTaken(t *testing.T) {
	for name, binder := range binders() {
		t.Run(name, func(t *testing.T) {
			first, err := binder.Bind(context.Background(), core.ServerConfig{BindAddress: "127.0.0.1", Port: 0, Backlog: 5})
			require.NoError(t, err)
			defer first.Close()

			port := first.Addr().(*net.TCPAddr).Port
			_, err = binder.Bind(context.Background(), core.ServerConfig{BindAddress: "127.0.0.1", Port: port, Backlog: 5})
			assert.Error(t, err)
		})
	}
}

func TestSocketHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSocket().Bind(ctx, core.ServerConfig{BindAddress: "127.0.0.1", Port: 0, Backlog: 5})
	assert.ErrorIs(t, err, context.Canceled)
}
