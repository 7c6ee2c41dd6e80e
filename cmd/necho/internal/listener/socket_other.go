//go:build !linux

package listener

import (
	"context"
	"net"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
)

// Socket falls back to the standard binder outside Linux; the backlog is
// then chosen by the kernel.
type Socket struct {
	Standard
}

func NewSocket() *Socket {
	return &Socket{}
}

func (b *Socket) Bind(ctx context.Context, cfg core.ServerConfig) (net.Listener, error) {
	return b.Standard.Bind(ctx, cfg)
}
