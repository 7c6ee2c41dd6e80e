package listener

import (
	"context"
	"net"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
)

// Standard binds through net.ListenConfig. The backlog is left to the
// kernel default; SO_REUSEADDR is set where the platform supports it.
type Standard struct{}

func NewStandard() *Standard {
	return &Standard{}
}

func (b *Standard) Bind(ctx context.Context, cfg core.ServerConfig) (net.Listener, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lc := net.ListenConfig{Control: reuseAddrControl}
	return lc.Listen(ctx, "tcp", cfg.Address())
}
