package listener

import (
	"context"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
)

// Socket creates the listening socket by hand so that the configured backlog
// is passed to listen(2) unchanged. SO_REUSEADDR is always enabled so a
// restarted server can rebind while old connections sit in TIME_WAIT.
type Socket struct{}

func NewSocket() *Socket {
	return &Socket{}
}

func (b *Socket) Bind(ctx context.Context, cfg core.ServerConfig) (net.Listener, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr, err := net.ResolveTCPAddr("tcp", cfg.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", cfg.Address(), err)
	}

	family, sa := sockaddr(addr)
	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}

	if err := setup(fd, family, sa, cfg.Backlog); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	// FileListener dups the descriptor, so the file is closed either way.
	file := os.NewFile(uintptr(fd), "necho-listener")
	defer file.Close()

	ln, err := net.FileListener(file)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap listening socket: %w", err)
	}
	return ln, nil
}

func setup(fd, family int, sa unix.Sockaddr, backlog int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	if family == unix.AF_INET6 {
		// Accept IPv4-mapped peers on wildcard IPv6 binds, like net.Listen does.
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0); err != nil {
			return os.NewSyscallError("setsockopt", err)
		}
	}
	if err := unix.Bind(fd, sa); err != nil {
		return os.NewSyscallError("bind", err)
	}
	if backlog <= 0 {
		backlog = unix.SOMAXCONN
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return os.NewSyscallError("listen", err)
	}
	return nil
}

func sockaddr(addr *net.TCPAddr) (int, unix.Sockaddr) {
	if addr.IP == nil {
		return unix.AF_INET, &unix.SockaddrInet4{Port: addr.Port}
	}
	if ip4 := addr.IP.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa
	}

	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], addr.IP.To16())
	if addr.Zone != "" {
		if ifi, err := net.InterfaceByName(addr.Zone); err == nil {
			sa.ZoneId = uint32(ifi.Index)
		}
	}
	return unix.AF_INET6, sa
}
