package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/sjson"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/protocol"
)

// Client speaks the N-Echo line protocol over one TCP connection.
// Calls are serialized; the server answers requests strictly in order.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
}

// Dial connects to an N-Echo server.
func Dial(ctx context.Context, address string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// RemoteAddr returns the server address.
func (c *Client) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send asks the server to echo message n times.
func (c *Client) Send(ctx context.Context, n int, message string) (protocol.Response, error) {
	line, err := EncodeRequest(n, message)
	if err != nil {
		return nil, err
	}
	raw, err := c.Exchange(ctx, line)
	if err != nil {
		return nil, err
	}
	return protocol.DecodeResponse(raw)
}

// Exchange writes one raw request line and returns the raw response line
// without its terminator. It returns when ctx is done; the connection is
// then out of step with the server and should be closed.
func (c *Client) Exchange(ctx context.Context, line string) (string, error) {
	if strings.ContainsAny(line, "\r\n") {
		return "", fmt.Errorf("request must fit on a single line")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("failed to set deadline: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Cancellation interrupts blocked I/O by expiring the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return "", ioError(ctx, "failed to send request", err)
	}

	resp, err := c.reader.ReadString('\n')
	if err != nil {
		return "", ioError(ctx, "failed to read response", err)
	}
	return strings.TrimRight(resp, "\r\n"), nil
}

func ioError(ctx context.Context, op string, err error) error {
	if ctxErr := context.Cause(ctx); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Close closes the connection.
func (c *Client) Close() error {
	_ = c.conn.SetDeadline(time.Time{})
	return c.conn.Close()
}

// EncodeRequest renders a request line without terminator.
func EncodeRequest(n int, message string) (string, error) {
	line, err := sjson.Set("", "n", n)
	if err != nil {
		return "", fmt.Errorf("failed to encode n: %w", err)
	}
	if line, err = sjson.Set(line, "message", message); err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}
	return line, nil
}
