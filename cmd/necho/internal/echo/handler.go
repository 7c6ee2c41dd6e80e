package echo

import (
	"fmt"
	"net"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/protocol"
)

const (
	msgNotPositive  = "n must be a positive integer"
	msgEmptyMessage = "message must not be empty"
)

// DefaultMaxResponseBytes bounds the echoes of one response when
// MaxResponseBytes is unset.
const DefaultMaxResponseBytes = 4 << 20

// Observer receives a notification for every successful response.
type Observer interface {
	Responded(peer net.Addr, n int)
}

// Handler validates requests and builds N-Echo responses.
// It holds no per-connection state and is safe for concurrent use.
type Handler struct {
	Observer Observer

	// MaxResponseBytes limits the encoded size of the echoes in one
	// response. Zero means DefaultMaxResponseBytes.
	MaxResponseBytes int
}

// NewHandler creates a handler; observer may be nil.
func NewHandler(observer Observer) *Handler {
	return &Handler{Observer: observer}
}

// HandleLine decodes a raw request line and handles it.
// Decode failures become Failure responses.
func (h *Handler) HandleLine(peer net.Addr, line string) (resp protocol.Response) {
	defer recoverInto(&resp)

	req, err := protocol.Decode(line)
	if err != nil {
		return protocol.Failure{Message: err.Error()}
	}
	return h.Handle(peer, req)
}

// Handle validates req and returns the response. It never panics.
func (h *Handler) Handle(peer net.Addr, req protocol.Request) (resp protocol.Response) {
	defer recoverInto(&resp)

	if req.N <= 0 {
		return protocol.Failure{Message: msgNotPositive}
	}
	if req.Message == "" {
		return protocol.Failure{Message: msgEmptyMessage}
	}
	// Each echo costs the message plus two quotes and a comma once encoded.
	limit := h.maxResponseBytes()
	if req.N > limit/(len(req.Message)+3) {
		return protocol.Failure{Message: fmt.Sprintf("response would exceed %d bytes", limit)}
	}

	echoes := make([]string, req.N)
	for i := range echoes {
		echoes[i] = req.Message
	}

	if h.Observer != nil {
		h.Observer.Responded(peer, req.N)
	}

	return protocol.Success{N: req.N, Echoes: echoes}
}

func (h *Handler) maxResponseBytes() int {
	if h.MaxResponseBytes <= 0 {
		return DefaultMaxResponseBytes
	}
	return h.MaxResponseBytes
}

func recoverInto(resp *protocol.Response) {
	if r := recover(); r != nil {
		*resp = protocol.Failure{Message: fmt.Sprintf("Internal server error: %v", r)}
	}
}
