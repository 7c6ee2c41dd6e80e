package protocol

import (
	"errors"
)

// Status values carried in the "status" field of every response line.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Request is a single decoded N-Echo request line.
type Request struct {
	N       int
	Message string
}

// Response is either a Success or a Failure.
type Response interface {
	response()
}

// Success holds the echoed message, repeated N times.
type Success struct {
	N      int
	Echoes []string
}

// Failure describes why a request could not be served.
type Failure struct {
	Message string
}

func (Success) response() {}
func (Failure) response() {}

var (
	ErrMalformed    = errors.New("malformed request")
	ErrMissingField = errors.New("missing required field")
	ErrNotInteger   = errors.New("n is not an integer")
	ErrNotString    = errors.New("message is not a string")
)

// DecodeError reports why a request line could not be decoded.
// Its Error text is sent to the peer verbatim.
type DecodeError struct {
	Reason error
	Detail string
}

func (e *DecodeError) Error() string {
	switch e.Reason {
	case ErrMalformed:
		return "Invalid JSON format: " + e.Detail
	case ErrMissingField:
		return "Missing 'n' or 'message' field"
	case ErrNotInteger:
		return "'n' must be an integer"
	case ErrNotString:
		return "'message' must be a string"
	default:
		return e.Detail
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Reason
}
