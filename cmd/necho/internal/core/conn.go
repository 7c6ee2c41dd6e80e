package core

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/protocol"
)

var errLineTooLong = errors.New("request line too long")

// serveConn owns conn for its whole lifetime and closes it exactly once.
func (s *Server) serveConn(conn net.Conn) {
	peer := conn.RemoteAddr()
	events := s.events()

	s.active.Add(1)
	s.total.Add(1)
	events.ConnectionOpened(peer)

	defer func() {
		if r := recover(); r != nil {
			events.ConnectionFailed(peer, fmt.Errorf("panic while serving connection: %v", r))
		}
		_ = conn.Close()
		s.active.Add(-1)
		events.ConnectionClosed(peer)
	}()

	if err := s.converse(conn); err != nil {
		events.ConnectionFailed(peer, err)
	}
}

// converse reads request lines and writes one response line for each until
// the peer closes the stream. A nil return means a normal end of stream.
func (s *Server) converse(conn net.Conn) error {
	peer := conn.RemoteAddr()
	events := s.events()
	maxLine := s.maxLineBytes()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		if s.IdleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.IdleTimeout)); err != nil {
				return fmt.Errorf("failed to set read deadline: %w", err)
			}
		}

		var resp protocol.Response
		line, err := readLine(reader, maxLine)
		if err == nil || errors.Is(err, errLineTooLong) {
			s.lines.Add(1)
			events.LineReceived(peer, line)
		}
		switch {
		case err == nil:
			resp = s.Handler.HandleLine(peer, line)
		case errors.Is(err, errLineTooLong):
			resp = protocol.Failure{Message: fmt.Sprintf("request line exceeds %d bytes", maxLine)}
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, os.ErrDeadlineExceeded):
			return fmt.Errorf("%w after %s", ErrIdleTimeout, s.IdleTimeout)
		default:
			return fmt.Errorf("read failed: %w", err)
		}

		out, err := protocol.Encode(resp)
		if err != nil {
			if out, err = protocol.EncodeError(fmt.Sprintf("Internal server error: %v", err)); err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
		}

		if _, err := writer.WriteString(out); err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
		if err := writer.Flush(); err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
	}
}

// readLine returns the next line with its "\n" or "\r\n" terminator removed.
// A final line without terminator is returned normally; io.EOF is returned
// only when no bytes are pending. Lines longer than limit are consumed up to
// their terminator and reported as errLineTooLong together with their first
// limit bytes.
func readLine(r *bufio.Reader, limit int) (string, error) {
	var line []byte
	tooLong := false

	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > limit+2 {
				tooLong = true
				line = line[:limit]
			}
		}

		switch {
		case err == nil:
			return finishLine(line, limit, tooLong)
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if !tooLong && len(line) == 0 {
				return "", io.EOF
			}
			return finishLine(line, limit, tooLong)
		default:
			return "", err
		}
	}
}

func finishLine(line []byte, limit int, tooLong bool) (string, error) {
	if !tooLong {
		line = bytes.TrimSuffix(line, []byte("\n"))
		line = bytes.TrimSuffix(line, []byte("\r"))
	}
	if tooLong || len(line) > limit {
		return toValidUTF8(line[:min(len(line), limit)]), errLineTooLong
	}
	return toValidUTF8(line), nil
}

func toValidUTF8(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
