package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	stateIdle int32 = iota
	stateBinding
	stateAccepting
	stateStopping
	stateStopped
)

// DefaultMaxLineBytes bounds a single request line when MaxLineBytes is unset.
const DefaultMaxLineBytes = 1 << 20

var (
	ErrAlreadyRunning = errors.New("server is already running")
	ErrIdleTimeout    = errors.New("connection idle timeout")
)

// Server is the N-Echo TCP server.
// It depends only on interfaces; the binder and handler are supplied by the caller.
type Server struct {
	Config  ServerConfig
	Binder  Binder
	Handler RequestHandler
	Events  EventSink

	// MaxLineBytes limits the size of one request line. Zero means DefaultMaxLineBytes.
	MaxLineBytes int
	// IdleTimeout closes connections that send nothing for this long. Zero disables it.
	IdleTimeout time.Duration

	state atomic.Int32

	mu       sync.Mutex
	listener net.Listener

	active atomic.Int64
	total  atomic.Int64
	lines  atomic.Int64
}

// Start binds the listening endpoint and accepts connections until Stop is
// called. Each connection is served on its own goroutine, which Start does
// not wait for. A bind failure is returned without entering the accept loop.
// An accept failure that is not caused by Stop is returned as well.
func (s *Server) Start(ctx context.Context) error {
	if s.Binder == nil || s.Handler == nil {
		return fmt.Errorf("server requires a binder and a handler")
	}
	if !s.state.CompareAndSwap(stateIdle, stateBinding) && !s.state.CompareAndSwap(stateStopped, stateBinding) {
		return ErrAlreadyRunning
	}

	events := s.events()
	address := s.Config.Address()

	ln, err := s.Binder.Bind(ctx, s.Config)
	if err != nil {
		s.state.Store(stateStopped)
		events.BindFailed(address, err)
		return fmt.Errorf("failed to bind %s: %w", address, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	defer s.release(ln)

	if !s.state.CompareAndSwap(stateBinding, stateAccepting) {
		// Stop arrived while we were binding.
		return nil
	}

	events.Listening(ln.Addr())
	return s.acceptLoop(ln)
}

func (s *Server) acceptLoop(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.state.Load() != stateAccepting {
				return nil
			}
			s.events().AcceptFailed(err)
			return fmt.Errorf("accept failed: %w", err)
		}
		go s.serveConn(conn)
	}
}

// Stop closes the listening endpoint so that Start returns. It does not wait
// for connections in progress and may be called any number of times.
func (s *Server) Stop() {
	for {
		cur := s.state.Load()
		if cur != stateBinding && cur != stateAccepting {
			return
		}
		if s.state.CompareAndSwap(cur, stateStopping) {
			break
		}
	}

	s.events().StopRequested()

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln != nil {
		_ = ln.Close()
	}
}

func (s *Server) release(ln net.Listener) {
	_ = ln.Close()
	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
	s.state.Store(stateStopped)
}

// Addr returns the bound address, or nil when the server is not listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Accepting reports whether the accept loop is running.
func (s *Server) Accepting() bool {
	return s.state.Load() == stateAccepting
}

// Stats returns a snapshot of the connection counters.
func (s *Server) Stats() Stats {
	return Stats{
		ActiveConnections: s.active.Load(),
		TotalConnections:  s.total.Load(),
		LinesProcessed:    s.lines.Load(),
	}
}

func (s *Server) events() EventSink {
	if s.Events == nil {
		return nopSink{}
	}
	return s.Events
}

func (s *Server) maxLineBytes() int {
	if s.MaxLineBytes <= 0 {
		return DefaultMaxLineBytes
	}
	return s.MaxLineBytes
}
