package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/harentsoaR/clinic-chat-api/internal/models"
)

// State is the lifecycle stage of a live connection.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

const sendBufferSize = 256

// Session binds one network connection to, after authentication, one user.
// Its outbound queue is drained by the connection's write pump.
type Session struct {
	ID         string
	RemoteAddr string

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	identity models.Identity
	send     chan []byte
	limiter  *rate.Limiter
}

func newSession(remoteAddr string, limiter *rate.Limiter) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:         uuid.NewString(),
		RemoteAddr: remoteAddr,
		ctx:        ctx,
		cancel:     cancel,
		state:      StateUnauthenticated,
		send:       make(chan []byte, sendBufferSize),
		limiter:    limiter,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the bound identity once the session is authenticated.
func (s *Session) Identity() (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.state == StateAuthenticated
}

// Context is cancelled when the session closes, abandoning pending operations.
func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) bind(id models.Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return false
	}
	s.identity = id
	s.state = StateAuthenticated
	return true
}

func (s *Session) allow() bool {
	return s.limiter == nil || s.limiter.Allow()
}

// enqueue queues payload without blocking. It reports false when the session
// is closed or its queue is full.
func (s *Session) enqueue(payload []byte) bool {
	if payload == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return false
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

// close moves the session to CLOSED. Already queued events are still flushed by
// the write pump before the connection is closed.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	close(s.send)
	s.cancel()
}
