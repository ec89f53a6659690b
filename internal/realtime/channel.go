package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/harentsoaR/clinic-chat-api/internal/access"
	"github.com/harentsoaR/clinic-chat-api/internal/common"
	"github.com/harentsoaR/clinic-chat-api/internal/config"
	"github.com/harentsoaR/clinic-chat-api/internal/models"
	"github.com/harentsoaR/clinic-chat-api/internal/services"
	"github.com/harentsoaR/clinic-chat-api/internal/utils"
)

type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

type RoomAuthorizer interface {
	Authorize(ctx context.Context, caller models.Identity, roomID string, action access.Action) (*models.Room, error)
}

type MessageSender interface {
	Send(ctx context.Context, caller models.Identity, roomID, content string) (*models.Message, error)
}

// Channel runs the live-connection protocol on top of a Hub.
type Channel struct {
	hub      *Hub
	tokens   TokenVerifier
	rooms    RoomAuthorizer
	messages MessageSender
	cfg      config.RealtimeConfig
	origins  *originPolicy

	// mu orders pump accounting against Shutdown: once closed is set no
	// more pumps are added to wg.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewChannel(hub *Hub, tokens TokenVerifier, rooms RoomAuthorizer, messages MessageSender, cfg config.RealtimeConfig) *Channel {
	return &Channel{
		hub:      hub,
		tokens:   tokens,
		rooms:    rooms,
		messages: messages,
		cfg:      cfg,
		origins:  newOriginPolicy(cfg.AllowedOrigins),
	}
}

func (c *Channel) Hub() *Hub {
	return c.hub
}

// Connect registers a new UNAUTHENTICATED session.
func (c *Channel) Connect(remoteAddr string) (*Session, error) {
	return c.connect(remoteAddr, 0)
}

// connect registers a session and adds its pump goroutines to wg under the
// same lock Shutdown takes to stop accepting sessions.
func (c *Channel) connect(remoteAddr string, pumps int) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errHubClosed
	}

	var limiter *rate.Limiter
	if c.cfg.RateLimitBurst > 0 && c.cfg.RateLimitInterval > 0 {
		every := c.cfg.RateLimitInterval / time.Duration(c.cfg.RateLimitBurst)
		limiter = rate.NewLimiter(rate.Every(every), c.cfg.RateLimitBurst)
	}
	s := newSession(remoteAddr, limiter)
	if err := c.hub.register(s); err != nil {
		return nil, err
	}
	c.wg.Add(pumps)
	return s, nil
}

// Disconnect leaves every room and closes the session.
func (c *Channel) Disconnect(s *Session) {
	c.hub.Disconnect(s)
}

// Authenticate verifies token and binds the session to its identity. On
// failure it queues an authentication_error and reports false; the caller
// must then close the connection.
func (c *Channel) Authenticate(s *Session, token string) bool {
	claims, err := c.tokens.Verify(token)
	if err != nil {
		log.Printf("Authentication failed for session %s from %s", s.ID, s.RemoteAddr)
		s.enqueue(encode(EventAuthenticationError, ReasonAuthFailed))
		return false
	}

	id := models.Identity{UserID: claims.UserID, Role: claims.Role}
	if prev, ok := s.Identity(); ok && prev != id {
		// Groups were joined on the previous identity's access.
		c.hub.LeaveAll(s)
	}
	if !s.bind(id) {
		return false
	}
	s.enqueue(encode(EventAuthenticated, authenticatedPayload{UserID: id.UserID, Role: id.Role}))
	return true
}

// HandleMessage processes one inbound frame. It reports false when the
// connection must be closed.
func (c *Channel) HandleMessage(s *Session, raw []byte) bool {
	if s.State() == StateClosed {
		return false
	}
	if !s.allow() {
		log.Printf("Rate limit exceeded for session %s from %s; discarding event", s.ID, s.RemoteAddr)
		c.emitError(s, ReasonRateLimitExceeded)
		return true
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("Invalid frame from %s: %v", s.RemoteAddr, err)
		c.emitError(s, ReasonInvalidPayload)
		return true
	}

	switch env.Event {
	case EventAuthenticate:
		token, err := parseToken(env.Data)
		if err != nil {
			token = ""
		}
		return c.Authenticate(s, token)
	case EventJoinRoom:
		c.joinRoom(s, env.Data)
	case EventLeaveRoom:
		c.leaveRoom(s, env.Data)
	case EventRoomMessage:
		c.sendRoomMessage(s, env.Data)
	default:
		c.emitError(s, ReasonUnknownEvent)
	}
	return true
}

func (c *Channel) joinRoom(s *Session, data json.RawMessage) {
	id, ok := s.Identity()
	if !ok {
		c.emitError(s, ReasonNotAuthenticated)
		return
	}
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		c.emitError(s, ReasonInvalidPayload)
		return
	}

	room, err := c.rooms.Authorize(s.Context(), id, p.RoomID, access.Read)
	if err != nil {
		c.emitError(s, reasonFor(err, ReasonJoinFailed))
		return
	}
	roomID := room.ID.Hex()
	if c.hub.Join(s, roomID) {
		s.enqueue(encode(EventJoined, roomPayload{RoomID: roomID}))
	}
}

func (c *Channel) leaveRoom(s *Session, data json.RawMessage) {
	if _, ok := s.Identity(); !ok {
		c.emitError(s, ReasonNotAuthenticated)
		return
	}
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		c.emitError(s, ReasonInvalidPayload)
		return
	}
	id, err := services.ParseID("room", p.RoomID)
	if err != nil {
		c.emitError(s, err.Error())
		return
	}
	roomID := id.Hex()
	if !c.hub.Leave(s, roomID) {
		c.emitError(s, ReasonNotJoined)
		return
	}
	s.enqueue(encode(EventLeft, roomPayload{RoomID: roomID}))
}

// sendRoomMessage persists the message and, only once it is stored, fans it out
// to the room's group. Write access is checked against the room as stored now,
// so a participant removed after joining can no longer send.
func (c *Channel) sendRoomMessage(s *Session, data json.RawMessage) {
	id, ok := s.Identity()
	if !ok {
		c.emitError(s, ReasonNotAuthenticated)
		return
	}
	var p roomMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		c.emitError(s, ReasonInvalidPayload)
		return
	}

	msg, err := c.messages.Send(s.Context(), id, p.RoomID, p.Message)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.emitError(s, reasonFor(err, ReasonSendFailed))
		return
	}
	c.Publish(msg)
}

// Publish fans a persisted message out to the room's live group and returns
// how many sessions accepted it.
func (c *Channel) Publish(msg *models.Message) int {
	return c.hub.Broadcast(msg.Room.Hex(), encode(EventNewMessage, msg))
}

func (c *Channel) emitError(s *Session, reason string) {
	s.enqueue(encode(EventError, reason))
}

// reasonFor turns a service error into the text of an error event. Unexpected
// failures are logged and reported with the generic fallback.
func reasonFor(err error, fallback string) string {
	switch {
	case errors.Is(err, common.ErrForbidden):
		return ReasonForbidden
	case errors.Is(err, common.ErrNotFound):
		return ReasonRoomNotFound
	case errors.Is(err, common.ErrValidation):
		return err.Error()
	}
	log.Printf("%s: %v", fallback, err)
	return fallback
}

// Shutdown closes all sessions and waits for connection goroutines to finish
// or ctx to expire.
func (c *Channel) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.hub.Shutdown()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Realtime channel shutdown completed successfully")
		return nil
	case <-ctx.Done():
		log.Println("Realtime channel shutdown timeout reached, some connections may still be open")
		return ctx.Err()
	}
}
