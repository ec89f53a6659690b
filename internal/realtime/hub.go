// Package realtime delivers newly persisted messages to live WebSocket
// connections grouped by room.
package realtime

import (
	"errors"
	"log"
	"sync"
)

var errHubClosed = errors.New("hub is shut down")

type roomGroup struct {
	mu      sync.RWMutex
	members map[*Session]struct{}
}

// Hub is the registry of live sessions and room broadcast groups. Join, Leave
// and Disconnect are the only operations that change group membership;
// Broadcast only reads it.
type Hub struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
	groups   map[string]*roomGroup
	joined   map[*Session]map[string]struct{}
	closed   bool
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[*Session]struct{}),
		groups:   make(map[string]*roomGroup),
		joined:   make(map[*Session]map[string]struct{}),
	}
}

func (h *Hub) register(s *Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errHubClosed
	}
	h.sessions[s] = struct{}{}
	h.joined[s] = make(map[string]struct{})
	return nil
}

// Join adds s to the room's broadcast group. It reports false for sessions
// that are no longer registered.
func (h *Hub) Join(s *Session, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.joined[s]
	if !ok {
		return false
	}
	g, ok := h.groups[roomID]
	if !ok {
		g = &roomGroup{members: make(map[*Session]struct{})}
		h.groups[roomID] = g
	}
	g.mu.Lock()
	g.members[s] = struct{}{}
	g.mu.Unlock()
	rooms[roomID] = struct{}{}
	return true
}

// Leave removes s from one room's broadcast group. It reports whether s was a member.
func (h *Hub) Leave(s *Session, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.leaveLocked(s, roomID)
}

// LeaveAll removes s from every group it joined but keeps it registered.
func (h *Hub) LeaveAll(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID := range h.joined[s] {
		h.leaveLocked(s, roomID)
	}
}

func (h *Hub) leaveLocked(s *Session, roomID string) bool {
	member := false
	if rooms, ok := h.joined[s]; ok {
		_, member = rooms[roomID]
		delete(rooms, roomID)
	}
	g, ok := h.groups[roomID]
	if !ok {
		return member
	}
	g.mu.Lock()
	delete(g.members, s)
	empty := len(g.members) == 0
	g.mu.Unlock()
	if empty {
		delete(h.groups, roomID)
	}
	return member
}

// Disconnect removes s from every group it joined and closes it.
func (h *Hub) Disconnect(s *Session) {
	h.mu.Lock()
	if rooms, ok := h.joined[s]; ok {
		for roomID := range rooms {
			h.leaveLocked(s, roomID)
		}
		delete(h.joined, s)
	}
	delete(h.sessions, s)
	h.mu.Unlock()

	s.close()
}

// Broadcast queues payload for every session currently in the room's group and
// returns how many accepted it. A session whose queue is full is closed; its
// membership is cleaned up by its own disconnect.
func (h *Hub) Broadcast(roomID string, payload []byte) int {
	h.mu.Lock()
	g, ok := h.groups[roomID]
	h.mu.Unlock()
	if !ok {
		return 0
	}

	g.mu.RLock()
	members := make([]*Session, 0, len(g.members))
	for s := range g.members {
		members = append(members, s)
	}
	g.mu.RUnlock()

	delivered := 0
	for _, s := range members {
		if s.enqueue(payload) {
			delivered++
			continue
		}
		if s.State() != StateClosed {
			log.Printf("Closing session %s from %s: send buffer full", s.ID, s.RemoteAddr)
			s.close()
		}
	}
	return delivered
}

// RoomSize returns the number of sessions joined to a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.Lock()
	g, ok := h.groups[roomID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}

// SessionCount returns the number of registered sessions.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown closes every live session and refuses new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	log.Printf("Closed %d live sessions", len(sessions))
}
