// Package access holds the pure authorization decisions for rooms and user roles.
package access

import (
	"github.com/harentsoaR/clinic-chat-api/internal/common"
	"github.com/harentsoaR/clinic-chat-api/internal/models"
)

type Action int

const (
	Read Action = iota
	Write
	// Administer covers delete, forced update, participant changes and the call toggle.
	Administer
)

func (a Action) String() string {
	switch a {
	case Read:
		return "read"
	case Write:
		return "write"
	case Administer:
		return "administer"
	}
	return "unknown"
}

type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

// CanAccessRoom decides whether id may perform action on room.
// Admins may do anything; otherwise the caller must be a participant.
// Any participant may administer the room, not only its creator.
func CanAccessRoom(id models.Identity, room *models.Room, action Action) Decision {
	if room == nil {
		return Deny
	}
	if id.IsAdmin() {
		return Allow
	}
	switch action {
	case Read, Write, Administer:
		return Decision(room.HasParticipant(id.UserID))
	}
	return Deny
}

// ListScope returns true when id may list every room. Otherwise listing is
// restricted to rooms where id is a participant.
func ListScope(id models.Identity) (all bool) {
	return id.IsAdmin()
}

// CanChangeRole checks that caller may set another user's role to target.
func CanChangeRole(caller models.Identity, target string) error {
	if !caller.IsAdmin() {
		return common.ErrForbidden
	}
	if !models.IsValidRole(target) {
		return common.ErrInvalidRole
	}
	return nil
}
