// Package store persists users, rooms and messages. Every mutation is a
// single-record atomic update; no multi-record transactions are offered.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-chat-api/internal/models"
)

// UserUpdate lists the profile fields that may change. Nil fields are left untouched.
type UserUpdate struct {
	FullName     *string
	Email        *string
	PasswordHash *string
}

func (u UserUpdate) Empty() bool {
	return u.FullName == nil && u.Email == nil && u.PasswordHash == nil
}

// RoomUpdate lists the room settings that may change. Nil fields are left untouched.
type RoomUpdate struct {
	Name     *string
	IsActive *bool
}

func (u RoomUpdate) Empty() bool {
	return u.Name == nil && u.IsActive == nil
}

// UserStore is the identity store. Emails are unique: CreateUser and UpdateUser
// return common.ErrConflict when the email is taken.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update UserUpdate) (*models.User, error)
	SetUserRole(ctx context.Context, id primitive.ObjectID, role string) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

// RoomStore owns participant membership and the active-call flag.
type RoomStore interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	FindRoomByID(ctx context.Context, id primitive.ObjectID) (*models.Room, error)
	// ListRooms returns every room when participant is nil.
	ListRooms(ctx context.Context, participant *primitive.ObjectID) ([]models.Room, error)
	UpdateRoom(ctx context.Context, id primitive.ObjectID, update RoomUpdate) (*models.Room, error)
	AddParticipant(ctx context.Context, roomID, userID primitive.ObjectID) (*models.Room, error)
	RemoveParticipant(ctx context.Context, roomID, userID primitive.ObjectID) (*models.Room, error)
	DeleteRoom(ctx context.Context, id primitive.ObjectID) error
}

// MessageStore is the append-only message log.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *models.Message) error
	// ListMessagesByRoom returns messages in write order (timestamp, then id).
	ListMessagesByRoom(ctx context.Context, roomID primitive.ObjectID) ([]models.Message, error)
}
