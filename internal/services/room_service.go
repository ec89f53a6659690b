package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-chat-api/internal/access"
	"github.com/harentsoaR/clinic-chat-api/internal/common"
	"github.com/harentsoaR/clinic-chat-api/internal/models"
	"github.com/harentsoaR/clinic-chat-api/internal/store"
)

type RoomService struct {
	rooms store.RoomStore
}

func NewRoomService(rooms store.RoomStore) *RoomService {
	return &RoomService{rooms: rooms}
}

// Create opens a room. The creator is always a participant and duplicates collapse.
func (s *RoomService) Create(ctx context.Context, caller models.Identity, name string, participantIDs []string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", common.ErrValidation)
	}
	creator, err := ParseID("user", caller.UserID)
	if err != nil {
		return nil, err
	}
	others, err := parseIDs("participant", participantIDs)
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		Name:         name,
		Participants: models.ParticipantSet(creator, others),
		IsActive:     false,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// List returns every room to admins and the caller's rooms to everyone else.
func (s *RoomService) List(ctx context.Context, caller models.Identity) ([]models.Room, error) {
	if access.ListScope(caller) {
		return s.rooms.ListRooms(ctx, nil)
	}
	id, err := ParseID("user", caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.rooms.ListRooms(ctx, &id)
}

// Authorize loads the room fresh from the store and checks action against it.
func (s *RoomService) Authorize(ctx context.Context, caller models.Identity, roomID string, action access.Action) (*models.Room, error) {
	id, err := ParseID("room", roomID)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.FindRoomByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if access.CanAccessRoom(caller, room, action) == access.Deny {
		return nil, fmt.Errorf("%w: not authorized to access this room", common.ErrForbidden)
	}
	return room, nil
}

func (s *RoomService) Get(ctx context.Context, caller models.Identity, roomID string) (*models.Room, error) {
	return s.Authorize(ctx, caller, roomID, access.Read)
}

// Update checks access before it validates the changes.
func (s *RoomService) Update(ctx context.Context, caller models.Identity, roomID string, update store.RoomUpdate) (*models.Room, error) {
	room, err := s.Authorize(ctx, caller, roomID, access.Administer)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: room name cannot be empty", common.ErrValidation)
		}
		update.Name = &name
	}
	if update.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", common.ErrValidation)
	}
	return s.rooms.UpdateRoom(ctx, room.ID, update)
}

// SetActive toggles the room's active-call flag.
func (s *RoomService) SetActive(ctx context.Context, caller models.Identity, roomID string, active bool) (*models.Room, error) {
	return s.Update(ctx, caller, roomID, store.RoomUpdate{IsActive: &active})
}

func (s *RoomService) AddParticipant(ctx context.Context, caller models.Identity, roomID, userID string) (*models.Room, error) {
	return s.changeParticipants(ctx, caller, roomID, userID, s.rooms.AddParticipant)
}

// RemoveParticipant drops userID from the room by identity. Removing the last
// participant leaves an orphaned room only an admin can reach.
func (s *RoomService) RemoveParticipant(ctx context.Context, caller models.Identity, roomID, userID string) (*models.Room, error) {
	return s.changeParticipants(ctx, caller, roomID, userID, s.rooms.RemoveParticipant)
}

func (s *RoomService) changeParticipants(
	ctx context.Context,
	caller models.Identity,
	roomID, userID string,
	apply func(ctx context.Context, roomID, userID primitive.ObjectID) (*models.Room, error),
) (*models.Room, error) {
	uid, err := ParseID("user", userID)
	if err != nil {
		return nil, err
	}
	room, err := s.Authorize(ctx, caller, roomID, access.Administer)
	if err != nil {
		return nil, err
	}
	return apply(ctx, room.ID, uid)
}

func (s *RoomService) Delete(ctx context.Context, caller models.Identity, roomID string) error {
	room, err := s.Authorize(ctx, caller, roomID, access.Administer)
	if err != nil {
		return err
	}
	return s.rooms.DeleteRoom(ctx, room.ID)
}
