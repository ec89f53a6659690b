package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-chat-api/internal/common"
	"github.com/harentsoaR/clinic-chat-api/internal/models"
)

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	user := &models.User{Email: " Alice@Clinic.mg ", Password: "hash", Role: models.RolePatient}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.False(t, user.ID.IsZero())
	assert.Equal(t, "alice@clinic.mg", user.Email)

	err := s.CreateUser(ctx, &models.User{Email: "alice@clinic.mg"})
	assert.ErrorIs(t, err, common.ErrConflict)

	found, err := s.FindUserByEmail(ctx, "ALICE@clinic.mg")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	bob := &models.User{Email: "bob@clinic.mg"}
	require.NoError(t, s.CreateUser(ctx, bob))

	taken := "alice@clinic.mg"
	_, err = s.UpdateUser(ctx, bob.ID, UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, common.ErrConflict)

	name := "Bob Rabe"
	updated, err := s.UpdateUser(ctx, bob.ID, UserUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bob Rabe", updated.FullName)

	_, err = s.UpdateUser(ctx, bob.ID, UserUpdate{})
	assert.ErrorIs(t, err, common.ErrValidation)

	require.NoError(t, s.SetUserRole(ctx, bob.ID, models.RoleDoctor))
	found, err = s.FindUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, found.Role)

	users, err := s.FindUsersByIDs(ctx, []primitive.ObjectID{user.ID, primitive.NewObjectID(), bob.ID})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, s.DeleteUser(ctx, bob.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, bob.ID), common.ErrNotFound)
	assert.ErrorIs(t, s.SetUserRole(ctx, bob.ID, models.RoleAdmin), common.ErrNotFound)
}

func TestMemoryStore_Rooms(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	room := &models.Room{Name: "clinic-1", Participants: []primitive.ObjectID{a, b}}
	require.NoError(t, s.CreateRoom(ctx, room))

	other := &models.Room{Name: "clinic-2", Participants: []primitive.ObjectID{c}, CreatedAt: room.CreatedAt.Add(time.Second)}
	require.NoError(t, s.CreateRoom(ctx, other))

	all, err := s.ListRooms(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "clinic-1", all[0].Name)

	mine, err := s.ListRooms(ctx, &c)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, other.ID, mine[0].ID)

	updated, err := s.AddParticipant(ctx, room.ID, c)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a, b, c}, updated.Participants)

	updated, err = s.AddParticipant(ctx, room.ID, c)
	require.NoError(t, err)
	assert.Len(t, updated.Participants, 3, "add is idempotent")

	updated, err = s.RemoveParticipant(ctx, room.ID, b)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a, c}, updated.Participants)

	active := true
	updated, err = s.UpdateRoom(ctx, room.ID, RoomUpdate{IsActive: &active})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Equal(t, "clinic-1", updated.Name)

	// Returned rooms are copies.
	updated.Participants[0] = primitive.NewObjectID()
	fresh, err := s.FindRoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, a, fresh.Participants[0])

	require.NoError(t, s.DeleteRoom(ctx, room.ID))
	_, err = s.FindRoomByID(ctx, room.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.AddParticipant(ctx, room.ID, a)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStore_Messages(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	roomID := primitive.NewObjectID()
	sender := primitive.NewObjectID()
	base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.AppendMessage(ctx, &models.Message{Room: roomID, Sender: sender, Content: "second", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, s.AppendMessage(ctx, &models.Message{Room: roomID, Sender: sender, Content: "first", Timestamp: base}))
	require.NoError(t, s.AppendMessage(ctx, &models.Message{Room: primitive.NewObjectID(), Sender: sender, Content: "elsewhere"}))

	messages, err := s.ListMessagesByRoom(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)

	empty, err := s.ListMessagesByRoom(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
