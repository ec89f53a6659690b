package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/harentsoaR/clinic-chat-api/internal/common"
	"github.com/harentsoaR/clinic-chat-api/internal/models"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create user", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{Email: "Doc@Clinic.mg", Password: "hash", Role: models.RolePatient}
		require.NoError(mt, s.CreateUser(ctx, user))
		assert.False(mt, user.ID.IsZero())
		assert.Equal(mt, "doc@clinic.mg", user.Email)
	})

	mt.Run("create user duplicate email", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := s.CreateUser(ctx, &models.User{Email: "doc@clinic.mg"})
		assert.ErrorIs(mt, err, common.ErrConflict)
	})

	mt.Run("find room", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		id := primitive.NewObjectID()
		member := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "clinic.rooms", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "clinic-1"},
			{Key: "participants", Value: bson.A{member}},
			{Key: "isActive", Value: false},
		}))

		room, err := s.FindRoomByID(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, "clinic-1", room.Name)
		assert.Equal(mt, []primitive.ObjectID{member}, room.Participants)
	})

	mt.Run("find room not found", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "clinic.rooms", mtest.FirstBatch))

		_, err := s.FindRoomByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, common.ErrNotFound)
	})

	mt.Run("add participant", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		id := primitive.NewObjectID()
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "clinic-1"},
			{Key: "participants", Value: bson.A{a, b}},
		}}))

		room, err := s.AddParticipant(ctx, id, b)
		require.NoError(mt, err)
		assert.Equal(mt, []primitive.ObjectID{a, b}, room.Participants)
	})

	mt.Run("delete room not found", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := s.DeleteRoom(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, common.ErrNotFound)
	})

	mt.Run("list messages by room", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		roomID := primitive.NewObjectID()
		sender := primitive.NewObjectID()
		at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "clinic.messages", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "sender", Value: sender},
				{Key: "room", Value: roomID},
				{Key: "content", Value: "hello"},
				{Key: "timestamp", Value: at},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "sender", Value: sender},
				{Key: "room", Value: roomID},
				{Key: "content", Value: "are you there?"},
				{Key: "timestamp", Value: at.Add(time.Second)},
			},
		))

		messages, err := s.ListMessagesByRoom(ctx, roomID)
		require.NoError(mt, err)
		require.Len(mt, messages, 2)
		assert.Equal(mt, "hello", messages[0].Content)
		assert.True(mt, messages[0].Timestamp.Equal(at))
	})

	mt.Run("set role unknown user", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := s.SetUserRole(ctx, primitive.NewObjectID(), models.RoleDoctor)
		assert.ErrorIs(mt, err, common.ErrNotFound)
	})
}
