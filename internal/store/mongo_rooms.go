package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/clinic-chat-api/internal/common"
	"github.com/harentsoaR/clinic-chat-api/internal/models"
)

func (s *MongoStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID.IsZero() {
		room.ID = primitive.NewObjectID()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	if room.Participants == nil {
		room.Participants = []primitive.ObjectID{}
	}
	_, err := s.rooms.InsertOne(ctx, room)
	return translate(err)
}

func (s *MongoStore) FindRoomByID(ctx context.Context, id primitive.ObjectID) (*models.Room, error) {
	var room models.Room
	if err := s.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&room); err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (s *MongoStore) ListRooms(ctx context.Context, participant *primitive.ObjectID) ([]models.Room, error) {
	filter := bson.M{}
	if participant != nil {
		filter["participants"] = *participant
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.rooms.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	rooms := make([]models.Room, 0)
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *MongoStore) UpdateRoom(ctx context.Context, id primitive.ObjectID, update RoomUpdate) (*models.Room, error) {
	if update.Empty() {
		return nil, common.ErrValidation
	}

	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.IsActive != nil {
		set["isActive"] = *update.IsActive
	}
	return s.modifyRoom(ctx, id, bson.M{"$set": set})
}

func (s *MongoStore) AddParticipant(ctx context.Context, roomID, userID primitive.ObjectID) (*models.Room, error) {
	return s.modifyRoom(ctx, roomID, bson.M{"$addToSet": bson.M{"participants": userID}})
}

func (s *MongoStore) RemoveParticipant(ctx context.Context, roomID, userID primitive.ObjectID) (*models.Room, error) {
	return s.modifyRoom(ctx, roomID, bson.M{"$pull": bson.M{"participants": userID}})
}

func (s *MongoStore) modifyRoom(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Room, error) {
	var room models.Room
	err := s.rooms.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, findAndReturnAfter()).Decode(&room)
	if err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (s *MongoStore) DeleteRoom(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.rooms.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if result.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}
