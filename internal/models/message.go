package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Room      primitive.ObjectID `bson:"room" json:"room"`
	Content   string             `bson:"content" json:"content"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// MessageView is a persisted message annotated with its sender's display name.
type MessageView struct {
	Message    `bson:",inline"`
	SenderName string `bson:"-" json:"senderName"`
}
