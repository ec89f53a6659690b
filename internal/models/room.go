package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Room struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	IsActive     bool                 `bson:"isActive" json:"isActive"` // active call
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
}

// HasParticipant reports whether the hex user id is in the participant set.
func (r *Room) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p.Hex() == userID {
			return true
		}
	}
	return false
}

// ParticipantSet builds a participant list with set semantics: creator first,
// then the given ids in order, duplicates dropped.
func ParticipantSet(creator primitive.ObjectID, others []primitive.ObjectID) []primitive.ObjectID {
	seen := map[primitive.ObjectID]bool{creator: true}
	out := []primitive.ObjectID{creator}
	for _, id := range others {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
