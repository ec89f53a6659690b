package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParticipantSet(t *testing.T) {
	creator := primitive.NewObjectID()
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()

	tests := []struct {
		name   string
		others []primitive.ObjectID
		want   []primitive.ObjectID
	}{
		{"creator only", nil, []primitive.ObjectID{creator}},
		{"creator and two", []primitive.ObjectID{p1, p2}, []primitive.ObjectID{creator, p1, p2}},
		{"creator listed again", []primitive.ObjectID{p2, creator, p1}, []primitive.ObjectID{creator, p2, p1}},
		{"duplicates collapse", []primitive.ObjectID{p1, p1, p2, p2}, []primitive.ObjectID{creator, p1, p2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParticipantSet(creator, tt.others))
		})
	}
}

func TestRoomHasParticipant(t *testing.T) {
	member := primitive.NewObjectID()
	room := &Room{Participants: []primitive.ObjectID{member}}

	assert.True(t, room.HasParticipant(member.Hex()))
	assert.False(t, room.HasParticipant(primitive.NewObjectID().Hex()))
	assert.False(t, (&Room{}).HasParticipant(member.Hex()))
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{RolePatient, RoleDoctor, RoleAdmin} {
		assert.True(t, IsValidRole(role), role)
	}
	for _, role := range []string{"", "Admin", "client", "dentist"} {
		assert.False(t, IsValidRole(role), role)
	}
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Dr. Rakoto", User{FullName: "Dr. Rakoto", Email: "r@clinic.mg"}.DisplayName())
	assert.Equal(t, "r@clinic.mg", User{Email: "r@clinic.mg"}.DisplayName())
}
