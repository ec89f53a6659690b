package realtime

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
)

// Client to server events.
const (
	EventAuthenticate = "authenticate"
	EventJoinRoom     = "join-room"
	EventLeaveRoom    = "leave-room"
	EventRoomMessage  = "room-message"
)

// Server to client events.
const (
	EventAuthenticated       = "authenticated"
	EventAuthenticationError = "authentication_error"
	EventJoined              = "joined"
	EventLeft                = "left"
	EventNewMessage          = "new-message"
	EventError               = "error"
)

const (
	ReasonNotAuthenticated  = "User not authenticated"
	ReasonAuthFailed        = "Failed to authenticate"
	ReasonForbidden         = "Not authorized to access this room"
	ReasonRoomNotFound      = "Room not found"
	ReasonSendFailed        = "Failed to send message"
	ReasonJoinFailed        = "Failed to join room"
	ReasonInvalidPayload    = "Invalid event payload"
	ReasonUnknownEvent      = "Unknown event"
	ReasonRateLimitExceeded = "Rate limit exceeded"
	ReasonNotJoined         = "Not joined to this room"
)

// Envelope is the JSON frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outgoing struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type authenticatePayload struct {
	Token string `json:"token"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type roomMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type authenticatedPayload struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func encode(event string, data any) []byte {
	payload, err := json.Marshal(outgoing{Event: event, Data: data})
	if err != nil {
		log.Printf("Error encoding %s event: %v", event, err)
		return nil
	}
	return payload
}

// parseToken accepts the token either as a bare JSON string or as {"token": "..."}.
func parseToken(data json.RawMessage) (string, error) {
	var token string
	if err := json.Unmarshal(data, &token); err == nil {
		return strings.TrimSpace(token), nil
	}
	var p authenticatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return "", err
	}
	if p.Token == "" {
		return "", errors.New("token required")
	}
	return strings.TrimSpace(p.Token), nil
}
