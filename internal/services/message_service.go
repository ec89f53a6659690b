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

type MessageService struct {
	rooms    *RoomService
	messages store.MessageStore
	users    store.UserStore
	now      func() time.Time
}

func NewMessageService(rooms *RoomService, messages store.MessageStore, users store.UserStore) *MessageService {
	return &MessageService{
		rooms:    rooms,
		messages: messages,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Send checks write access against the room's current participant list and
// appends the message with a server-assigned timestamp.
func (s *MessageService) Send(ctx context.Context, caller models.Identity, roomID, content string) (*models.Message, error) {
	sender, err := ParseID("user", caller.UserID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content is required", common.ErrValidation)
	}
	room, err := s.rooms.Authorize(ctx, caller, roomID, access.Write)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		Sender:    sender,
		Room:      room.ID,
		Content:   content,
		Timestamp: s.now(),
	}
	if err := s.messages.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// List returns the room's messages oldest first, each with its sender's display name.
func (s *MessageService) List(ctx context.Context, caller models.Identity, roomID string) ([]models.MessageView, error) {
	room, err := s.rooms.Authorize(ctx, caller, roomID, access.Read)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.ListMessagesByRoom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	senderIDs := make([]primitive.ObjectID, 0)
	seen := make(map[primitive.ObjectID]bool)
	for _, m := range messages {
		if !seen[m.Sender] {
			seen[m.Sender] = true
			senderIDs = append(senderIDs, m.Sender)
		}
	}
	senders, err := s.users.FindUsersByIDs(ctx, senderIDs)
	if err != nil {
		return nil, fmt.Errorf("load senders: %w", err)
	}
	names := make(map[primitive.ObjectID]string, len(senders))
	for _, u := range senders {
		names[u.ID] = u.DisplayName()
	}

	views := make([]models.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, models.MessageView{Message: m, SenderName: names[m.Sender]})
	}
	return views, nil
}
