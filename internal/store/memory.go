package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-chat-api/internal/common"
	"github.com/harentsoaR/clinic-chat-api/internal/models"
)

// MemoryStore is a process-local backend selected with STORE_BACKEND=memory.
// It returns copies so callers never share records with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]models.User
	rooms    map[primitive.ObjectID]models.Room
	messages []models.Message
}

var (
	_ UserStore    = (*MemoryStore)(nil)
	_ RoomStore    = (*MemoryStore)(nil)
	_ MessageStore = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[primitive.ObjectID]models.User),
		rooms: make(map[primitive.ObjectID]models.Room),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *MemoryStore) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	if s.emailTaken(user.Email, primitive.NilObjectID) {
		return common.ErrConflict
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = normalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *MemoryStore) FindUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, id primitive.ObjectID, update UserUpdate) (*models.User, error) {
	if update.Empty() {
		return nil, common.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if s.emailTaken(email, id) {
			return nil, common.ErrConflict
		}
		u.Email = email
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.PasswordHash != nil {
		u.Password = *update.PasswordHash
	}
	s.users[id] = u
	return &u, nil
}

func (s *MemoryStore) SetUserRole(_ context.Context, id primitive.ObjectID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Role = role
	s.users[id] = u
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func copyRoom(r models.Room) *models.Room {
	r.Participants = append([]primitive.ObjectID{}, r.Participants...)
	return &r
}

func (s *MemoryStore) CreateRoom(_ context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room.ID.IsZero() {
		room.ID = primitive.NewObjectID()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	if room.Participants == nil {
		room.Participants = []primitive.ObjectID{}
	}
	s.rooms[room.ID] = *copyRoom(*room)
	return nil
}

func (s *MemoryStore) FindRoomByID(_ context.Context, id primitive.ObjectID) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return copyRoom(r), nil
}

func (s *MemoryStore) ListRooms(_ context.Context, participant *primitive.ObjectID) ([]models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if participant != nil && !r.HasParticipant(participant.Hex()) {
			continue
		}
		rooms = append(rooms, *copyRoom(r))
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID.Hex() < rooms[j].ID.Hex()
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms, nil
}

func (s *MemoryStore) modifyRoom(id primitive.ObjectID, apply func(r *models.Room)) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	apply(&r)
	s.rooms[id] = r
	return copyRoom(r), nil
}

func (s *MemoryStore) UpdateRoom(_ context.Context, id primitive.ObjectID, update RoomUpdate) (*models.Room, error) {
	if update.Empty() {
		return nil, common.ErrValidation
	}
	return s.modifyRoom(id, func(r *models.Room) {
		if update.Name != nil {
			r.Name = *update.Name
		}
		if update.IsActive != nil {
			r.IsActive = *update.IsActive
		}
	})
}

func (s *MemoryStore) AddParticipant(_ context.Context, roomID, userID primitive.ObjectID) (*models.Room, error) {
	return s.modifyRoom(roomID, func(r *models.Room) {
		if !r.HasParticipant(userID.Hex()) {
			r.Participants = append(append([]primitive.ObjectID{}, r.Participants...), userID)
		}
	})
}

func (s *MemoryStore) RemoveParticipant(_ context.Context, roomID, userID primitive.ObjectID) (*models.Room, error) {
	return s.modifyRoom(roomID, func(r *models.Room) {
		kept := make([]primitive.ObjectID, 0, len(r.Participants))
		for _, p := range r.Participants {
			if p != userID {
				kept = append(kept, p)
			}
		}
		r.Participants = kept
	})
}

func (s *MemoryStore) DeleteRoom(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *MemoryStore) ListMessagesByRoom(_ context.Context, roomID primitive.ObjectID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]models.Message, 0)
	for _, m := range s.messages {
		if m.Room == roomID {
			messages = append(messages, m)
		}
	}
	// Stable sort keeps append order for equal timestamps.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}
