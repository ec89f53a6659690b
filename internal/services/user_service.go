package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harentsoaR/clinic-chat-api/internal/access"
	"github.com/harentsoaR/clinic-chat-api/internal/common"
	"github.com/harentsoaR/clinic-chat-api/internal/models"
	"github.com/harentsoaR/clinic-chat-api/internal/store"
	"github.com/harentsoaR/clinic-chat-api/internal/utils"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", common.ErrUnauthorized)

// AuthResult is returned by register and login.
type AuthResult struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// ProfileUpdate holds the self-service profile changes. Nil fields are left untouched.
type ProfileUpdate struct {
	FullName *string
	Email    *string
	Password *string
}

type UserService struct {
	users  store.UserStore
	tokens *utils.TokenService
}

func NewUserService(users store.UserStore, tokens *utils.TokenService) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// Register creates a patient account and issues its first token.
// Any role supplied by the client is ignored.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		FullName:  strings.TrimSpace(in.FullName),
		Email:     email,
		Password:  hash,
		Role:      models.RolePatient,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issue(user)
}

// Login checks credentials and issues a token carrying the current role.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, UserID: user.ID.Hex(), Role: user.Role}, nil
}

// Get returns the caller's own profile.
func (s *UserService) Get(ctx context.Context, caller models.Identity) (*models.User, error) {
	id, err := ParseID("user", caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.users.FindUserByID(ctx, id)
}

// UpdateProfile changes the caller's name, email or password. A new password is rehashed.
func (s *UserService) UpdateProfile(ctx context.Context, caller models.Identity, in ProfileUpdate) (*models.User, error) {
	id, err := ParseID("user", caller.UserID)
	if err != nil {
		return nil, err
	}

	update := store.UserUpdate{FullName: in.FullName}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", common.ErrValidation)
		}
		update.Email = &email
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", common.ErrValidation)
		}
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		update.PasswordHash = &hash
	}
	if update.Empty() {
		return nil, fmt.Errorf("%w: no update fields provided", common.ErrValidation)
	}

	user, err := s.users.UpdateUser(ctx, id, update)
	if errors.Is(err, common.ErrConflict) {
		return nil, fmt.Errorf("%w: email already in use", common.ErrValidation)
	}
	return user, err
}

// Delete removes the caller's account. Room participant lists are left as they are.
func (s *UserService) Delete(ctx context.Context, caller models.Identity) error {
	id, err := ParseID("user", caller.UserID)
	if err != nil {
		return err
	}
	return s.users.DeleteUser(ctx, id)
}

// SetRole changes another user's role. Only admins may do this. Tokens already
// issued to the target keep their old role until they expire.
func (s *UserService) SetRole(ctx context.Context, caller models.Identity, targetID, role string) error {
	if err := access.CanChangeRole(caller, role); err != nil {
		return err
	}
	id, err := ParseID("user", targetID)
	if err != nil {
		return err
	}
	return s.users.SetUserRole(ctx, id, role)
}
