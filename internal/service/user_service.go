// Package service holds the application use cases on top of the repositories.
package service

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"vibetweet/internal/models"
	"vibetweet/internal/repository"

	"github.com/google/uuid"
)

const (
	maxUsernameLen = 50
	maxEmailLen    = 255
)

type UserService struct {
	users           repository.UserRepository
	defaultProvider models.LLMProvider
}

// NewUserService builds the service; new users get defaultProvider as their LLM provider.
func NewUserService(users repository.UserRepository, defaultProvider models.LLMProvider) *UserService {
	if defaultProvider == "" {
		defaultProvider = models.ProviderClaude
	}
	return &UserService{users: users, defaultProvider: defaultProvider}
}

func normalizeUsername(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", models.NewValidationError("username is required")
	}
	if utf8.RuneCountInString(name) > maxUsernameLen {
		return "", models.NewValidationError("username must be at most 50 characters")
	}
	return name, nil
}

// normalizeEmail returns nil for an absent or blank email.
func normalizeEmail(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	email := strings.TrimSpace(*raw)
	if email == "" {
		return nil, nil
	}
	if len(email) > maxEmailLen {
		return nil, models.NewValidationError("email must be at most 255 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, models.NewValidationError("email is not a valid address")
	}
	return &email, nil
}

// CreateUser registers a user together with default preferences.
func (s *UserService) CreateUser(ctx context.Context, in models.UserCreate) (*models.User, error) {
	name, err := normalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: name, Email: email}
	if err := s.users.Create(ctx, user, models.DefaultPreferences(uuid.Nil, s.defaultProvider)); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.users.List(ctx, limit, offset)
}

// UpdateUser applies a partial update. An explicit empty email clears it.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, in models.UserUpdate) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		name, err := normalizeUsername(*in.Username)
		if err != nil {
			return nil, err
		}
		user.Username = name
	}
	if in.Email != nil {
		email, err := normalizeEmail(in.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// DeleteUser removes the user and everything derived from it.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

// EnsureUser returns NOT_FOUND unless the user exists.
func (s *UserService) EnsureUser(ctx context.Context, id uuid.UUID) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
