package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/edavydova/shortlink/internal/database"
	"github.com/edavydova/shortlink/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on any authentication failure. An
// unknown username and a wrong password are deliberately indistinguishable
// to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines the interface for working with users at the
// business logic layer.
type UserRepository interface {
	// Create inserts a new user record with the given identifier,
	// username and password hash.
	Create(ctx context.Context, userID, username, passwordHash string) (*models.User, error)

	// GetByID retrieves a user by their identifier, including their
	// current link count.
	GetByID(ctx context.Context, userID string) (*models.User, error)

	// GetByUsername retrieves a user by username, including their
	// current link count.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// ListAll returns all registered users.
	ListAll(ctx context.Context) ([]models.User, error)
}

// UserService provides methods to register users and verify their
// credentials.
type UserService struct {
	repo UserRepository
}

// NewUserService creates a new instance of UserService with the provided
// repository.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// Register creates a new account. The password is hashed before it reaches
// the store; the plaintext is never persisted.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	const op = "service.UserService.Register"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := s.repo.Create(ctx, uuid.NewString(), username, string(hash))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to register user: %w", op, err)
	}

	return user, nil
}

// Login verifies the given credentials and returns the identity snapshot
// to attach to a new session.
func (s *UserService) Login(ctx context.Context, username, password string) (models.AuthUser, error) {
	const op = "service.UserService.Login"

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return models.AuthUser{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return models.AuthUser{}, fmt.Errorf("%s: failed to look up user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.AuthUser{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return models.AuthUser{
		UserID:   user.ID,
		Username: user.Username,
		IsPro:    user.IsPro,
		IsAdmin:  user.IsAdmin,
	}, nil
}

// GetByUsername retrieves a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "service.UserService.GetByUsername"

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	return user, nil
}

// ListUsers returns all registered users.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "service.UserService.ListUsers"

	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list users: %w", op, err)
	}

	return users, nil
}
