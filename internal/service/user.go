package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mindlog/mindlog/internal/auth"
	"github.com/mindlog/mindlog/internal/model"
	"github.com/mindlog/mindlog/internal/repository"
)

// UserRepository is the persistence contract of the credential store.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// UserService registers and authenticates users.
type UserService struct {
	repo   UserRepository
	hasher passwordHasher
	logger *slog.Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService. A nil hasher uses the default
// argon2id parameters.
func NewUserService(repo UserRepository, hasher *auth.Hasher, logger *slog.Logger) *UserService {
	if hasher == nil {
		hasher = auth.NewHasher(auth.DefaultParams)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		repo:   repo,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates an account. Username uniqueness is checked before email
// uniqueness; the database constraints catch a concurrent duplicate.
func (s *UserService) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	if email != "" {
		if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("user_registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks a username/password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.verifyDummy(password)
			return nil, ErrInvalidUsername
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		// A stored hash we cannot parse is a server-side problem.
		return nil, fmt.Errorf("verify password for %s: %w", user.ID, err)
	}
	if !ok {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

// verifyDummy spends one password verification on a throwaway hash so an
// unknown username costs as much as a wrong password.
func (s *UserService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("mindlog-unknown-user")
		if err != nil {
			s.logger.Warn("dummy_hash_failed", "error", err)
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}
