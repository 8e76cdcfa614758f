package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/members-portal/internal/core/domain"
	"github.com/sirpyerre/members-portal/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, log: log, now: time.Now}
}

// Register hashes the password and stores a new plain user. A taken email is
// reported by the store's unique constraint, never by a separate lookup.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	switch {
	case in.Username == "":
		return nil, domain.NewValidationError("username", "username is required")
	case in.Email == "":
		return nil, domain.NewValidationError("email", "email is required")
	case in.Password == "":
		return nil, domain.NewValidationError("password", "password is required")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		UserType:     domain.UserTypeUser,
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailExists) || errors.Is(err, domain.ErrUsernameExists) {
			s.log.Info().Str("username", in.Username).Err(err).Msg("registration conflict")
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login looks the account up by email and verifies the password.
//
// An email shared by several records is treated as an unknown user; the
// unique index prevents new duplicates, so only legacy data can reach it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrAmbiguousEmail):
		s.log.Warn().Str("email", email).Msg("login email matches several users")
		return nil, domain.ErrUserNotFound
	case errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("login: compare password: %w", err)
	}

	s.log.Debug().Str("username", user.Username).Msg("login succeeded")
	return user, nil
}
