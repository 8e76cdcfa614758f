package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/members-portal/internal/core/domain"
	"github.com/sirpyerre/members-portal/internal/core/ports"
)

type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// ListUsers returns every account for the admin listing.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// Promote grants the admin role to username.
func (s *UserService) Promote(ctx context.Context, username string) error {
	return s.setUserType(ctx, username, domain.UserTypeAdmin)
}

// Demote returns username to the plain user role.
func (s *UserService) Demote(ctx context.Context, username string) error {
	return s.setUserType(ctx, username, domain.UserTypeUser)
}

func (s *UserService) setUserType(ctx context.Context, username string, t domain.UserType) error {
	if err := s.repo.SetUserType(ctx, username, t); err != nil {
		s.logger.Error().Err(err).Str("username", username).Str("user_type", t.String()).Msg("failed to change user type")
		return fmt.Errorf("set user type: %w", err)
	}
	s.logger.Info().Str("username", username).Str("user_type", t.String()).Msg("user type changed")
	return nil
}
