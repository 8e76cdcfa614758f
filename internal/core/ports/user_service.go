package ports

import (
	"context"

	"github.com/sirpyerre/members-portal/internal/core/domain"
)

// UserService covers the admin-facing account operations.
type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, username string) (*domain.User, error)
	Promote(ctx context.Context, username string) error
	Demote(ctx context.Context, username string) error
}
