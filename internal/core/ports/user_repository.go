package ports

import (
	"context"

	"github.com/sirpyerre/members-portal/internal/core/domain"
)

// UserRepository defines the credential store.
type UserRepository interface {
	// Create inserts user if neither its email nor its username is taken.
	// The check and the insert are one atomic store operation; conflicts
	// surface as domain.ErrEmailExists or domain.ErrUsernameExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail returns the single user with email. It returns
	// domain.ErrUserNotFound when none matches and domain.ErrAmbiguousEmail
	// when more than one does.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns every user ordered by username.
	List(ctx context.Context) ([]*domain.User, error)
	// SetUserType changes the role of the user identified by username.
	SetUserType(ctx context.Context, username string, userType domain.UserType) error
}
