package ports

import (
	"context"

	"github.com/sirpyerre/members-portal/internal/core/domain"
)

// RegisterInput carries the raw registration form fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthService verifies and creates credentials.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

// PasswordHasher is a one-way salted hash with constant-time verification.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns domain.ErrInvalidCredentials when password does not match hash.
	Compare(hash, password string) error
}
