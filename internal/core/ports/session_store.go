package ports

import (
	"context"

	"github.com/sirpyerre/members-portal/internal/core/domain"
)

// SessionStore persists sessions keyed by an opaque token.
type SessionStore interface {
	// Load returns domain.ErrSessionNotFound for unknown or expired tokens.
	Load(ctx context.Context, token string) (*domain.Session, error)
	// Save writes s under token until s.ExpiresAt.
	Save(ctx context.Context, token string, s *domain.Session) error
	// Destroy removes token. Unknown tokens are not an error.
	Destroy(ctx context.Context, token string) error
}
