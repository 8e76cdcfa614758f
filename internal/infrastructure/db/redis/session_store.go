package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sirpyerre/members-portal/internal/core/domain"
	"github.com/sirpyerre/members-portal/internal/infrastructure/sessioncodec"
)

// SessionStore implements ports.SessionStore on Redis.
// Key format: session:<sha256(token)>, expiring with the session.
type SessionStore struct {
	client redis.UniversalClient
	codec  *sessioncodec.Codec
	now    func() time.Time
}

func NewSessionStore(client redis.UniversalClient, codec *sessioncodec.Codec) *SessionStore {
	return &SessionStore{client: client, codec: codec, now: time.Now}
}

func (s *SessionStore) Load(ctx context.Context, token string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

// Save writes the session with a TTL matching its expiry. A session already
// past its expiry is removed instead.
func (s *SessionStore) Save(ctx context.Context, token string, sess *domain.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Destroy(ctx, token)
	}

	data, err := s.codec.Encode(sess)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(token string) string {
	return "session:" + sessioncodec.StoreKey(token)
}
