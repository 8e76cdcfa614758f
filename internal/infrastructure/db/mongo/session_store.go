package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/members-portal/internal/core/domain"
	"github.com/sirpyerre/members-portal/internal/infrastructure/sessioncodec"
)

const (
	collectionSessions = "sessions"
	indexSessionExpiry = "ttl_expires_at"
)

// SessionStore implements ports.SessionStore on a sessions collection.
// Documents are keyed by the hash of the cookie token and expire through a
// TTL index on expires_at.
type SessionStore struct {
	col   *mongo.Collection
	codec *sessioncodec.Codec
	now   func() time.Time
}

func NewSessionStore(db *mongo.Database, codec *sessioncodec.Codec) *SessionStore {
	return &SessionStore{col: db.Collection(collectionSessions), codec: codec, now: time.Now}
}

type sessionDocument struct {
	ID        string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Load returns the live session for token. The TTL monitor only runs once a
// minute, so expiry is also checked in the filter.
func (s *SessionStore) Load(ctx context.Context, token string) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":        sessioncodec.StoreKey(token),
		"expires_at": bson.M{"$gt": s.now().UTC()},
	}

	var doc sessionDocument
	err := s.col.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess, err := s.codec.Decode(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, token string, sess *domain.Session) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	data, err := s.codec.Encode(sess)
	if err != nil {
		return err
	}

	doc := sessionDocument{
		ID:        sessioncodec.StoreKey(token),
		Data:      data,
		ExpiresAt: sess.ExpiresAt.UTC(),
	}
	_, err = s.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": sessioncodec.StoreKey(token)}); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// EnsureIndexes creates the TTL index that lets MongoDB reap expired sessions.
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetName(indexSessionExpiry).SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create session ttl index: %w", err)
	}
	return nil
}
