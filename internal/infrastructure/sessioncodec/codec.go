// Package sessioncodec serialises sessions for the session stores.
//
// When a store secret is configured the JSON payload is sealed with
// XChaCha20-Poly1305 under a key derived from the secret, so a dump of the
// session backend exposes neither identities nor roles. Store keys are the
// SHA-256 of the cookie token; the raw token never reaches the backend.
package sessioncodec

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/sirpyerre/members-portal/internal/core/domain"
)

var ErrCorrupt = errors.New("session payload corrupt")

type Codec struct {
	aead cipher.AEAD
}

// New returns a Codec sealing payloads with secret. An empty secret yields a
// Codec that stores plain JSON.
func New(secret string) (*Codec, error) {
	if secret == "" {
		return &Codec{}, nil
	}
	key := sha256.Sum256([]byte(secret))
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}
	return &Codec{aead: aead}, nil
}

func (c *Codec) Encode(s *domain.Session) ([]byte, error) {
	plain, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if c.aead == nil {
		return plain, nil
	}

	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plain)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("session nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

func (c *Codec) Decode(b []byte) (*domain.Session, error) {
	plain := b
	if c.aead != nil {
		ns := c.aead.NonceSize()
		if len(b) < ns+c.aead.Overhead() {
			return nil, ErrCorrupt
		}
		var err error
		plain, err = c.aead.Open(nil, b[:ns], b[ns:], nil)
		if err != nil {
			return nil, ErrCorrupt
		}
	}

	var s domain.Session
	if err := json.Unmarshal(plain, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &s, nil
}

// StoreKey derives the backend key for a cookie token.
func StoreKey(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
