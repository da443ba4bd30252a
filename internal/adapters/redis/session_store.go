// Package redis stores admin sessions in Redis. Keys expire with the session.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/realty-admin/internal/data/cryptoutil"
	domainauth "github.com/target/realty-admin/internal/domain/auth"
	"github.com/target/realty-admin/internal/ports"
)

// DefaultPrefix namespaces session keys; the ctl purge command deletes by it.
const DefaultPrefix = "realty:session:"

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// SessionStore implements ports.SessionStore.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	enc    cryptoutil.Encryptor
	now    func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore returns a store using prefix, or DefaultPrefix when empty.
func NewSessionStore(client redis.UniversalClient, prefix string) *SessionStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SessionStore{client: client, prefix: prefix, enc: cryptoutil.NoopEncryptor{}, now: time.Now}
}

// WithTokenEncryptor seals the API token of every saved session with enc.
func (s *SessionStore) WithTokenEncryptor(enc cryptoutil.Encryptor) *SessionStore {
	if enc != nil {
		s.enc = enc
	}
	return s
}

// Save writes sess with a TTL matching its expiry. The session holds the
// user's API token, so nothing outlives it.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}
	if sess.APIToken != "" {
		sealed, err := s.enc.Encrypt([]byte(sess.APIToken))
		if err != nil {
			return fmt.Errorf("seal api token: %w", err)
		}
		sess.APIToken = sealed
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get loads a session.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domainauth.Session{}, ErrNotFound
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	if !s.now().Before(sess.ExpiresAt) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("delete expired session: %w", err)
		}
		return domainauth.Session{}, ErrNotFound
	}
	if sess.APIToken != "" {
		tok, err := s.enc.Decrypt(sess.APIToken)
		if err != nil {
			return domainauth.Session{}, fmt.Errorf("open api token: %w", err)
		}
		sess.APIToken = string(tok)
	}
	return sess, nil
}

// Delete removes a session. Unknown IDs are not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
