package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// ErrNoSession is returned when an operation targets a session that does
// not exist (never created, destroyed, or expired).
var ErrNoSession = errors.New("no such session")

// Session is the server-side state referenced by the cookie token. A
// session without a username is anonymous.
type Session struct {
	Username  string    `json:"username,omitempty"`
	Nickname  string    `json:"nickname,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Authenticated reports whether an identity has been attached.
func (s *Session) Authenticated() bool {
	return s.Username != ""
}

// Store persists sessions keyed by their opaque id.
type Store interface {
	Save(ctx context.Context, id string, sess *Session, ttl time.Duration) error
	// Get returns (nil, nil) for an unknown or expired id.
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Manager issues and resolves session tokens. The token handed to clients
// is "<id>.<hmac>": the id is 32 random bytes, the signature lets forged
// cookies be rejected without touching the store. The secret and TTL come
// from configuration so they can be rotated per environment.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Create allocates a new anonymous session and returns its signed token.
func (m *Manager) Create(ctx context.Context) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	id := base64.RawURLEncoding.EncodeToString(raw)

	sess := &Session{CreatedAt: time.Now().UTC()}
	if err := m.store.Save(ctx, id, sess, m.ttl); err != nil {
		return "", err
	}

	return id + "." + m.sign(id), nil
}

// AttachIdentity transitions an anonymous session to authenticated.
func (m *Manager) AttachIdentity(ctx context.Context, token, username, nickname string) error {
	id, ok := m.verify(token)
	if !ok {
		return ErrNoSession
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNoSession
	}

	sess.Username = username
	sess.Nickname = nickname
	return m.store.Save(ctx, id, sess, m.ttl)
}

// Lookup resolves a token to its session. Unknown, expired or tampered
// tokens yield (nil, nil).
func (m *Manager) Lookup(ctx context.Context, token string) (*Session, error) {
	id, ok := m.verify(token)
	if !ok {
		return nil, nil
	}
	return m.store.Get(ctx, id)
}

// Destroy terminates a session. Destroying an already-gone session is not
// an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	id, ok := m.verify(token)
	if !ok {
		return nil
	}
	return m.store.Delete(ctx, id)
}

func (m *Manager) sign(id string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *Manager) verify(token string) (string, bool) {
	id, sig, found := strings.Cut(token, ".")
	if !found || id == "" {
		return "", false
	}
	expected := m.sign(id)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}
	return id, true
}
