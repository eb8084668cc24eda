package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for cookies that fail signature or expiry
// checks.
var ErrInvalidToken = errors.New("invalid session token")

// Manager issues and resolves session cookies.  The cookie value is an
// HS256 JWT whose "sid" claim names a record in the Store, so a forged or
// expired cookie is rejected before the store is consulted and a logout
// invalidates the cookie server-side.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{store: store, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Begin creates a session for userID and returns the signed cookie value
// and its expiry.
func (m *Manager) Begin(ctx context.Context, userID uint64) (string, time.Time, error) {
	sid := uuid.NewString()
	now := m.now().UTC()
	exp := now.Add(m.ttl)
	if err := m.store.Save(ctx, sid, userID, m.ttl); err != nil {
		return "", time.Time{}, err
	}
	claims := jwt.MapClaims{
		"sid": sid,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		_ = m.store.Delete(ctx, sid)
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Resolve verifies the cookie value and returns the bound user id and the
// session id.
func (m *Manager) Resolve(ctx context.Context, raw string) (uint64, string, error) {
	sid, err := m.parse(raw)
	if err != nil {
		return 0, "", err
	}
	uid, err := m.store.Load(ctx, sid)
	if err != nil {
		return 0, "", err
	}
	return uid, sid, nil
}

// End deletes the session named by the cookie.  Invalid cookies are
// ignored because there is nothing to revoke.
func (m *Manager) End(ctx context.Context, raw string) error {
	sid, err := m.parse(raw)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, sid)
}

func (m *Manager) parse(raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidToken
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", ErrInvalidToken
	}
	return sid, nil
}
