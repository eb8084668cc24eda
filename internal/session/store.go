// Package session binds an opaque session id to a user id on the server
// side.  The id travels to the browser inside a signed cookie; revoking a
// session is a matter of deleting the record.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id has no live record.
var ErrNotFound = errors.New("session not found")

// Store persists session records keyed by session id.
type Store interface {
	Save(ctx context.Context, sid string, userID uint64, ttl time.Duration) error
	Load(ctx context.Context, sid string) (uint64, error)
	Delete(ctx context.Context, sid string) error
}

// Identity is the resolved user attached to an authenticated request.
type Identity struct {
	UserID    uint64
	Username  string
	Email     string
	SessionID string
}
