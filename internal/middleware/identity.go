package middleware

// identity.go holds the helpers that move the resolved session identity
// through the echo context.  LoadSession writes it; handlers and the rate
// limiter read it.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/donation-marketplace/internal/session"
)

const (
    identityKey = "identity"
    // orphanKey marks a request whose session is valid but whose user row
    // is gone.
    orphanKey = "session_orphan"
)

// CurrentIdentity returns the identity attached by LoadSession, or nil
// for anonymous requests.
func CurrentIdentity(c echo.Context) *session.Identity {
    id, _ := c.Get(identityKey).(*session.Identity)
    return id
}

// SetIdentity attaches id to the request.
func SetIdentity(c echo.Context, id *session.Identity) {
    c.Set(identityKey, id)
}

// currentUserID renders the identity for cache and rate-limit keys.
func currentUserID(c echo.Context) string {
    if id := CurrentIdentity(c); id != nil {
        return strconv.FormatUint(id.UserID, 10)
    }
    return "anon"
}
