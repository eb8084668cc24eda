package middleware

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/donation-marketplace/internal/model"
    "github.com/iliyamo/donation-marketplace/internal/repository"
    "github.com/iliyamo/donation-marketplace/internal/session"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// UserLookup resolves the user id stored in a session.
type UserLookup interface {
    Lookup(ctx context.Context, id uint64) (model.User, error)
}

// LoadSession resolves the session cookie into a *session.Identity stored
// on the echo context.  It never rejects a request: a missing, forged or
// expired cookie leaves the request anonymous, and a session whose user
// was deleted is flagged so RequireAPISession can answer 404.
func LoadSession(m *session.Manager, users UserLookup, log zerolog.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ck, err := c.Cookie(CookieName)
            if err != nil || ck.Value == "" {
                return next(c)
            }
            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            uid, sid, err := m.Resolve(ctx, ck.Value)
            if err != nil {
                if !errors.Is(err, session.ErrInvalidToken) && !errors.Is(err, session.ErrNotFound) {
                    log.Warn().Err(err).Msg("session: resolve failed")
                }
                return next(c)
            }
            u, err := users.Lookup(ctx, uid)
            if err != nil {
                if errors.Is(err, repository.ErrUserNotFound) {
                    c.Set(orphanKey, true)
                } else {
                    log.Error().Err(err).Uint64("user_id", uid).Msg("session: user lookup failed")
                }
                return next(c)
            }
            SetIdentity(c, &session.Identity{UserID: u.ID, Username: u.Username, Email: u.Email, SessionID: sid})
            return next(c)
        }
    }
}

// RequireAPISession guards JSON endpoints.  Anonymous requests get 403
// with the given message; a session pointing at a deleted user gets 404.
func RequireAPISession(message string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if CurrentIdentity(c) != nil {
                return next(c)
            }
            if orphan, _ := c.Get(orphanKey).(bool); orphan {
                return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found!"})
            }
            return c.JSON(http.StatusForbidden, echo.Map{"message": message})
        }
    }
}

// RequirePageSession guards page views by redirecting anonymous requests
// to the login page.
func RequirePageSession() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if CurrentIdentity(c) == nil {
                return c.Redirect(http.StatusFound, "/login")
            }
            return next(c)
        }
    }
}
