package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"
)

// RequestLogger writes one zerolog line per request with the method,
// route, status, latency and the session user.
func RequestLogger(l zerolog.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            status := c.Response().Status
            ev := l.Info()
            if status >= 500 {
                ev = l.Error().Err(err)
            }
            ev.Str("method", c.Request().Method).
                Str("path", c.Request().URL.Path).
                Int("status", status).
                Dur("latency", time.Since(start)).
                Str("user", currentUserID(c)).
                Msg("request")
            return nil
        }
    }
}
