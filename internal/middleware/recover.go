package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/rs/zerolog"
)

// Recover turns a handler panic into a 500 {"message"} reply and an error
// log line carrying the stack.
func Recover(l zerolog.Logger) echo.MiddlewareFunc {
    return echomw.RecoverWithConfig(echomw.RecoverConfig{
        DisablePrintStack: true,
        LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
            l.Error().Err(err).Bytes("stack", stack).
                Str("path", c.Request().URL.Path).Msg("recovered from panic")
            return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong, please try again later!")
        },
    })
}
