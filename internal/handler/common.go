package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/donation-marketplace/internal/middleware"
    "github.com/iliyamo/donation-marketplace/internal/session"
)

// storeTimeout bounds every store call made while serving a request.
const storeTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// message writes the {"message": ...} acknowledgment used by every JSON
// endpoint.
func message(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"message": msg})
}

// internalError logs err and answers 500.
func internalError(c echo.Context, log zerolog.Logger, err error, op string) error {
    log.Error().Err(err).Str("op", op).Str("path", c.Request().URL.Path).Msg("request failed")
    return message(c, http.StatusInternalServerError, "Something went wrong, please try again later!")
}

// parseID reads the :id path parameter.
func parseID(c echo.Context) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// identity returns the session identity.  Routes using it are guarded by
// the session middleware, so nil only happens on misconfigured routes.
func identity(c echo.Context) *session.Identity {
    return middleware.CurrentIdentity(c)
}

// parseKids maps the kids query parameter: "" means no constraint, "true"
// means true and any other value means false.
func parseKids(v string) *bool {
    v = strings.TrimSpace(v)
    if v == "" {
        return nil
    }
    b := v == "true"
    return &b
}
