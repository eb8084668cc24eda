package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler answers load balancer probes.
type HealthHandler struct {
    DB Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{DB: db} }

// Health returns "ok" while the database answers a ping and 503 otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
    if h.DB != nil {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := h.DB.PingContext(ctx); err != nil {
            return c.String(http.StatusServiceUnavailable, "database unavailable")
        }
    }
    return c.String(http.StatusOK, "ok")
}
