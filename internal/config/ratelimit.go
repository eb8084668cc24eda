package config

import (
    "net/http"
    "time"
)

// RateLimitConfig configures the Redis token bucket in front of the
// marketplace.  Login and signup POSTs draw from a separate, smaller
// bucket (AuthCapacity) so password guessing is throttled harder than
// browsing.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int // tokens per bucket for ordinary routes
    AuthCapacity   int // tokens per bucket for POST /login and /signup
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration // idle buckets expire after this
    KeyStrategy    string        // ip, user, route, ip_user, ip_route, user_route or ip_user_route
    Prefix         string
    Debug          bool // expose the bucket key in X-RateLimit-Key
}

// LoadRateLimitConfig reads RATE_LIMIT_* and clamps values that would make
// the bucket useless.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        AuthCapacity:   envInt("RATE_LIMIT_AUTH_CAPACITY", 10),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.AuthCapacity < 1 || cfg.AuthCapacity > cfg.Capacity {
        cfg.AuthCapacity = cfg.Capacity
    }
    if cfg.RefillTokens < 1 {
        cfg.RefillTokens = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
        cfg.TTL = minTTL
    }
    return cfg
}

// IsAuthRoute reports whether a request submits credentials.
func (c RateLimitConfig) IsAuthRoute(method, path string) bool {
    return method == http.MethodPost && (path == "/login" || path == "/signup")
}

// CapacityFor returns the bucket size for a request.  A zero AuthCapacity
// means auth routes share the ordinary capacity.
func (c RateLimitConfig) CapacityFor(method, path string) int {
    if c.AuthCapacity > 0 && c.IsAuthRoute(method, path) {
        return c.AuthCapacity
    }
    return c.Capacity
}
