package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog"

    "github.com/iliyamo/donation-marketplace/internal/config"
)

// tokenBucket refills `refill_tokens` every `interval_ms` up to `capacity`
// and takes one token per call.  It returns {allowed, remaining,
// retry_after_ms}.
var tokenBucket = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])
    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)
    return { allowed, tokens, retry_after_ms }
`)

// bucketDecision is the decoded script result.
type bucketDecision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

func decodeDecision(v interface{}) (bucketDecision, error) {
    arr, ok := v.([]interface{})
    if !ok || len(arr) != 3 {
        return bucketDecision{}, fmt.Errorf("unexpected script result %#v", v)
    }
    return bucketDecision{
        allowed:   asInt64(arr[0]) == 1,
        remaining: asInt64(arr[1]),
        retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
    }, nil
}

// NewTokenBucket limits requests with a Redis-backed token bucket.  Redis
// errors fail open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passthrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            args := []interface{}{
                time.Now().UnixMilli(),
                cfg.CapacityFor(c.Request().Method, c.Path()),
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL / time.Second),
            }
            vals, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
            if err != nil {
                log.Warn().Err(err).Str("key", key).Msg("ratelimit: redis error")
                return next(c)
            }
            d, err := decodeDecision(vals)
            if err != nil {
                log.Warn().Err(err).Str("key", key).Msg("ratelimit: bad script result")
                return next(c)
            }
            return applyDecision(c, cfg, key, d, next)
        }
    }
}

func applyDecision(c echo.Context, cfg config.RateLimitConfig, key string, d bucketDecision, next echo.HandlerFunc) error {
    h := c.Response().Header()
    h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.CapacityFor(c.Request().Method, c.Path())))
    h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
    if cfg.Debug {
        h.Set("X-RateLimit-Key", key)
    }
    if d.allowed {
        return next(c)
    }
    secs := int(math.Ceil(d.retry.Seconds()))
    h.Set("Retry-After", strconv.Itoa(secs))
    return c.JSON(http.StatusTooManyRequests, echo.Map{
        "message":     "Too many requests, please slow down!",
        "retry_after": secs,
    })
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        n, _ := strconv.ParseInt(t, 10, 64)
        return n
    }
    return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := currentUserID(c)
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    if cfg.IsAuthRoute(c.Request().Method, c.Path()) {
        parts = append(parts, "auth")
    }
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "route":
        parts = append(parts, "route", route)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
