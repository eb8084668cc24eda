package middleware

import (
    "bytes"
    "context"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/go-redis/redismock/v9"
    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/donation-marketplace/internal/config"
    "github.com/iliyamo/donation-marketplace/internal/model"
    "github.com/iliyamo/donation-marketplace/internal/repository"
    "github.com/iliyamo/donation-marketplace/internal/session"
)

type fakeUsers map[uint64]model.User

func (f fakeUsers) Lookup(_ context.Context, id uint64) (model.User, error) {
    u, ok := f[id]
    if !ok {
        return model.User{}, repository.ErrUserNotFound
    }
    return u, nil
}

func newSessionEcho(t *testing.T, users fakeUsers) (*echo.Echo, *session.Manager) {
    t.Helper()
    m := session.NewManager(session.NewMemoryStore(), "secret", time.Hour)
    e := echo.New()
    e.Use(LoadSession(m, users, zerolog.Nop()))
    api := RequireAPISession("Please log in to buy items!")
    e.POST("/api", func(c echo.Context) error {
        return c.String(http.StatusOK, CurrentIdentity(c).Email)
    }, api)
    e.GET("/page", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequirePageSession())
    return e, m
}

func do(e *echo.Echo, method, path, cookie string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, path, nil)
    if cookie != "" {
        req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie})
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestSession_APIAndPageGuards(t *testing.T) {
    e, m := newSessionEcho(t, fakeUsers{7: {ID: 7, Email: "a@x.com", Username: "alice"}})

    rec := do(e, http.MethodPost, "/api", "")
    require.Equal(t, http.StatusForbidden, rec.Code)
    require.JSONEq(t, `{"message":"Please log in to buy items!"}`, rec.Body.String())

    rec = do(e, http.MethodGet, "/page", "")
    require.Equal(t, http.StatusFound, rec.Code)
    require.Equal(t, "/login", rec.Header().Get("Location"))

    tok, _, err := m.Begin(context.Background(), 7)
    require.NoError(t, err)
    rec = do(e, http.MethodPost, "/api", tok)
    require.Equal(t, http.StatusOK, rec.Code)
    require.Equal(t, "a@x.com", rec.Body.String())
    require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/page", tok).Code)
}

func TestSession_ForgedAndRevokedCookies(t *testing.T) {
    e, m := newSessionEcho(t, fakeUsers{7: {ID: 7, Email: "a@x.com"}})

    require.Equal(t, http.StatusForbidden, do(e, http.MethodPost, "/api", "not-a-jwt").Code)

    tok, _, err := m.Begin(context.Background(), 7)
    require.NoError(t, err)
    require.NoError(t, m.End(context.Background(), tok))
    require.Equal(t, http.StatusForbidden, do(e, http.MethodPost, "/api", tok).Code)
}

func TestSession_DeletedUser(t *testing.T) {
    e, m := newSessionEcho(t, fakeUsers{})
    tok, _, err := m.Begin(context.Background(), 99)
    require.NoError(t, err)

    rec := do(e, http.MethodPost, "/api", tok)
    require.Equal(t, http.StatusNotFound, rec.Code)
    require.JSONEq(t, `{"message":"User not found!"}`, rec.Body.String())
    require.Equal(t, http.StatusFound, do(e, http.MethodGet, "/page", tok).Code)
}

func TestBuildRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/login", nil)
    req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/login")

    cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}
    require.Equal(t, "rl:auth:ip:10.0.0.1:route:POST /login", buildRateKey(cfg, c))

    SetIdentity(c, &session.Identity{UserID: 5})
    cfg.KeyStrategy = "user"
    require.Equal(t, "rl:auth:user:5", buildRateKey(cfg, c))
    cfg.KeyStrategy = ""
    require.Equal(t, "rl:auth:ip:10.0.0.1:user:5:route:POST /login", buildRateKey(cfg, c))

    req = httptest.NewRequest(http.MethodGet, "/viewer", nil)
    req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
    c = e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/viewer")
    cfg.KeyStrategy = "ip_route"
    require.Equal(t, "rl:ip:10.0.0.1:route:GET /viewer", buildRateKey(cfg, c))
}

func TestDecodeDecisionAndApply(t *testing.T) {
    d, err := decodeDecision([]interface{}{int64(0), int64(0), int64(1500)})
    require.NoError(t, err)
    require.False(t, d.allowed)
    require.Equal(t, 1500*time.Millisecond, d.retry)

    _, err = decodeDecision("nope")
    require.Error(t, err)

    e := echo.New()
    rec := httptest.NewRecorder()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
    cfg := config.RateLimitConfig{Capacity: 3}
    called := false
    next := func(echo.Context) error { called = true; return nil }

    require.NoError(t, applyDecision(c, cfg, "k", d, next))
    require.False(t, called)
    require.Equal(t, http.StatusTooManyRequests, rec.Code)
    require.Equal(t, "2", rec.Header().Get("Retry-After"))
    require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))

    rec = httptest.NewRecorder()
    c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
    require.NoError(t, applyDecision(c, cfg, "k", bucketDecision{allowed: true, remaining: 2}, next))
    require.True(t, called)
    require.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestTokenBucket_DisabledPassesThrough(t *testing.T) {
    e := echo.New()
    e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
        NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, zerolog.Nop()))
    require.Equal(t, http.StatusNoContent, do(e, http.MethodGet, "/", "").Code)
}

func viewerKey(cfg config.CacheConfig, rawQuery string) string {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/viewer?"+rawQuery, nil), httptest.NewRecorder())
    c.SetPath("/viewer")
    return cacheKeyFrom(cfg, c)
}

func TestRedisCache_MissThenHit(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Second, Prefix: "cache"}
    key := viewerKey(cfg, "item_type=Toys")

    calls := 0
    e := echo.New()
    e.GET("/viewer", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"donations": []string{}})
    }, NewRedisCache(cfg, rdb))

    mock.ExpectGet(key).RedisNil()
    rec := do(e, http.MethodGet, "/viewer?item_type=Toys", "")
    require.Equal(t, http.StatusOK, rec.Code)
    require.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    require.Equal(t, 1, calls)

    hdr := http.Header{}
    hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"donations":[]}`))
    require.NoError(t, err)
    mock.ExpectGet(key).SetVal(string(payload))

    rec = do(e, http.MethodGet, "/viewer?item_type=Toys", "")
    require.Equal(t, http.StatusOK, rec.Code)
    require.Equal(t, "HIT", rec.Header().Get("X-Cache"))
    require.JSONEq(t, `{"donations":[]}`, rec.Body.String())
    require.Equal(t, 1, calls)
    require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKey_DependsOnQuery(t *testing.T) {
    cfg := config.CacheConfig{Prefix: "cache"}
    require.NotEqual(t, viewerKey(cfg, "search=shirt"), viewerKey(cfg, "search=hat"))
    cfg.KeyStrategy = "route"
    require.Equal(t, viewerKey(cfg, "search=shirt"), viewerKey(cfg, "search=hat"))
}

func TestPayloadRoundTrip(t *testing.T) {
    _, _, _, ok := decodePayload([]byte{1, 2})
    require.False(t, ok)

    hdr := http.Header{"X-A": {"1"}}
    bs, err := encodePayload(201, hdr, []byte("body"))
    require.NoError(t, err)
    status, got, body, ok := decodePayload(bs)
    require.True(t, ok)
    require.Equal(t, 201, status)
    require.Equal(t, "1", got.Get("X-A"))
    require.Equal(t, "body", string(body))
}

func TestInvalidateCache_PurgesAfterSuccessfulWrite(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    cfg := config.CacheConfig{Enabled: true, Prefix: "cache"}
    e := echo.New()
    inv := InvalidateCache(cfg, rdb, zerolog.Nop())
    e.POST("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, inv)
    e.POST("/bad", func(c echo.Context) error { return c.NoContent(http.StatusBadRequest) }, inv)

    mock.ExpectScan(0, "cache:*", 100).SetVal([]string{"cache:a", "cache:b"}, 0)
    mock.ExpectDel("cache:a", "cache:b").SetVal(2)
    require.Equal(t, http.StatusOK, do(e, http.MethodPost, "/ok", "").Code)

    require.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/bad", "").Code)
    require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestLogger_PassesResponseThrough(t *testing.T) {
    e := echo.New()
    e.Use(RequestLogger(zerolog.Nop()))
    e.GET("/x", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "tea") })
    require.Equal(t, http.StatusTeapot, do(e, http.MethodGet, "/x", "").Code)
}

func TestRecover(t *testing.T) {
    var logs bytes.Buffer
    e := echo.New()
    e.Use(Recover(zerolog.New(&logs)))
    e.GET("/boom", func(c echo.Context) error { panic("boom") })

    rec := do(e, http.MethodGet, "/boom", "")
    require.Equal(t, http.StatusInternalServerError, rec.Code)
    require.JSONEq(t, `{"message":"Something went wrong, please try again later!"}`, rec.Body.String())
    require.Contains(t, logs.String(), "recovered from panic")
    require.Contains(t, logs.String(), "boom")
    require.Contains(t, logs.String(), `"path":"/boom"`)
}
