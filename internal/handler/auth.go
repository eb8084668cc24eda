package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/donation-marketplace/internal/middleware"
    "github.com/iliyamo/donation-marketplace/internal/service"
    "github.com/iliyamo/donation-marketplace/internal/session"
)

// AuthHandler serves signup, login, logout and the landing page.  Signup
// and login keep the legacy form behaviour: failures answer 200 with a
// plain-text message, successes redirect.
type AuthHandler struct {
    Accounts     *service.Accounts
    Sessions     *session.Manager
    CookieSecure bool
    Log          zerolog.Logger
}

func NewAuthHandler(a *service.Accounts, s *session.Manager, cookieSecure bool, log zerolog.Logger) *AuthHandler {
    if a == nil || s == nil {
        panic("nil dependency passed to NewAuthHandler")
    }
    return &AuthHandler{Accounts: a, Sessions: s, CookieSecure: cookieSecure, Log: log}
}

// ----- DTOs -----

type signupReq struct {
    Username string `json:"username" form:"username"`
    Email    string `json:"email" form:"email"`
    Password string `json:"password" form:"password"`
}

type loginReq struct {
    Email    string `json:"email" form:"email"`
    Password string `json:"password" form:"password"`
}

// SignupPage describes the signup form.
func (h *AuthHandler) SignupPage(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"page": "signup", "fields": []string{"username", "email", "password"}})
}

// LoginPage describes the login form.
func (h *AuthHandler) LoginPage(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"page": "login", "fields": []string{"email", "password"}})
}

// Signup creates the account and redirects to the login page.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if err := c.Bind(&req); err != nil {
        return c.String(http.StatusBadRequest, "Invalid signup form!")
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    _, err := h.Accounts.Signup(ctx, req.Username, req.Email, req.Password)
    switch {
    case err == nil:
        return c.Redirect(http.StatusFound, "/login")
    case errors.Is(err, service.ErrUserExists):
        return c.String(http.StatusOK, "User already exists!")
    case errors.Is(err, service.ErrInvalidSignup):
        return c.String(http.StatusBadRequest, "Username, email and password are required!")
    default:
        h.Log.Error().Err(err).Msg("signup failed")
        return c.String(http.StatusInternalServerError, "Signup failed, please try again later!")
    }
}

// Login verifies the credentials, starts a session and redirects to the
// landing page.  No session is created on failure.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.String(http.StatusBadRequest, "Invalid login form!")
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    u, err := h.Accounts.Authenticate(ctx, strings.TrimSpace(req.Email), req.Password)
    if err != nil {
        if errors.Is(err, service.ErrInvalidCredentials) {
            return c.String(http.StatusOK, "Invalid credentials!")
        }
        h.Log.Error().Err(err).Msg("login failed")
        return c.String(http.StatusInternalServerError, "Login failed, please try again later!")
    }

    token, exp, err := h.Sessions.Begin(ctx, u.ID)
    if err != nil {
        h.Log.Error().Err(err).Uint64("user_id", u.ID).Msg("start session failed")
        return c.String(http.StatusInternalServerError, "Login failed, please try again later!")
    }
    c.SetCookie(h.cookie(token, exp))
    return c.Redirect(http.StatusFound, "/index")
}

// Logout revokes the session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
    if ck, err := c.Cookie(middleware.CookieName); err == nil && ck.Value != "" {
        ctx, cancel := requestCtx(c)
        defer cancel()
        if err := h.Sessions.End(ctx, ck.Value); err != nil {
            h.Log.Warn().Err(err).Msg("end session failed")
        }
    }
    expired := h.cookie("", time.Unix(0, 0))
    expired.MaxAge = -1
    c.SetCookie(expired)
    return c.Redirect(http.StatusFound, "/login")
}

// Index is the landing page shown after login.
func (h *AuthHandler) Index(c echo.Context) error {
    id := identity(c)
    ctx, cancel := requestCtx(c)
    defer cancel()

    u, err := h.Accounts.Lookup(ctx, id.UserID)
    if err != nil {
        if errors.Is(err, service.ErrUserNotFound) {
            return c.Redirect(http.StatusFound, "/login")
        }
        return internalError(c, h.Log, err, "index")
    }
    return c.JSON(http.StatusOK, echo.Map{
        "page": "index",
        "user": userResp{ID: u.ID, Username: u.Username, Email: u.Email, Points: u.Points},
    })
}

func (h *AuthHandler) cookie(value string, exp time.Time) *http.Cookie {
    return &http.Cookie{
        Name:     middleware.CookieName,
        Value:    value,
        Path:     "/",
        Expires:  exp,
        HttpOnly: true,
        Secure:   h.CookieSecure,
        SameSite: http.SameSiteLaxMode,
    }
}
