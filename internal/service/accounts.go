package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/donation-marketplace/internal/model"
	"github.com/iliyamo/donation-marketplace/internal/utils"
)

// Accounts handles signup and credential checks.
type Accounts struct {
	users UserStore
	cost  int
}

// NewAccounts panics if users is nil.  cost is the bcrypt work factor.
func NewAccounts(users UserStore, cost int) *Accounts {
	if users == nil {
		panic("service: nil UserStore")
	}
	return &Accounts{users: users, cost: cost}
}

// Signup hashes the password and creates the account.  A taken username
// or email yields ErrUserExists and no row is written.
func (a *Accounts) Signup(ctx context.Context, username, email, password string) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return 0, ErrInvalidSignup
	}
	hash, err := utils.HashPassword(password, a.cost)
	if err != nil {
		return 0, err
	}
	return a.users.Create(ctx, username, email, hash)
}

// Authenticate returns the user when the password matches.  An unknown
// email and a wrong password both produce ErrInvalidCredentials.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Lookup returns the user behind a session.
func (a *Accounts) Lookup(ctx context.Context, id uint64) (model.User, error) {
	return a.users.GetByID(ctx, id)
}
