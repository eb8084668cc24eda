package service

import (
	"errors"

	"github.com/iliyamo/donation-marketplace/internal/repository"
)

// Errors returned by the marketplace and account services.  Store errors
// are re-exported so handlers only need to import this package.
var (
	ErrUserExists        = repository.ErrUserExists
	ErrUserNotFound      = repository.ErrUserNotFound
	ErrListingNotFound   = repository.ErrListingNotFound
	ErrAlreadyPurchased  = repository.ErrAlreadyPurchased
	ErrCartItemNotFound  = repository.ErrCartItemNotFound
	ErrDuplicateCartItem = repository.ErrDuplicateCartItem
	ErrDuplicateInterest = repository.ErrDuplicateInterest

	// ErrForbidden is returned when the actor does not own the resource.
	ErrForbidden = errors.New("unauthorized action")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidSignup is returned when a signup field is blank.
	ErrInvalidSignup = errors.New("username, email and password are required")
	// ErrInvalidListing is returned when a listing has no name.
	ErrInvalidListing = errors.New("listing name is required")
	// ErrEmptyMessage is returned for a blank chat message.
	ErrEmptyMessage = errors.New("message is required")
)
