// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrUserExists is returned when the username or email is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrListingNotFound is returned when a donation row does not exist.
	ErrListingNotFound = errors.New("donation not found")
	// ErrAlreadyPurchased is returned when a purchase hits a listing whose
	// purchased flag is already set.
	ErrAlreadyPurchased = errors.New("donation already purchased")
	// ErrCartItemNotFound is returned when a cart row does not exist.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrDuplicateCartItem is returned when the (listing, viewer) pair is
	// already in the cart.
	ErrDuplicateCartItem = errors.New("item already in cart")
	// ErrDuplicateInterest is returned when the viewer already registered
	// interest in the listing.
	ErrDuplicateInterest = errors.New("interest already registered")
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a MySQL unique constraint violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
