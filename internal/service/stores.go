// Package service composes the stores into the marketplace operations:
// the listing lifecycle, browsing, cart, chat and interests, plus account
// signup and login.  Handlers depend on the services, never on the
// repositories directly.
package service

import (
	"context"

	"github.com/iliyamo/donation-marketplace/internal/model"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ListingStore persists donations and their lifecycle flags.  MarkDonated
// must set donated=true, purchased=false and credit the owner's points as
// one unit.
type ListingStore interface {
	Create(ctx context.Context, d *model.Donation) error
	GetByID(ctx context.Context, id uint64) (*model.Donation, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]model.Donation, error)
	ListAvailable(ctx context.Context, f model.ListingFilter) ([]model.Donation, error)
	MarkPurchased(ctx context.Context, id uint64) error
	MarkDonated(ctx context.Context, id uint64, ownerEmail string, points int64) error
}

// CartStore persists cart rows.
type CartStore interface {
	Exists(ctx context.Context, donationID uint64, viewerEmail string) (bool, error)
	Create(ctx context.Context, item *model.CartItem) error
	GetByID(ctx context.Context, id uint64) (*model.CartItem, error)
	Delete(ctx context.Context, id uint64) error
	ListByViewer(ctx context.Context, viewerEmail string) ([]model.CartEntry, error)
}

// InterestStore persists interest registrations.
type InterestStore interface {
	Exists(ctx context.Context, donationID uint64, viewerEmail string) (bool, error)
	Create(ctx context.Context, in *model.Interest) error
	ListForOwner(ctx context.Context, ownerEmail string) ([]model.InterestEntry, error)
}

// ChatStore persists chat messages.
type ChatStore interface {
	Create(ctx context.Context, m *model.ChatMessage) error
	ListByDonation(ctx context.Context, donationID uint64) ([]model.ChatMessage, error)
}
