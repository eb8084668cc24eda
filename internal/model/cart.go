package model

import "time"

// CartItem links a viewer to a listing they intend to purchase.  At most
// one row exists per (DonationID, ViewerEmail) pair.
type CartItem struct {
    ID          uint64    // cart_items.id
    DonationID  uint64    // cart_items.donation_id
    ViewerEmail string    // cart_items.viewer_email
    CreatedAt   time.Time // cart_items.created_at
}

// CartEntry is a cart row joined with its listing.
type CartEntry struct {
    CartItem
    Donation Donation
}
