package model

import "time"

// Interest records that a viewer wants to be notified about a listing.
// Notified flips to true once the notification consumer processed a
// purchase event for the listing.
type Interest struct {
    ID          uint64    // interests.id
    DonationID  uint64    // interests.donation_id
    ViewerEmail string    // interests.viewer_email
    Notified    bool      // interests.notified
    CreatedAt   time.Time // interests.created_at
}

// InterestEntry is an interest joined with the name of its listing, as
// shown on the donor dashboard.
type InterestEntry struct {
    Interest
    DonationName string
}
