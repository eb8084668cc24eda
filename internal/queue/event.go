// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer pair that moves them.
package queue

import "time"

// Event types carried in ListingEvent.Type.
const (
    EventListingPurchased = "listing.purchased"
    EventListingDonated   = "listing.donated"
)

// ListingEventsQueue is the durable queue every lifecycle event goes to.
const ListingEventsQueue = "listing.events"

// ListingEvent is published after a listing changes state.  It contains
// enough information for downstream consumers to log or notify without
// querying the primary database.
type ListingEvent struct {
    Type       string    `json:"type"`
    DonationID uint64    `json:"donation_id"`
    Name       string    `json:"name"`
    OwnerEmail string    `json:"owner_email"`
    ActorEmail string    `json:"actor_email"`
    Points     int64     `json:"points,omitempty"`
    OccurredAt time.Time `json:"occurred_at"`
}
