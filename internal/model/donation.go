package model

import "time"

// Donation is a listed item offered by a donor.  Its lifecycle is carried
// by two flags: Purchased is set by a buyer, Donated (with Purchased
// cleared) is set by the owner once the item was physically handed over.
// Only rows with Donated=false are visible in the browse view.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerEmail  – email of the donor who created the listing.
//  Name        – short free-text title.
//  Description – free-text description.
//  ImagePath   – storage key of the uploaded image.
//  Gender      – e.g. Male, Female, Unisex.
//  Size        – e.g. Small, Medium, Large.
//  Kids        – true when the item is meant for children.
//  ItemType    – e.g. Clothing, Toys, Books.
//  Location    – free-text pickup location.
//  Donated     – set once the owner confirms the hand-over.
//  Purchased   – set once a buyer claims the item.
//  CreatedAt   – creation timestamp.
type Donation struct {
    ID          uint64    // donations.id
    OwnerEmail  string    // donations.email
    Name        string    // donations.name
    Description string    // donations.description
    ImagePath   string    // donations.image_path
    Gender      string    // donations.gender
    Size        string    // donations.size
    Kids        bool      // donations.kids
    ItemType    string    // donations.item_type
    Location    string    // donations.location
    Donated     bool      // donations.donated
    Purchased   bool      // donations.purchased
    CreatedAt   time.Time // donations.created_at
}

// Lifecycle states derived from the flags.  InCart is orthogonal and is
// not represented here because it depends on cart rows, not on the
// listing itself.
const (
    StateListed    = "LISTED"
    StatePurchased = "PURCHASED"
    StateDonated   = "DONATED"
)

// State reports the lifecycle state implied by the flags.
func (d Donation) State() string {
    switch {
    case d.Donated:
        return StateDonated
    case d.Purchased:
        return StatePurchased
    default:
        return StateListed
    }
}

// ListingFilter enumerates the optional criteria of the browse view.  An
// empty string (or nil Kids) means "no constraint".  Gender, Size, Kids
// and ItemType match exactly; Location is a case-insensitive substring
// match; Search matches Name OR Description case-insensitively.
type ListingFilter struct {
    Gender   string
    Size     string
    Kids     *bool
    ItemType string
    Location string
    Search   string
}
