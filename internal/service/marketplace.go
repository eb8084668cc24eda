package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/donation-marketplace/internal/model"
	"github.com/iliyamo/donation-marketplace/internal/queue"
	"github.com/iliyamo/donation-marketplace/internal/repository"
	"github.com/iliyamo/donation-marketplace/internal/storage"
)

// DonationRewardPoints is credited to a donor each time a listing is
// marked as donated.
const DonationRewardPoints int64 = 10

// Deps lists the collaborators of Marketplace.  Images and Events may be
// nil; a nil Events behaves like queue.NopPublisher.
type Deps struct {
	Users     UserStore
	Listings  ListingStore
	Cart      CartStore
	Interests InterestStore
	Chat      ChatStore
	Images    storage.ImageStore
	Events    queue.Publisher
	Log       zerolog.Logger
}

// Marketplace implements the listing lifecycle and the side records that
// hang off a listing.
type Marketplace struct {
	users     UserStore
	listings  ListingStore
	cart      CartStore
	interests InterestStore
	chat      ChatStore
	images    storage.ImageStore
	events    queue.Publisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewMarketplace panics if a store dependency is nil.
func NewMarketplace(d Deps) *Marketplace {
	if d.Users == nil || d.Listings == nil || d.Cart == nil || d.Interests == nil || d.Chat == nil {
		panic("service: nil store passed to NewMarketplace")
	}
	events := d.Events
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &Marketplace{
		users:     d.Users,
		listings:  d.Listings,
		cart:      d.Cart,
		interests: d.Interests,
		chat:      d.Chat,
		images:    d.Images,
		events:    events,
		log:       d.Log,
		now:       time.Now,
	}
}

// NewListing carries the donor-supplied attributes of a listing.
type NewListing struct {
	Name        string
	Description string
	Gender      string
	Size        string
	Kids        bool
	ItemType    string
	Location    string
}

// Image is an uploaded file.  A nil Body means no image.
type Image struct {
	Filename string
	Body     io.Reader
}

// CreateListing stores the image (if any) and inserts a LISTED listing
// owned by ownerEmail.
func (m *Marketplace) CreateListing(ctx context.Context, ownerEmail string, in NewListing, img Image) (*model.Donation, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrInvalidListing
	}
	var key string
	if img.Body != nil {
		if m.images == nil {
			return nil, errors.New("service: no image store configured")
		}
		k, err := m.images.Save(ctx, img.Filename, img.Body)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		key = k
	}
	d := &model.Donation{
		OwnerEmail:  ownerEmail,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ImagePath:   key,
		Gender:      in.Gender,
		Size:        in.Size,
		Kids:        in.Kids,
		ItemType:    in.ItemType,
		Location:    in.Location,
		CreatedAt:   m.now().UTC(),
	}
	if err := m.listings.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Purchase flips the purchased flag.  A second purchase of the same
// listing fails with ErrAlreadyPurchased, including when two buyers race:
// the store only updates rows that are still unpurchased.  The buyer may
// be the owner.
func (m *Marketplace) Purchase(ctx context.Context, listingID uint64, buyerEmail string) error {
	d, err := m.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if d.Purchased {
		return ErrAlreadyPurchased
	}
	if err := m.listings.MarkPurchased(ctx, listingID); err != nil {
		return err
	}
	m.publish(ctx, queue.ListingEvent{
		Type:       queue.EventListingPurchased,
		DonationID: d.ID,
		Name:       d.Name,
		OwnerEmail: d.OwnerEmail,
		ActorEmail: buyerEmail,
	})
	return nil
}

// MarkDonated lets the owner confirm the hand-over.  The listing becomes
// donated=true, purchased=false and the owner gains DonationRewardPoints.
// Any other actor gets ErrForbidden and nothing changes.
func (m *Marketplace) MarkDonated(ctx context.Context, listingID uint64, actorEmail string) error {
	d, err := m.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if d.OwnerEmail != repository.NormalizeEmail(actorEmail) {
		return ErrForbidden
	}
	if err := m.listings.MarkDonated(ctx, listingID, d.OwnerEmail, DonationRewardPoints); err != nil {
		return err
	}
	m.publish(ctx, queue.ListingEvent{
		Type:       queue.EventListingDonated,
		DonationID: d.ID,
		Name:       d.Name,
		OwnerEmail: d.OwnerEmail,
		ActorEmail: actorEmail,
		Points:     DonationRewardPoints,
	})
	return nil
}

// ListAvailable returns listings that are not donated and match f.
func (m *Marketplace) ListAvailable(ctx context.Context, f model.ListingFilter) ([]model.Donation, error) {
	return m.listings.ListAvailable(ctx, f)
}

// Dashboard is what a donor sees about their own listings.
type Dashboard struct {
	Email     string
	Points    int64
	Donations []model.Donation
	Interests []model.InterestEntry
}

// Count is the number of listings the donor created.
func (d Dashboard) Count() int { return len(d.Donations) }

// DonorDashboard collects the owner's listings, the interests registered
// on them and the owner's points.
func (m *Marketplace) DonorDashboard(ctx context.Context, ownerEmail string) (*Dashboard, error) {
	u, err := m.users.GetByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	donations, err := m.listings.ListByOwner(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	interests, err := m.interests.ListForOwner(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Email: u.Email, Points: u.Points, Donations: donations, Interests: interests}, nil
}

// AddToCart inserts a (listing, viewer) row.  A repeated add fails with
// ErrDuplicateCartItem.
func (m *Marketplace) AddToCart(ctx context.Context, listingID uint64, viewerEmail string) (*model.CartItem, error) {
	if _, err := m.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}
	exists, err := m.cart.Exists(ctx, listingID, viewerEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCartItem
	}
	item := &model.CartItem{DonationID: listingID, ViewerEmail: viewerEmail, CreatedAt: m.now().UTC()}
	if err := m.cart.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveFromCart deletes a cart row owned by actorEmail.
func (m *Marketplace) RemoveFromCart(ctx context.Context, cartID uint64, actorEmail string) error {
	item, err := m.cart.GetByID(ctx, cartID)
	if err != nil {
		return err
	}
	if item.ViewerEmail != repository.NormalizeEmail(actorEmail) {
		return ErrForbidden
	}
	return m.cart.Delete(ctx, cartID)
}

// ListCart returns the viewer's cart joined with listing data.
func (m *Marketplace) ListCart(ctx context.Context, viewerEmail string) ([]model.CartEntry, error) {
	return m.cart.ListByViewer(ctx, viewerEmail)
}

// SendMessage appends a message to a listing's thread.  Any authenticated
// user may post.
func (m *Marketplace) SendMessage(ctx context.Context, listingID uint64, senderEmail, text string) (*model.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := m.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}
	msg := &model.ChatMessage{DonationID: listingID, SenderEmail: senderEmail, Message: text}
	if err := m.chat.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// GetMessages returns a thread in ascending timestamp order.
func (m *Marketplace) GetMessages(ctx context.Context, listingID uint64) ([]model.ChatMessage, error) {
	return m.chat.ListByDonation(ctx, listingID)
}

// ExpressInterest registers that viewerEmail wants to hear about the
// listing.  The notified flag starts false and is set by the event
// consumer once the listing is purchased.
func (m *Marketplace) ExpressInterest(ctx context.Context, listingID uint64, viewerEmail string) (*model.Interest, error) {
	if _, err := m.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}
	exists, err := m.interests.Exists(ctx, listingID, viewerEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateInterest
	}
	in := &model.Interest{DonationID: listingID, ViewerEmail: viewerEmail, CreatedAt: m.now().UTC()}
	if err := m.interests.Create(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// publish runs after the write committed.  A broker failure is logged and
// never fails the request.
func (m *Marketplace) publish(ctx context.Context, ev queue.ListingEvent) {
	ev.OccurredAt = m.now().UTC()
	if err := m.events.Publish(ctx, ev); err != nil {
		m.log.Warn().Err(err).Str("type", ev.Type).Uint64("donation_id", ev.DonationID).Msg("publish listing event")
	}
}

