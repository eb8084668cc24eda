// Package memory is an in-process implementation of the marketplace
// stores.  It mirrors the MySQL repositories (same sentinel errors, same
// ordering and filter semantics) and backs service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/donation-marketplace/internal/model"
	"github.com/iliyamo/donation-marketplace/internal/repository"
)

// Store holds every table behind one mutex.
type Store struct {
	mu sync.Mutex

	users     map[uint64]model.User
	donations map[uint64]model.Donation
	cart      map[uint64]model.CartItem
	interests map[uint64]model.Interest
	chat      []model.ChatMessage

	seq map[string]uint64 // per-table auto increment
	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:     map[uint64]model.User{},
		donations: map[uint64]model.Donation{},
		cart:      map[uint64]model.CartItem{},
		interests: map[uint64]model.Interest{},
		seq:       map[string]uint64{},
		now:       time.Now,
	}
}

func (s *Store) nextID(table string) uint64 {
	s.seq[table]++
	return s.seq[table]
}

// Users returns the user table view.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Listings returns the donation table view.
func (s *Store) Listings() *DonationRepo { return &DonationRepo{s: s} }

// Cart returns the cart table view.
func (s *Store) Cart() *CartRepo { return &CartRepo{s: s} }

// Interests returns the interest table view.
func (s *Store) Interests() *InterestRepo { return &InterestRepo{s: s} }

// Chat returns the chat table view.
func (s *Store) Chat() *ChatRepo { return &ChatRepo{s: s} }

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, username, email, passwordHash string) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	username = strings.TrimSpace(username)
	email = repository.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Username == username || u.Email == email {
			return 0, repository.ErrUserExists
		}
	}
	id := r.s.nextID("users")
	r.s.users[id] = model.User{ID: id, Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: r.s.now().UTC()}
	return id, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = repository.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (r *UserRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

// Delete removes a user; tests use it to orphan a live session.
func (r *UserRepo) Delete(_ context.Context, id uint64) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
}

func (s *Store) incrementPoints(email string, delta int64) error {
	email = repository.NormalizeEmail(email)
	for id, u := range s.users {
		if u.Email == email {
			u.Points += delta
			s.users[id] = u
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type DonationRepo struct{ s *Store }

func (r *DonationRepo) Create(_ context.Context, d *model.Donation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.nextID("donations")
	d.OwnerEmail = repository.NormalizeEmail(d.OwnerEmail)
	d.Donated, d.Purchased = false, false
	if d.CreatedAt.IsZero() {
		d.CreatedAt = r.s.now().UTC()
	}
	r.s.donations[d.ID] = *d
	return nil
}

func (r *DonationRepo) GetByID(_ context.Context, id uint64) (*model.Donation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.donations[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	return &d, nil
}

func (r *DonationRepo) ListByOwner(_ context.Context, ownerEmail string) ([]model.Donation, error) {
	owner := repository.NormalizeEmail(ownerEmail)
	return r.collect(func(d model.Donation) bool { return d.OwnerEmail == owner }), nil
}

// ListAvailable applies the same rules as the SQL query: donated rows are
// hidden, gender/size/kids/item_type match exactly, location and search
// are case-insensitive substrings.
func (r *DonationRepo) ListAvailable(_ context.Context, f model.ListingFilter) ([]model.Donation, error) {
	loc := strings.ToLower(f.Location)
	search := strings.ToLower(f.Search)
	return r.collect(func(d model.Donation) bool {
		switch {
		case d.Donated:
			return false
		case f.Gender != "" && d.Gender != f.Gender:
			return false
		case f.Size != "" && d.Size != f.Size:
			return false
		case f.Kids != nil && d.Kids != *f.Kids:
			return false
		case f.ItemType != "" && d.ItemType != f.ItemType:
			return false
		case loc != "" && !strings.Contains(strings.ToLower(d.Location), loc):
			return false
		case search != "" &&
			!strings.Contains(strings.ToLower(d.Name), search) &&
			!strings.Contains(strings.ToLower(d.Description), search):
			return false
		}
		return true
	}), nil
}

func (r *DonationRepo) collect(keep func(model.Donation) bool) []model.Donation {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Donation{}
	for _, d := range r.s.donations {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *DonationRepo) MarkPurchased(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.donations[id]
	if !ok || d.Purchased {
		return repository.ErrAlreadyPurchased
	}
	d.Purchased = true
	r.s.donations[id] = d
	return nil
}

// MarkDonated updates the flags and the owner's points under one lock;
// if the owner is gone neither change is kept.
func (r *DonationRepo) MarkDonated(_ context.Context, id uint64, ownerEmail string, points int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.donations[id]
	if !ok {
		return repository.ErrListingNotFound
	}
	if err := r.s.incrementPoints(ownerEmail, points); err != nil {
		return err
	}
	d.Donated, d.Purchased = true, false
	r.s.donations[id] = d
	return nil
}

type CartRepo struct{ s *Store }

func (r *CartRepo) Exists(_ context.Context, donationID uint64, viewerEmail string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.exists(donationID, repository.NormalizeEmail(viewerEmail)), nil
}

func (r *CartRepo) exists(donationID uint64, viewer string) bool {
	for _, c := range r.s.cart {
		if c.DonationID == donationID && c.ViewerEmail == viewer {
			return true
		}
	}
	return false
}

func (r *CartRepo) Create(_ context.Context, item *model.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.ViewerEmail = repository.NormalizeEmail(item.ViewerEmail)
	if r.exists(item.DonationID, item.ViewerEmail) {
		return repository.ErrDuplicateCartItem
	}
	if _, ok := r.s.donations[item.DonationID]; !ok {
		return repository.ErrListingNotFound
	}
	item.ID = r.s.nextID("cart_items")
	if item.CreatedAt.IsZero() {
		item.CreatedAt = r.s.now().UTC()
	}
	r.s.cart[item.ID] = *item
	return nil
}

func (r *CartRepo) GetByID(_ context.Context, id uint64) (*model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cart[id]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}
	return &c, nil
}

func (r *CartRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cart[id]; !ok {
		return repository.ErrCartItemNotFound
	}
	delete(r.s.cart, id)
	return nil
}

func (r *CartRepo) ListByViewer(_ context.Context, viewerEmail string) ([]model.CartEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	viewer := repository.NormalizeEmail(viewerEmail)
	out := []model.CartEntry{}
	for _, c := range r.s.cart {
		if c.ViewerEmail != viewer {
			continue
		}
		out = append(out, model.CartEntry{CartItem: c, Donation: r.s.donations[c.DonationID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type InterestRepo struct{ s *Store }

func (r *InterestRepo) Exists(_ context.Context, donationID uint64, viewerEmail string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.exists(donationID, repository.NormalizeEmail(viewerEmail)), nil
}

func (r *InterestRepo) exists(donationID uint64, viewer string) bool {
	for _, in := range r.s.interests {
		if in.DonationID == donationID && in.ViewerEmail == viewer {
			return true
		}
	}
	return false
}

func (r *InterestRepo) Create(_ context.Context, in *model.Interest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	in.ViewerEmail = repository.NormalizeEmail(in.ViewerEmail)
	if r.exists(in.DonationID, in.ViewerEmail) {
		return repository.ErrDuplicateInterest
	}
	if _, ok := r.s.donations[in.DonationID]; !ok {
		return repository.ErrListingNotFound
	}
	in.ID = r.s.nextID("interests")
	in.Notified = false
	if in.CreatedAt.IsZero() {
		in.CreatedAt = r.s.now().UTC()
	}
	r.s.interests[in.ID] = *in
	return nil
}

func (r *InterestRepo) ListForOwner(_ context.Context, ownerEmail string) ([]model.InterestEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	owner := repository.NormalizeEmail(ownerEmail)
	out := []model.InterestEntry{}
	for _, in := range r.s.interests {
		d := r.s.donations[in.DonationID]
		if d.OwnerEmail != owner {
			continue
		}
		out = append(out, model.InterestEntry{Interest: in, DonationName: d.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InterestRepo) MarkNotified(_ context.Context, donationID uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, in := range r.s.interests {
		if in.DonationID == donationID && !in.Notified {
			in.Notified = true
			r.s.interests[id] = in
			n++
		}
	}
	return n, nil
}

type ChatRepo struct{ s *Store }

func (r *ChatRepo) Create(_ context.Context, m *model.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.donations[m.DonationID]; !ok {
		return repository.ErrListingNotFound
	}
	m.ID = r.s.nextID("chat_messages")
	m.SenderEmail = repository.NormalizeEmail(m.SenderEmail)
	m.CreatedAt = r.s.now().UTC()
	r.s.chat = append(r.s.chat, *m)
	return nil
}

func (r *ChatRepo) ListByDonation(_ context.Context, donationID uint64) ([]model.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.ChatMessage{}
	for _, m := range r.s.chat {
		if m.DonationID == donationID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
