package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/donation-marketplace/internal/model"
)

// CartRepo persists cart rows.  The (donation_id, viewer_email) pair is
// unique in the schema.
type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// Exists reports whether the viewer already has the listing in the cart.
func (r *CartRepo) Exists(ctx context.Context, donationID uint64, viewerEmail string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM cart_items WHERE donation_id = ? AND viewer_email = ?)",
		donationID, NormalizeEmail(viewerEmail)).Scan(&exists)
	return exists, err
}

// Create inserts the row and fills in ID.  A unique key violation (two
// racing adds) is reported as ErrDuplicateCartItem.
func (r *CartRepo) Create(ctx context.Context, item *model.CartItem) error {
	item.ViewerEmail = NormalizeEmail(item.ViewerEmail)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO cart_items (donation_id, viewer_email) VALUES (?, ?)",
		item.DonationID, item.ViewerEmail)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateCartItem
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = uint64(id)
	return nil
}

// GetByID returns ErrCartItemNotFound if no row exists.
func (r *CartRepo) GetByID(ctx context.Context, id uint64) (*model.CartItem, error) {
	var it model.CartItem
	err := r.db.QueryRowContext(ctx,
		"SELECT id, donation_id, viewer_email, created_at FROM cart_items WHERE id = ?", id).
		Scan(&it.ID, &it.DonationID, &it.ViewerEmail, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

// Delete removes a cart row by id.
func (r *CartRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// ListByViewer returns the viewer's cart joined with listing data, oldest
// first.
func (r *CartRepo) ListByViewer(ctx context.Context, viewerEmail string) ([]model.CartEntry, error) {
	const q = `SELECT c.id, c.donation_id, c.viewer_email, c.created_at,
			d.id, d.email, d.name, d.description, d.image_path, d.gender, d.size, d.kids,
			d.item_type, d.location, d.donated, d.purchased, d.created_at
		FROM cart_items c
		JOIN donations d ON d.id = c.donation_id
		WHERE c.viewer_email = ?
		ORDER BY c.id ASC`
	rows, err := r.db.QueryContext(ctx, q, NormalizeEmail(viewerEmail))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CartEntry{}
	for rows.Next() {
		var (
			e    model.CartEntry
			desc sql.NullString
		)
		d := &e.Donation
		if err := rows.Scan(&e.ID, &e.DonationID, &e.ViewerEmail, &e.CreatedAt,
			&d.ID, &d.OwnerEmail, &d.Name, &desc, &d.ImagePath, &d.Gender, &d.Size, &d.Kids,
			&d.ItemType, &d.Location, &d.Donated, &d.Purchased, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Description = desc.String
		out = append(out, e)
	}
	return out, rows.Err()
}
