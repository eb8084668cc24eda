package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/donation-marketplace/internal/model"
)

// InterestRepo persists interest rows.
type InterestRepo struct {
	db *sql.DB
}

func NewInterestRepo(db *sql.DB) *InterestRepo { return &InterestRepo{db: db} }

func (r *InterestRepo) Exists(ctx context.Context, donationID uint64, viewerEmail string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM interests WHERE donation_id = ? AND viewer_email = ?)",
		donationID, NormalizeEmail(viewerEmail)).Scan(&exists)
	return exists, err
}

func (r *InterestRepo) Create(ctx context.Context, in *model.Interest) error {
	in.ViewerEmail = NormalizeEmail(in.ViewerEmail)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO interests (donation_id, viewer_email) VALUES (?, ?)",
		in.DonationID, in.ViewerEmail)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateInterest
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	in.ID = uint64(id)
	in.Notified = false
	return nil
}

// ListForOwner returns interests registered on any listing owned by
// ownerEmail, with the listing name.
func (r *InterestRepo) ListForOwner(ctx context.Context, ownerEmail string) ([]model.InterestEntry, error) {
	const q = `SELECT i.id, i.donation_id, i.viewer_email, i.notified, i.created_at, d.name
		FROM interests i
		JOIN donations d ON d.id = i.donation_id
		WHERE d.email = ?
		ORDER BY i.id ASC`
	rows, err := r.db.QueryContext(ctx, q, NormalizeEmail(ownerEmail))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.InterestEntry{}
	for rows.Next() {
		var e model.InterestEntry
		if err := rows.Scan(&e.ID, &e.DonationID, &e.ViewerEmail, &e.Notified, &e.CreatedAt, &e.DonationName); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkNotified flags every pending interest on the listing and returns how
// many rows changed.
func (r *InterestRepo) MarkNotified(ctx context.Context, donationID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE interests SET notified = 1 WHERE donation_id = ? AND notified = 0", donationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
