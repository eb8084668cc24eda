// Package repository contains data access logic separated from HTTP handlers.
// This file holds the donation (listing) queries and the lifecycle flag
// updates.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/donation-marketplace/internal/model"
)

// DonationRepo encapsulates all queries on the donations table.
type DonationRepo struct {
	db    *sql.DB
	users *UserRepo // credits reward points inside MarkDonated
}

func NewDonationRepo(db *sql.DB) *DonationRepo {
	return &DonationRepo{db: db, users: NewUserRepo(db)}
}

const donationColumns = "id, email, name, description, image_path, gender, size, kids, item_type, location, donated, purchased, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(s rowScanner, d *model.Donation) error {
	var desc sql.NullString
	if err := s.Scan(&d.ID, &d.OwnerEmail, &d.Name, &desc, &d.ImagePath, &d.Gender, &d.Size,
		&d.Kids, &d.ItemType, &d.Location, &d.Donated, &d.Purchased, &d.CreatedAt); err != nil {
		return err
	}
	d.Description = desc.String
	return nil
}

// Create inserts a listing in the LISTED state and fills in ID.
func (r *DonationRepo) Create(ctx context.Context, d *model.Donation) error {
	const q = `INSERT INTO donations (email, name, description, image_path, gender, size, kids, item_type, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	d.OwnerEmail = NormalizeEmail(d.OwnerEmail)
	res, err := r.db.ExecContext(ctx, q, d.OwnerEmail, d.Name, d.Description, d.ImagePath,
		d.Gender, d.Size, d.Kids, d.ItemType, d.Location)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	d.Donated = false
	d.Purchased = false
	return nil
}

// GetByID returns ErrListingNotFound if no row exists.
func (r *DonationRepo) GetByID(ctx context.Context, id uint64) (*model.Donation, error) {
	var d model.Donation
	row := r.db.QueryRowContext(ctx, "SELECT "+donationColumns+" FROM donations WHERE id = ?", id)
	if err := scanDonation(row, &d); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListByOwner returns every listing created by the given donor, including
// purchased and donated ones.
func (r *DonationRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]model.Donation, error) {
	return r.query(ctx, "SELECT "+donationColumns+" FROM donations WHERE email = ? ORDER BY id ASC", NormalizeEmail(ownerEmail))
}

func (r *DonationRepo) query(ctx context.Context, q string, args ...any) ([]model.Donation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Donation{}
	for rows.Next() {
		var d model.Donation
		if err := scanDonation(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkPurchased flips purchased to true only if it is currently false.
// The condition lives in the UPDATE so two concurrent buyers cannot both
// succeed; the loser gets ErrAlreadyPurchased.
func (r *DonationRepo) MarkPurchased(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE donations SET purchased = 1 WHERE id = ? AND purchased = 0", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyPurchased
	}
	return nil
}

// MarkDonated sets donated=true, purchased=false on the listing and grants
// points to ownerEmail in one transaction, so the flag and the reward are
// never observed apart.
func (r *DonationRepo) MarkDonated(ctx context.Context, id uint64, ownerEmail string, points int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, "UPDATE donations SET donated = 1, purchased = 0 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		// either missing or already donated; distinguish for the caller
		var exists bool
		if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM donations WHERE id = ?)", id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrListingNotFound
		}
	}
	if err := r.users.IncrementPointsTx(ctx, tx, ownerEmail, points); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
