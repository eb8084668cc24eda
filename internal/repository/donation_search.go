package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/donation-marketplace/internal/model"
)

// ListAvailable returns listings that are not yet donated, narrowed by the
// optional filter fields.  Conditions are joined with AND; the Search term
// matches name OR description.
func (r *DonationRepo) ListAvailable(ctx context.Context, f model.ListingFilter) ([]model.Donation, error) {
	where, args := availableWhere(f)
	q := "SELECT " + donationColumns + " FROM donations WHERE " + strings.Join(where, " AND ") + " ORDER BY id ASC"
	return r.query(ctx, q, args...)
}

// exactMatch compares byte for byte regardless of the column collation.
const exactMatch = " = ? COLLATE utf8mb4_bin"

func availableWhere(f model.ListingFilter) ([]string, []any) {
	where := []string{"donated = 0"}
	args := []any{}

	if f.Gender != "" {
		where = append(where, "gender"+exactMatch)
		args = append(args, f.Gender)
	}
	if f.Size != "" {
		where = append(where, "size"+exactMatch)
		args = append(args, f.Size)
	}
	if f.Kids != nil {
		where = append(where, "kids = ?")
		args = append(args, *f.Kids)
	}
	if f.ItemType != "" {
		where = append(where, "item_type"+exactMatch)
		args = append(args, f.ItemType)
	}
	if f.Location != "" {
		where = append(where, "LOWER(location) LIKE ?")
		args = append(args, likePattern(f.Location))
	}
	if f.Search != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		p := likePattern(f.Search)
		args = append(args, p, p)
	}
	return where, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern lower-cases s, escapes LIKE wildcards and wraps it for a
// substring match.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
