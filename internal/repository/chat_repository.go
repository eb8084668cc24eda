package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/donation-marketplace/internal/model"
)

// ChatRepo persists listing chat messages.  Rows are never updated.
type ChatRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{db: db, now: time.Now} }

// Create stores the message with a server-assigned UTC timestamp.
func (r *ChatRepo) Create(ctx context.Context, m *model.ChatMessage) error {
	m.CreatedAt = r.now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO chat_messages (donation_id, sender_email, message, created_at) VALUES (?, ?, ?, ?)",
		m.DonationID, NormalizeEmail(m.SenderEmail), m.Message, m.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListByDonation returns a listing's thread ordered by timestamp ascending.
func (r *ChatRepo) ListByDonation(ctx context.Context, donationID uint64) ([]model.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, donation_id, sender_email, message, created_at FROM chat_messages WHERE donation_id = ? ORDER BY created_at ASC, id ASC",
		donationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ChatMessage{}
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.DonationID, &m.SenderEmail, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
