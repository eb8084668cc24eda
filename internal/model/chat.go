package model

import "time"

// ChatMessage is a single immutable message in a listing's thread.
type ChatMessage struct {
    ID          uint64    // chat_messages.id
    DonationID  uint64    // chat_messages.donation_id
    SenderEmail string    // chat_messages.sender_email
    Message     string    // chat_messages.message
    CreatedAt   time.Time // chat_messages.created_at
}
