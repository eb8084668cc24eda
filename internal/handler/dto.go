package handler

import (
    "strings"
    "time"

    "github.com/iliyamo/donation-marketplace/internal/model"
)

// timestampLayout is the chat timestamp format, "YYYY-MM-DD HH:MM:SS".
const timestampLayout = "2006-01-02 15:04:05"

type donationResp struct {
    ID          uint64    `json:"id"`
    Email       string    `json:"email"`
    Name        string    `json:"name"`
    Description string    `json:"description"`
    ImagePath   string    `json:"image_path"`
    ImageURL    string    `json:"image_url,omitempty"`
    Gender      string    `json:"gender"`
    Size        string    `json:"size"`
    Kids        bool      `json:"kids"`
    ItemType    string    `json:"item_type"`
    Location    string    `json:"location"`
    Donated     bool      `json:"donated"`
    Purchased   bool      `json:"purchased"`
    State       string    `json:"state"`
    CreatedAt   time.Time `json:"created_at"`
}

type interestResp struct {
    ID           uint64    `json:"id"`
    DonationID   uint64    `json:"donation_id"`
    DonationName string    `json:"donation_name"`
    ViewerEmail  string    `json:"viewer_email"`
    Notified     bool      `json:"notified"`
    CreatedAt    time.Time `json:"created_at"`
}

type cartItemResp struct {
    ID       uint64       `json:"id"`
    AddedAt  time.Time    `json:"added_at"`
    Donation donationResp `json:"donation"`
}

type chatMessageResp struct {
    SenderEmail string `json:"sender_email"`
    Message     string `json:"message"`
    Timestamp   string `json:"timestamp"`
}

type userResp struct {
    ID       uint64 `json:"id"`
    Username string `json:"username"`
    Email    string `json:"email"`
    Points   int64  `json:"points"`
}

// imageURL joins the public prefix and the stored key.
func imageURL(base, key string) string {
    if key == "" || base == "" {
        return ""
    }
    return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func toDonationResp(d model.Donation, imageBase string) donationResp {
    return donationResp{
        ID:          d.ID,
        Email:       d.OwnerEmail,
        Name:        d.Name,
        Description: d.Description,
        ImagePath:   d.ImagePath,
        ImageURL:    imageURL(imageBase, d.ImagePath),
        Gender:      d.Gender,
        Size:        d.Size,
        Kids:        d.Kids,
        ItemType:    d.ItemType,
        Location:    d.Location,
        Donated:     d.Donated,
        Purchased:   d.Purchased,
        State:       d.State(),
        CreatedAt:   d.CreatedAt,
    }
}

func toDonationList(ds []model.Donation, imageBase string) []donationResp {
    out := make([]donationResp, 0, len(ds))
    for _, d := range ds {
        out = append(out, toDonationResp(d, imageBase))
    }
    return out
}
