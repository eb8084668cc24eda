package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/donation-marketplace/internal/service"
)

type sendMessageReq struct {
    DonationID uint64 `json:"donation_id"`
    Message    string `json:"message"`
}

// GetMessages returns a listing's chat thread, oldest first.
func (h *MarketHandler) GetMessages(c echo.Context) error {
    listingID, ok := parseID(c)
    if !ok {
        return c.JSON(http.StatusOK, []chatMessageResp{})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    msgs, err := h.Market.GetMessages(ctx, listingID)
    if err != nil {
        return internalError(c, h.Log, err, "get messages")
    }
    out := make([]chatMessageResp, 0, len(msgs))
    for _, m := range msgs {
        out = append(out, chatMessageResp{
            SenderEmail: m.SenderEmail,
            Message:     m.Message,
            Timestamp:   m.CreatedAt.UTC().Format(timestampLayout),
        })
    }
    return c.JSON(http.StatusOK, out)
}

// SendMessage posts to a listing's thread.  Body: {"donation_id", "message"}.
func (h *MarketHandler) SendMessage(c echo.Context) error {
    var req sendMessageReq
    if err := c.Bind(&req); err != nil || req.DonationID == 0 {
        return message(c, http.StatusBadRequest, "Invalid request body!")
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    _, err := h.Market.SendMessage(ctx, req.DonationID, identity(c).Email, req.Message)
    switch {
    case err == nil:
        return message(c, http.StatusOK, "Message sent successfully!")
    case errors.Is(err, service.ErrEmptyMessage):
        return message(c, http.StatusBadRequest, "Message cannot be empty!")
    case errors.Is(err, service.ErrListingNotFound):
        return message(c, http.StatusNotFound, "Donation not found!")
    default:
        return internalError(c, h.Log, err, "send message")
    }
}
