package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/donation-marketplace/internal/service"
)

// BuyItem marks a listing as purchased by the session user.
func (h *MarketHandler) BuyItem(c echo.Context) error {
    listingID, ok := parseID(c)
    if !ok {
        return message(c, http.StatusNotFound, "Donation not found!")
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    err := h.Market.Purchase(ctx, listingID, identity(c).Email)
    switch {
    case err == nil:
        return message(c, http.StatusOK, "You have successfully purchased this item!")
    case errors.Is(err, service.ErrListingNotFound):
        return message(c, http.StatusNotFound, "Donation not found!")
    case errors.Is(err, service.ErrAlreadyPurchased):
        return message(c, http.StatusBadRequest, "This item has already been purchased!")
    default:
        return internalError(c, h.Log, err, "purchase")
    }
}

// MarkAsDonated lets the owner confirm the hand-over and collect reward
// points.
func (h *MarketHandler) MarkAsDonated(c echo.Context) error {
    listingID, ok := parseID(c)
    if !ok {
        return message(c, http.StatusNotFound, "Donation not found!")
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    err := h.Market.MarkDonated(ctx, listingID, identity(c).Email)
    switch {
    case err == nil:
        return message(c, http.StatusOK, "Donation marked as donated, and reward points added!")
    case errors.Is(err, service.ErrListingNotFound):
        return message(c, http.StatusNotFound, "Donation not found!")
    case errors.Is(err, service.ErrForbidden):
        return message(c, http.StatusForbidden, "Unauthorized action!")
    case errors.Is(err, service.ErrUserNotFound):
        return message(c, http.StatusNotFound, "User not found!")
    default:
        return internalError(c, h.Log, err, "mark donated")
    }
}
