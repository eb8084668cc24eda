package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/donation-marketplace/internal/service"
)

// ExpressInterest registers the session user's interest in a listing.
// The donor sees it on the dashboard.
func (h *MarketHandler) ExpressInterest(c echo.Context) error {
    listingID, ok := parseID(c)
    if !ok {
        return message(c, http.StatusNotFound, "Donation not found!")
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    _, err := h.Market.ExpressInterest(ctx, listingID, identity(c).Email)
    switch {
    case err == nil:
        return message(c, http.StatusOK, "Interest registered successfully!")
    case errors.Is(err, service.ErrListingNotFound):
        return message(c, http.StatusNotFound, "Donation not found!")
    case errors.Is(err, service.ErrDuplicateInterest):
        return message(c, http.StatusBadRequest, "You have already expressed interest in this item!")
    default:
        return internalError(c, h.Log, err, "express interest")
    }
}
