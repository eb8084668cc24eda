package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/donation-marketplace/internal/service"
)

// AddToCart puts a listing into the session user's cart.
func (h *MarketHandler) AddToCart(c echo.Context) error {
    listingID, ok := parseID(c)
    if !ok {
        return message(c, http.StatusNotFound, "Donation not found!")
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    _, err := h.Market.AddToCart(ctx, listingID, identity(c).Email)
    switch {
    case err == nil:
        return message(c, http.StatusOK, "Item added to cart successfully!")
    case errors.Is(err, service.ErrListingNotFound):
        return message(c, http.StatusNotFound, "Donation not found!")
    case errors.Is(err, service.ErrDuplicateCartItem):
        return message(c, http.StatusBadRequest, "Item already in cart!")
    default:
        return internalError(c, h.Log, err, "add to cart")
    }
}

// RemoveFromCart deletes one of the session user's cart rows.
func (h *MarketHandler) RemoveFromCart(c echo.Context) error {
    cartID, ok := parseID(c)
    if !ok {
        return message(c, http.StatusNotFound, "Cart item not found!")
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    err := h.Market.RemoveFromCart(ctx, cartID, identity(c).Email)
    switch {
    case err == nil:
        return message(c, http.StatusOK, "Item removed from cart!")
    case errors.Is(err, service.ErrCartItemNotFound):
        return message(c, http.StatusNotFound, "Cart item not found!")
    case errors.Is(err, service.ErrForbidden):
        return message(c, http.StatusForbidden, "Unauthorized action!")
    default:
        return internalError(c, h.Log, err, "remove from cart")
    }
}

// Cart shows the session user's cart joined with listing data.
func (h *MarketHandler) Cart(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    entries, err := h.Market.ListCart(ctx, identity(c).Email)
    if err != nil {
        return internalError(c, h.Log, err, "list cart")
    }
    items := make([]cartItemResp, 0, len(entries))
    for _, e := range entries {
        items = append(items, cartItemResp{
            ID:       e.ID,
            AddedAt:  e.CreatedAt,
            Donation: toDonationResp(e.Donation, h.ImageBase),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"cart_items": items})
}
