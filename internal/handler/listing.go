package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/donation-marketplace/internal/model"
    "github.com/iliyamo/donation-marketplace/internal/service"
)

// Viewer lists available listings.  Optional query parameters: gender,
// size, kids, item_type, location, search.
func (h *MarketHandler) Viewer(c echo.Context) error {
    f := model.ListingFilter{
        Gender:   strings.TrimSpace(c.QueryParam("gender")),
        Size:     strings.TrimSpace(c.QueryParam("size")),
        Kids:     parseKids(c.QueryParam("kids")),
        ItemType: strings.TrimSpace(c.QueryParam("item_type")),
        Location: strings.TrimSpace(c.QueryParam("location")),
        Search:   strings.TrimSpace(c.QueryParam("search")),
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    ds, err := h.Market.ListAvailable(ctx, f)
    if err != nil {
        return internalError(c, h.Log, err, "list available")
    }
    return c.JSON(http.StatusOK, echo.Map{"donations": toDonationList(ds, h.ImageBase)})
}

// CreateDonation accepts the multipart donation form.  The image field is
// required; the kids checkbox is on whenever it carries a value.
func (h *MarketHandler) CreateDonation(c echo.Context) error {
    id := identity(c)
    in := service.NewListing{
        Name:        strings.TrimSpace(c.FormValue("name")),
        Description: c.FormValue("description"),
        Gender:      strings.TrimSpace(c.FormValue("gender")),
        Size:        strings.TrimSpace(c.FormValue("size")),
        Kids:        c.FormValue("kids") != "",
        ItemType:    strings.TrimSpace(c.FormValue("item_type")),
        Location:    strings.TrimSpace(c.FormValue("location")),
    }
    fh, err := c.FormFile("image")
    if err != nil || in.Name == "" {
        return message(c, http.StatusBadRequest, "Invalid donation form!")
    }
    file, err := fh.Open()
    if err != nil {
        return message(c, http.StatusBadRequest, "Invalid donation form!")
    }
    defer file.Close()

    ctx, cancel := requestCtx(c)
    defer cancel()

    d, err := h.Market.CreateListing(ctx, id.Email, in, service.Image{Filename: fh.Filename, Body: file})
    if err != nil {
        return internalError(c, h.Log, err, "create listing")
    }
    h.Log.Info().Uint64("donation_id", d.ID).Str("owner", d.OwnerEmail).Msg("donation listed")
    return c.JSON(http.StatusOK, echo.Map{
        "message":  "Donation added successfully!",
        "donation": toDonationResp(*d, h.ImageBase),
    })
}

// DonorDashboard shows the donor's own listings, the interests registered
// on them and the reward points earned.
func (h *MarketHandler) DonorDashboard(c echo.Context) error {
    id := identity(c)
    ctx, cancel := requestCtx(c)
    defer cancel()

    dash, err := h.Market.DonorDashboard(ctx, id.Email)
    if err != nil {
        if errors.Is(err, service.ErrUserNotFound) {
            return c.Redirect(http.StatusFound, "/login")
        }
        return internalError(c, h.Log, err, "donor dashboard")
    }
    interests := make([]interestResp, 0, len(dash.Interests))
    for _, in := range dash.Interests {
        interests = append(interests, interestResp{
            ID:           in.ID,
            DonationID:   in.DonationID,
            DonationName: in.DonationName,
            ViewerEmail:  in.ViewerEmail,
            Notified:     in.Notified,
            CreatedAt:    in.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "donations":   toDonationList(dash.Donations, h.ImageBase),
        "donor_count": dash.Count(),
        "interests":   interests,
        "donor_email": dash.Email,
        "points":      dash.Points,
    })
}
