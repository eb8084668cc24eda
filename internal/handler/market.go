package handler

import (
    "github.com/rs/zerolog"

    "github.com/iliyamo/donation-marketplace/internal/service"
)

// MarketHandler serves the marketplace endpoints: browsing, the donor
// dashboard, purchases, the cart, chat and interests.  Every route except
// /viewer runs behind the session middleware.
type MarketHandler struct {
    Market    *service.Marketplace
    ImageBase string // public prefix of stored images, e.g. "/uploads"
    Log       zerolog.Logger
}

// NewMarketHandler panics if the marketplace service is nil.
func NewMarketHandler(m *service.Marketplace, imageBase string, log zerolog.Logger) *MarketHandler {
    if m == nil {
        panic("nil marketplace passed to NewMarketHandler")
    }
    return &MarketHandler{Market: m, ImageBase: imageBase, Log: log}
}
