// Package router maps URLs to handlers and attaches the session guards.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/donation-marketplace/internal/handler"
    "github.com/iliyamo/donation-marketplace/internal/middleware"
)

// RegisterRoutes registers routes that need no session: the health check
// and the login/signup forms.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler, a *handler.AuthHandler) {
    e.GET("/healthz", h.Health)

    e.GET("/", a.LoginPage)
    e.GET("/login", a.LoginPage)
    e.POST("/login", a.Login)
    e.GET("/signup", a.SignupPage)
    e.POST("/signup", a.Signup)
    e.GET("/logout", a.Logout)
    e.GET("/index", a.Index, middleware.RequirePageSession())
}

// RegisterMarket registers the marketplace.  browse wraps the public
// listing view (response cache); write wraps every mutating route
// (cache invalidation).
func RegisterMarket(e *echo.Echo, m *handler.MarketHandler, browse, write echo.MiddlewareFunc) {
    page := middleware.RequirePageSession()
    api := middleware.RequireAPISession

    e.GET("/viewer", m.Viewer, browse)

    e.GET("/donor", m.DonorDashboard, page)
    e.POST("/donor", m.CreateDonation, api("Please log in to add donations!"), write)

    e.POST("/buy_item/:id", m.BuyItem, api("Please log in to buy items!"), write)
    e.POST("/mark_as_donated/:id", m.MarkAsDonated, api("Please log in to mark donations as donated!"), write)

    e.GET("/cart", m.Cart, page)
    e.POST("/add_to_cart/:id", m.AddToCart, api("Please log in to add items to your cart!"))
    e.POST("/remove_from_cart/:id", m.RemoveFromCart, api("Please log in to remove items!"))

    e.POST("/express_interest/:id", m.ExpressInterest, api("Please log in to express interest!"))

    e.GET("/get_messages/:id", m.GetMessages, api("Please log in to view messages!"))
    e.POST("/send_message", m.SendMessage, api("Please log in to send messages!"))
}

// RegisterUploads serves locally stored images.  Only used with the
// filesystem storage driver.
func RegisterUploads(e *echo.Echo, prefix, dir string) {
    e.Static(prefix, dir)
}
