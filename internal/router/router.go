// Package router wires handlers and middleware onto echo.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fullindescription/VL-rebrand/internal/handler"
	"github.com/fullindescription/VL-rebrand/internal/middleware"
	"github.com/fullindescription/VL-rebrand/internal/session"
)

// API bundles everything the /v1 routes need.
type API struct {
	Secret   string
	Registry *session.Registry

	Sessions *handler.SessionHandler
	Listings *handler.ListingHandler
	Cart     *handler.CartHandler
	Flow     *handler.FlowHandler
	Checkout *handler.CheckoutHandler
	Bookings *handler.BookingHandler // nil unless bookings are kept in the ledger

	RateLimit    echo.MiddlewareFunc
	ListingCache echo.MiddlewareFunc
}

// RegisterRoutes registers routes outside the API, currently the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the /v1 routes.  Opening a session and reading
// listings are public; everything else needs a session token.  Every
// route is rate limited.
func RegisterAPI(e *echo.Echo, api API) {
	limit := orPass(api.RateLimit)
	v1 := e.Group("/v1")
	v1.POST("/sessions", api.Sessions.Start, limit)
	v1.GET("/listings/:kind", api.Listings.List, limit, orPass(api.ListingCache))

	// Authenticate first so the limiter can key on the session.
	auth := v1.Group("", middleware.SessionAuth(api.Secret, api.Registry), limit)
	auth.DELETE("/sessions", api.Sessions.End)

	auth.GET("/cart", api.Cart.Get)
	auth.POST("/cart/lines", api.Cart.AddLine)
	auth.DELETE("/cart/lines", api.Cart.RemoveLine)
	auth.DELETE("/cart", api.Cart.Clear)

	auth.GET("/flow", api.Flow.Get)
	auth.POST("/flow/session", api.Flow.SelectSession)
	auth.POST("/flow/seats/toggle", api.Flow.Toggle)
	auth.PUT("/flow/quantity", api.Flow.SetQuantity)
	auth.POST("/flow/confirm", api.Flow.Confirm)
	auth.POST("/flow/cancel", api.Flow.Cancel)

	auth.POST("/checkout", api.Checkout.Submit)
	if api.Bookings != nil {
		auth.GET("/bookings/:ref", api.Bookings.Get)
	}
}

func orPass(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	if mw == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return mw
}
