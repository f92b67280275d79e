package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/handler"
	"github.com/iliyamo/train-ticket-reservation/internal/middleware"
	"github.com/iliyamo/train-ticket-reservation/internal/model"
)

// RegisterBookings registers the booking hand-off.  Any signed in user may
// book; limit runs after JWTAuth so the bucket is keyed by user.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/bookings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleCustomer),
		limit,
	)
	g.POST("", h.Submit)
	g.POST("/slip", h.Slip)
}
