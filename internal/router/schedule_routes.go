package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/handler"
	"github.com/iliyamo/train-ticket-reservation/internal/middleware"
	"github.com/iliyamo/train-ticket-reservation/internal/model"
)

// RegisterSchedules registers public browsing (cached), the seat map and
// selection step, and the ADMIN-only create and delete endpoints.
func RegisterSchedules(e *echo.Echo, h *handler.ScheduleHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/schedules")
	g.GET("", h.ListSchedules, cache)
	g.GET("/:id", h.GetSchedule, cache)
	g.GET("/:id/seats", h.SeatMap)
	g.POST("/:id/selection", h.Selection)

	// Admin routes share the prefix, so their middleware is per route.
	admin := []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin)}
	g.POST("", h.CreateSchedule, admin...)
	g.DELETE("/:id", h.DeleteSchedule, admin...)
}
