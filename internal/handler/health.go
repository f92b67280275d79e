package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http" // net/http provides status codes and response helpers
	"time"

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Readiness is what the readiness probe asks: has the schema been created
// and does the database still answer.
type Readiness interface {
	Ready() bool
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	Schema Readiness
}

func NewHealthHandler(schema Readiness) *HealthHandler {
	return &HealthHandler{Schema: schema}
}

// Health is a simple liveness endpoint used by load balancers and
// monitoring systems.  It returns a plain text "ok" with status 200.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready answers 200 once the schema is in place and the database pings,
// 503 otherwise.
func (h *HealthHandler) Ready(c echo.Context) error {
	if h.Schema == nil || !h.Schema.Ready() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "starting"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.Schema.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "database unreachable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}
