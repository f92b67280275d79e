package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/train-ticket-reservation/internal/handler"    // handlers implementing each endpoint
	"github.com/iliyamo/train-ticket-reservation/internal/middleware" // JWT authentication and role enforcement
	"github.com/iliyamo/train-ticket-reservation/internal/model"      // role names
)

// RegisterRoutes registers the unauthenticated probes.  /healthz answers as
// soon as the process runs; /readyz waits for the schema.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", h.Ready)
}

// RegisterAuth registers sign up, sign in, token refresh and logout under
// /v1/auth, and the profile endpoints behind JWTAuth.  limit guards the
// unauthenticated auth endpoints against brute force.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/signup", a.Signup)
	g.POST("/signin", a.Signin)
	g.POST("/refresh", a.Refresh)
	// Logout does not require JWTAuth: a refresh token in the body is enough.
	g.POST("/logout", a.Logout)

	authed := middleware.JWTAuth(jwtSecret)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleCustomer)
	g.GET("/me", a.Me, authed, anyRole)

	p := e.Group("/v1/profile", authed, anyRole)
	p.GET("", a.GetProfile)
	p.PATCH("", a.UpdateProfile)
}
