package middleware // reusable Echo middleware: auth, roles, logging, rate limiting, caching

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/utils"
)

// AuthCookie is the HTTP-only cookie set at sign in.  It carries the same
// access token as the Authorization header.
const AuthCookie = "token"

// JWTAuth validates the access token and stores the user id (uint64) and
// role (string) in the context under "user_id" and "role".  The token is
// read from "Authorization: Bearer ..." first, then from the auth cookie.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
			}
			id, role, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ctxUserID, id)
			c.Set(ctxRole, role)
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if ck, err := c.Cookie(AuthCookie); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}
