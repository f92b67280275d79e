package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/config"
	"github.com/iliyamo/train-ticket-reservation/internal/middleware"
	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
	"github.com/iliyamo/train-ticket-reservation/internal/utils"
	"github.com/iliyamo/train-ticket-reservation/pkg/logger"
)

// AuthHandler bundles dependencies for auth and profile endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Log    *logger.Logger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"max=32"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN CUSTOMER"`
}
type signinReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Phone     *string   `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, FullName: u.FullName, Phone: u.Phone, Role: u.Role, CreatedAt: u.CreatedAt}
}

// Signup creates an account.  No token is issued; the client signs in next.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if err := c.Validate(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, validationMessage(err))
	}
	if req.Role == "" {
		req.Role = model.RoleCustomer
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, repository.NewUser{
		Email: req.Email, Password: req.Password, FullName: req.FullName, Phone: req.Phone, Role: req.Role,
	}, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return errJSON(c, http.StatusConflict, "email already exists")
		}
		h.Log.WithError(err).Error("create user failed")
		return internalError(c, "create user failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "account created",
		"user":    userPart{ID: uid, Email: req.Email, FullName: req.FullName, Role: req.Role},
	})
}

// Signin verifies credentials, returns a token pair and sets the auth cookie.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return errJSON(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.Log.LogAuthFailure(req.Email, "unknown email")
			return errJSON(c, http.StatusUnauthorized, "invalid credentials")
		}
		return internalError(c, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		h.Log.LogAuthFailure(req.Email, "bad password")
		return errJSON(c, http.StatusUnauthorized, "invalid credentials")
	}
	if !u.IsActive {
		h.Log.LogAuthFailure(req.Email, "inactive")
		return errJSON(c, http.StatusForbidden, "account disabled")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return internalError(c, "issue access failed")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return internalError(c, "issue refresh failed")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return internalError(c, "save refresh failed")
	}

	h.setAuthCookie(c, access)
	h.Log.LogAuthSuccess(u.ID, u.Email)
	return c.JSON(http.StatusOK, authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Refresh exchanges a refresh token for a new pair.  The old token is
// revoked in the same transaction, so it works once.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return errJSON(c, http.StatusBadRequest, "refresh_token required")
	}
	oldHash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, oldHash, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return errJSON(c, http.StatusUnauthorized, "invalid refresh")
		}
		return internalError(c, "query failed")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errJSON(c, http.StatusUnauthorized, "invalid refresh")
		}
		return internalError(c, "load user failed")
	}

	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return internalError(c, "issue refresh failed")
	}
	if err := h.Tokens.Rotate(ctx, userID, oldHash, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return errJSON(c, http.StatusUnauthorized, "invalid refresh")
		}
		return internalError(c, "save refresh failed")
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return internalError(c, "issue access failed")
	}

	h.setAuthCookie(c, access)
	return c.JSON(http.StatusOK, authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// Logout revokes the refresh token in the body.  Without one, every token
// of the caller identified by the access token is revoked.  The auth
// cookie is cleared either way.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	switch {
	case raw != "":
		if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return internalError(c, "revoke failed")
		}
	default:
		uid, ok := h.bearerUser(c)
		if !ok {
			return errJSON(c, http.StatusBadRequest, "refresh_token or access token required")
		}
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return internalError(c, "revoke failed")
		}
	}
	h.clearAuthCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// bearerUser parses the access token outside the JWT middleware.
func (h *AuthHandler) bearerUser(c echo.Context) (uint64, bool) {
	raw := ""
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		raw = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	} else if ck, err := c.Cookie(middleware.AuthCookie); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		return 0, false
	}
	uid, _, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw)
	return uid, err == nil
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return errJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errJSON(c, http.StatusNotFound, "user not found")
		}
		return internalError(c, "load user failed")
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

func (h *AuthHandler) setAuthCookie(c echo.Context, access utils.AccessToken) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AuthCookie,
		Value:    access.Token,
		Path:     "/",
		Expires:  access.Exp,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AuthCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
