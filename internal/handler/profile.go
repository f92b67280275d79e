package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/middleware"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

// profileReq is a partial update: absent fields stay unchanged and an
// empty phone clears it.
type profileReq struct {
	FullName *string `json:"fullName" validate:"omitempty,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// GetProfile is Me under /v1/profile.
func (h *AuthHandler) GetProfile(c echo.Context) error { return h.Me(c) }

// UpdateProfile applies a PATCH to the caller's own account.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return errJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	var req profileReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return errJSON(c, http.StatusBadRequest, msg)
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return errJSON(c, http.StatusBadRequest, "fullName cannot be empty")
	}
	if req.Password != nil && *req.Password == "" {
		return errJSON(c, http.StatusBadRequest, "password must be at least 6 characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, uid, repository.ProfileUpdate{
		FullName: req.FullName, Phone: req.Phone, Password: req.Password,
	}, h.Cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrNoFields):
		return errJSON(c, http.StatusBadRequest, "no fields to update")
	case errors.Is(err, repository.ErrUserNotFound):
		return errJSON(c, http.StatusNotFound, "user not found")
	case err != nil:
		h.Log.WithError(err).WithUserID(uid).Error("update profile failed")
		return internalError(c, "update failed")
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}
