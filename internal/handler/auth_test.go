package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/config"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
	"github.com/iliyamo/train-ticket-reservation/internal/utils"
	"github.com/iliyamo/train-ticket-reservation/pkg/logger"
)

var userCols = []string{"id", "email", "password_hash", "full_name", "phone", "role", "is_active", "created_at", "updated_at"}

var testCfg = config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}

func authServer(db *sql.DB) *AuthHandler {
	return NewAuthHandler(testCfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), logger.Nop())
}

func authEcho(h *AuthHandler) *echo.Echo {
	e := newEcho()
	e.POST("/v1/auth/signup", h.Signup)
	e.POST("/v1/auth/signin", h.Signin)
	e.POST("/v1/auth/refresh", h.Refresh)
	e.POST("/v1/auth/logout", h.Logout)
	e.PATCH("/v1/profile", h.UpdateProfile, asUser(3, "CUSTOMER"))
	return e
}

func TestSignupCreatesCustomer(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()
	srv := authEcho(authServer(db))

	mock.ExpectExec("INSERT INTO users").
		WithArgs("amara@example.com", sqlmock.AnyArg(), "Amara Fernando", nil, "CUSTOMER").
		WillReturnResult(sqlmock.NewResult(3, 1))

	rec := doJSON(srv, http.MethodPost, "/v1/auth/signup",
		`{"email":" Amara@Example.com ","password":"secret1","fullName":"Amara Fernando"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if _, ok := decode(t, rec)["access"]; ok {
		t.Fatal("signup must not issue tokens")
	}
}

func TestSignupValidation(t *testing.T) {
	db, _, done := newMock(t)
	defer done()
	srv := authEcho(authServer(db))

	cases := map[string]string{
		`{"email":"nope","password":"secret1","fullName":"A"}`:                 "email must be a valid email",
		`{"email":"a@b.co","password":"123","fullName":"A"}`:                   "password must be at least 6 characters",
		`{"email":"a@b.co","password":"secret1"}`:                              "fullName is required",
		`{"email":"a@b.co","password":"secret1","fullName":"A","role":"ROOT"}`: "role must be one of: ADMIN CUSTOMER",
	}
	for body, want := range cases {
		rec := doJSON(srv, http.MethodPost, "/v1/auth/signup", body)
		if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != want {
			t.Errorf("%s: %d %s", body, rec.Code, rec.Body.String())
		}
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()
	srv := authEcho(authServer(db))

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))
	rec := doJSON(srv, http.MethodPost, "/v1/auth/signup",
		`{"email":"a@b.co","password":"secret1","fullName":"A","role":"admin"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestSigninSetsCookie(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()
	srv := authEcho(authServer(db))

	hash, err := utils.HashPassword("secret1", 4)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	mock.ExpectQuery("FROM users WHERE email").WithArgs("amara@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, "amara@example.com", hash, "Amara", nil, "CUSTOMER", true, now, now))
	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	rec := doJSON(srv, http.MethodPost, "/v1/auth/signin", `{"email":"amara@example.com","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "token=") {
		t.Fatalf("cookie %q", rec.Header().Get("Set-Cookie"))
	}
	access := decode(t, rec)["access"].(map[string]interface{})
	uid, role, err := utils.ParseAccessToken(testCfg.JWTSecret, access["token"].(string))
	if err != nil || uid != 3 || role != "CUSTOMER" {
		t.Fatalf("token claims %d %s %v", uid, role, err)
	}
}

func TestSigninRejectsBadPassword(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()
	srv := authEcho(authServer(db))

	hash, _ := utils.HashPassword("secret1", 4)
	now := time.Now()
	mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, "amara@example.com", hash, "Amara", nil, "CUSTOMER", true, now, now))
	rec := doJSON(srv, http.MethodPost, "/v1/auth/signin", `{"email":"amara@example.com","password":"wrong!!"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}

	mock.ExpectQuery("FROM users WHERE email").WillReturnRows(sqlmock.NewRows(userCols))
	rec = doJSON(srv, http.MethodPost, "/v1/auth/signin", `{"email":"ghost@example.com","password":"secret1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user status %d", rec.Code)
	}
}

func TestRefreshRotates(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()
	srv := authEcho(authServer(db))

	now := time.Now()
	oldHash := utils.HashRefreshRaw("old-refresh")
	mock.ExpectQuery("FROM refresh_tokens WHERE token_hash").WithArgs(oldHash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).AddRow(3, now.Add(time.Hour), nil))
	mock.ExpectQuery("FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, "amara@example.com", "x", "Amara", nil, "ADMIN", true, now, now))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").WithArgs(oldHash).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	rec := doJSON(srv, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"old-refresh"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	refresh := decode(t, rec)["refresh"].(map[string]interface{})
	if refresh["token"] == "old-refresh" || refresh["token"] == "" {
		t.Fatalf("refresh not rotated: %v", refresh)
	}
}

func TestRefreshRejectsRevoked(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()
	srv := authEcho(authServer(db))

	mock.ExpectQuery("FROM refresh_tokens WHERE token_hash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(3, time.Now().Add(time.Hour), time.Now()))
	rec := doJSON(srv, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"used"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}
	if rec = doJSON(srv, http.MethodPost, "/v1/auth/refresh", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body status %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()
	srv := authEcho(authServer(db))

	if rec := doJSON(srv, http.MethodPost, "/v1/auth/logout", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("anonymous logout status %d", rec.Code)
	}

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WithArgs(utils.HashRefreshRaw("r1")).WillReturnResult(sqlmock.NewResult(0, 1))
	if rec := doJSON(srv, http.MethodPost, "/v1/auth/logout", `{"refresh_token":"r1"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("status %d", rec.Code)
	}

	tok, err := utils.NewAccessToken(testCfg.JWTSecret, 3, "CUSTOMER", 5)
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 2))
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("bearer logout status %d", rec.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()
	srv := authEcho(authServer(db))

	if rec := doJSON(srv, http.MethodPatch, "/v1/profile", `{}`); rec.Code != http.StatusBadRequest ||
		decode(t, rec)["error"] != "no fields to update" {
		t.Fatalf("empty patch: %d %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(srv, http.MethodPatch, "/v1/profile", `{"password":"abc"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("short password: %d", rec.Code)
	}

	now := time.Now()
	mock.ExpectExec("UPDATE users SET phone=\\? WHERE id=\\?").WithArgs(nil, 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, "amara@example.com", "x", "Amara", nil, "CUSTOMER", true, now, now))
	rec := doJSON(srv, http.MethodPatch, "/v1/profile", `{"phone":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["phone"] != nil {
		t.Fatal("phone should be cleared")
	}
}
