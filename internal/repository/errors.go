// Package repository holds the database/sql data access for users,
// refresh tokens and train schedules.  Sentinel errors below let the
// handlers map failures to HTTP status codes with errors.Is.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned by signup when the email is taken (409).
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches an id or email (404,
// or 401 during sign in).
var ErrUserNotFound = errors.New("user not found")

// ErrScheduleNotFound is returned when no schedule has the given id (404).
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrNoFields is returned by a partial update that carries nothing to
// change (400).
var ErrNoFields = errors.New("no fields to update")

// isDuplicateKey detects MySQL error 1062.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
