package booking

import (
	"errors"
	"fmt"

	"github.com/iliyamo/train-ticket-reservation/internal/seating"
)

// ErrNoSchedule rejects a booking that has no train chosen yet.
var ErrNoSchedule = errors.New("Please select a train before booking.")

// CountMismatchError rejects a selection whose size differs from the
// ticket count.  The message names the required count.
type CountMismatchError struct {
	Required int
	Selected int
}

func (e CountMismatchError) Error() string {
	plural := "s"
	if e.Required == 1 {
		plural = ""
	}
	return fmt.Sprintf("Please select exactly %d seat%s.", e.Required, plural)
}

// CapacityError rejects a ticket count outside [1, capacity] of a class.
type CapacityError struct {
	Class     seating.ClassName
	Capacity  int
	Requested int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("Invalid ticket count. Available capacity for %s is %d.", e.Class, e.Capacity)
}

// ValidationError is a bad passenger field, class or seat id.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

func IsCountMismatch(err error) bool {
	var target CountMismatchError
	return errors.As(err, &target)
}

func IsCapacity(err error) bool {
	var target CapacityError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

// StateOf maps a Build error to the state the builder stopped in.
func StateOf(err error) State {
	switch {
	case err == nil:
		return StateReady
	case errors.Is(err, ErrNoSchedule):
		return StateNoSchedule
	case IsCountMismatch(err):
		return StateCountMismatch
	case IsCapacity(err):
		return StateCapacityViolation
	}
	return StateInvalid
}
