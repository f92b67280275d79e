// Package seating models how a train schedule's class layouts turn into
// addressable seats: seat identifiers, per-carriage geometry, availability
// against a schedule's blocked seats, the bounded selection a passenger
// builds while picking seats, and the capacity bounds for ticket counts.
//
// Everything here is pure and in-memory.  Nothing blocks, nothing is shared
// between goroutines, and invalid input always has a defined fallback.
package seating

import (
	"fmt"
	"strings"
)

// ClassName is a travel tier.  The set is closed: only First and Second exist.
type ClassName string

const (
	First  ClassName = "First"
	Second ClassName = "Second"
)

// Classes lists every class in display order.
var Classes = []ClassName{First, Second}

// ParseClassName accepts "First"/"Second" in any case, with surrounding
// whitespace ignored.
func ParseClassName(raw string) (ClassName, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "first":
		return First, nil
	case "second":
		return Second, nil
	}
	return "", fmt.Errorf("unknown travel class %q", raw)
}

// Valid reports whether c is one of the two known classes.
func (c ClassName) Valid() bool { return c == First || c == Second }

// Initial is the first letter of the class name, used in seat prefixes.
func (c ClassName) Initial() string {
	if c == "" {
		return ""
	}
	return string(c)[:1]
}

// SeatPrefix returns "{Initial}C{carriage}-", e.g. "FC1-".
func (c ClassName) SeatPrefix(carriage int) string {
	return fmt.Sprintf("%sC%d-", c.Initial(), carriage)
}

func classFromInitial(initial byte) (ClassName, bool) {
	switch initial {
	case 'F':
		return First, true
	case 'S':
		return Second, true
	}
	return "", false
}
