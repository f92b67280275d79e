package seating

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SeatID addresses one seat.  Class and Carriage are optional together:
// a bare id such as "A1" is only unique inside a known class and carriage,
// while a prefixed id such as "FC2-C4" is unique across the whole schedule.
type SeatID struct {
	Class    ClassName // empty for a bare id
	Carriage int       // 0 for a bare id
	Row      int       // 0-based, A=0
	Col      int       // 1-based
}

var seatIDPattern = regexp.MustCompile(`^(?:([A-Z])C([1-9][0-9]*)-)?([A-Z])([1-9][0-9]*)$`)

// NewSeatID builds a prefixed id and validates every component.
func NewSeatID(class ClassName, carriage, row, col int) (SeatID, error) {
	if !class.Valid() {
		return SeatID{}, fmt.Errorf("seat id: unknown class %q", class)
	}
	if carriage < MinCarriages || carriage > MaxCarriages {
		return SeatID{}, fmt.Errorf("seat id: carriage %d out of range", carriage)
	}
	if row < 0 || row >= MaxRows {
		return SeatID{}, fmt.Errorf("seat id: row index %d out of range", row)
	}
	if col < MinCols || col > MaxCols {
		return SeatID{}, fmt.Errorf("seat id: column %d out of range", col)
	}
	return SeatID{Class: class, Carriage: carriage, Row: row, Col: col}, nil
}

// ParseSeatID validates the wire format "{ClassInitial}C{carriage}-{Row}{Col}"
// with the prefix optional.
func ParseSeatID(raw string) (SeatID, error) {
	m := seatIDPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return SeatID{}, fmt.Errorf("seat id %q: malformed", raw)
	}
	var id SeatID
	if m[1] != "" {
		cls, ok := classFromInitial(m[1][0])
		if !ok {
			return SeatID{}, fmt.Errorf("seat id %q: unknown class initial %q", raw, m[1])
		}
		carriage, err := strconv.Atoi(m[2])
		if err != nil || carriage > MaxCarriages {
			return SeatID{}, fmt.Errorf("seat id %q: carriage out of range", raw)
		}
		id.Class, id.Carriage = cls, carriage
	}
	id.Row = int(m[3][0] - 'A')
	col, err := strconv.Atoi(m[4])
	if err != nil || col > MaxCols {
		return SeatID{}, fmt.Errorf("seat id %q: column out of range", raw)
	}
	id.Col = col
	return id, nil
}

// HasPrefix reports whether the id carries its class and carriage.
func (id SeatID) HasPrefix() bool { return id.Class != "" && id.Carriage > 0 }

// In reports whether a prefixed id names a seat of class that exists in
// layout.  Bare ids never match.
func (id SeatID) In(class ClassName, l ClassLayout) bool {
	return id.HasPrefix() && id.Class == class && l.HasCarriage(id.Carriage) &&
		id.Row >= 0 && id.Row < l.Rows && id.Col >= 1 && id.Col <= l.Cols
}

// Bare drops the class/carriage prefix.
func (id SeatID) Bare() SeatID { return SeatID{Row: id.Row, Col: id.Col} }

// RowLabel is the row letter.
func (id SeatID) RowLabel() string { return RowLabel(id.Row) }

func (id SeatID) String() string {
	label := RowLabel(id.Row) + strconv.Itoa(id.Col)
	if !id.HasPrefix() {
		return label
	}
	return id.Class.SeatPrefix(id.Carriage) + label
}

// RowLabel maps a 0-based row index to A..Z.  Indices outside the range
// are clamped so a label is always a single letter.
func RowLabel(index int) string {
	return string(rune('A' + ClampInt(index, 0, MaxRows-1)))
}
