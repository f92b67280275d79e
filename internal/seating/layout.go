package seating

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Layout bounds.  Rows are letters A..Z so MaxRows is 26.
const (
	MinCarriages = 1
	MaxCarriages = 50
	MinRows      = 1
	MaxRows      = 26
	MinCols      = 1
	MaxCols      = 10

	// MinTickets is the fallback for any missing or unusable ticket count.
	MinTickets = 1
)

// ClassLayout is the carriage/row/column shape of one travel class.
// Capacity is never stored: it is derived from the three dimensions each
// time it is asked for.
type ClassLayout struct {
	Carriages int `json:"carriages"`
	Rows      int `json:"rows"`
	Cols      int `json:"cols"`
}

// NewClassLayout clamps each dimension into its allowed range.  Values out
// of range are clamped, never rejected.
func NewClassLayout(carriages, rows, cols int) ClassLayout {
	return ClassLayout{
		Carriages: ClampInt(carriages, MinCarriages, MaxCarriages),
		Rows:      ClampInt(rows, MinRows, MaxRows),
		Cols:      ClampInt(cols, MinCols, MaxCols),
	}
}

// Capacity is carriages * rows * cols.  Degenerate layouts (any dimension
// zero or negative) have capacity 0.
func (l ClassLayout) Capacity() int {
	if l.Carriages <= 0 || l.Rows <= 0 || l.Cols <= 0 {
		return 0
	}
	return l.Carriages * l.Rows * l.Cols
}

// SeatsPerCarriage is rows * cols.
func (l ClassLayout) SeatsPerCarriage() int {
	if l.Rows <= 0 || l.Cols <= 0 {
		return 0
	}
	return l.Rows * l.Cols
}

// HasCarriage reports whether n is a valid 1-based carriage number.
func (l ClassLayout) HasCarriage(n int) bool { return n >= 1 && n <= l.Carriages }

// MarshalJSON adds the derived capacity to the encoded layout.
func (l ClassLayout) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Carriages int `json:"carriages"`
		Rows      int `json:"rows"`
		Cols      int `json:"cols"`
		Capacity  int `json:"capacity"`
	}{l.Carriages, l.Rows, l.Cols, l.Capacity()})
}

// UnmarshalJSON reads the three dimensions and ignores any capacity field,
// so a stale capacity can never come back in through a payload.
func (l *ClassLayout) UnmarshalJSON(b []byte) error {
	var raw struct {
		Carriages int `json:"carriages"`
		Rows      int `json:"rows"`
		Cols      int `json:"cols"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*l = ClassLayout{Carriages: raw.Carriages, Rows: raw.Rows, Cols: raw.Cols}
	return nil
}

// ClampInt bounds v into [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampTicketCount bounds a requested ticket count into [1, capacity].
// When capacity is below 1 the count is only raised to 1, so a later
// capacity check still reports the degenerate class.
func ClampTicketCount(n, capacity int) int {
	if n < MinTickets {
		n = MinTickets
	}
	if capacity >= MinTickets && n > capacity {
		n = capacity
	}
	return n
}

// TicketCountFrom converts a loosely typed ticket count (as decoded from
// JSON, a form field or a query string) into an int.  Anything non-numeric,
// NaN or infinite falls back to MinTickets.  Fractions are floored.
func TicketCountFrom(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint:
		return int(t)
	case uint32:
		return int(t)
	case uint64:
		return int(t)
	case float32:
		return floatCount(float64(t))
	case float64:
		return floatCount(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return floatCount(f)
		}
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatCount(f)
		}
	}
	return MinTickets
}

func floatCount(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return MinTickets
	}
	f = math.Floor(f)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}
