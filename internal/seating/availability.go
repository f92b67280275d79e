package seating

import (
	"encoding/json"
	"sort"
	"strings"
)

// UnavailableSeats maps a class to the seat ids that cannot be sold.  It is
// a snapshot read when a schedule is loaded; nothing in this package writes
// to it after construction.
type UnavailableSeats map[ClassName][]string

// ParseUnavailableSeats decodes the JSON blob stored with a schedule.  Any
// malformed input (not an object, a class mapped to something other than a
// list of strings, unknown class names) is dropped rather than reported, so
// a bad blob makes seats available instead of failing the request.
func ParseUnavailableSeats(b []byte) UnavailableSeats {
	var u UnavailableSeats
	_ = u.UnmarshalJSON(b)
	return u
}

// UnmarshalJSON implements the fail-open decoding described on
// ParseUnavailableSeats.  It never returns an error.
func (u *UnavailableSeats) UnmarshalJSON(b []byte) error {
	out := UnavailableSeats{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err == nil {
		for key, val := range raw {
			cls, err := ParseClassName(key)
			if err != nil {
				continue
			}
			var ids []string
			if err := json.Unmarshal(val, &ids); err != nil {
				continue
			}
			clean := make([]string, 0, len(ids))
			for _, id := range ids {
				if id = strings.TrimSpace(id); id != "" {
					clean = append(clean, id)
				}
			}
			out[cls] = append(out[cls], clean...)
		}
	}
	*u = out
	return nil
}

// MarshalJSON always encodes an object, never null.
func (u UnavailableSeats) MarshalJSON() ([]byte, error) {
	m := make(map[ClassName][]string, len(u))
	for cls, ids := range u {
		if ids == nil {
			ids = []string{}
		}
		m[cls] = ids
	}
	return json.Marshal(m)
}

// Set returns a fresh membership set for one class.  Mutating the result
// does not touch u.
func (u UnavailableSeats) Set(class ClassName) map[string]struct{} {
	ids := u[class]
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is blocked for class.
func (u UnavailableSeats) Contains(class ClassName, id string) bool {
	for _, v := range u[class] {
		if v == id {
			return true
		}
	}
	return false
}

// Availability is a carriage's seats split by sellability.
type Availability struct {
	Class       ClassName `json:"class"`
	Carriage    int       `json:"carriage"`
	Available   []Seat    `json:"available"`
	Unavailable []Seat    `json:"unavailable"`
}

// Total is the number of seats shown for the carriage.
func (a Availability) Total() int { return len(a.Available) + len(a.Unavailable) }

// UnavailableIDs lists the blocked ids in seat order.
func (a Availability) UnavailableIDs() []string {
	out := make([]string, 0, len(a.Unavailable))
	for _, s := range a.Unavailable {
		out = append(out, s.ID)
	}
	return out
}

// IsAvailable reports whether id is a sellable seat of this carriage.
func (a Availability) IsAvailable(id string) bool {
	for _, s := range a.Available {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Partition splits seats into available and unavailable for one class and
// carriage.  Seats whose id does not carry the carriage prefix belong to
// another carriage: they are left out of both lists.  Matching against the
// blocked ids is by exact string.
func Partition(seats []Seat, unavailable UnavailableSeats, class ClassName, carriage int) Availability {
	prefix := class.SeatPrefix(carriage)
	blocked := unavailable.Set(class)
	out := Availability{
		Class:       class,
		Carriage:    carriage,
		Available:   []Seat{},
		Unavailable: []Seat{},
	}
	for _, s := range seats {
		if !strings.HasPrefix(s.ID, prefix) {
			continue
		}
		if _, ok := blocked[s.ID]; ok {
			out.Unavailable = append(out.Unavailable, s)
			continue
		}
		out.Available = append(out.Available, s)
	}
	return out
}

// CarriageAvailability enumerates carriage n of a class layout and
// partitions it against the schedule's blocked seats.
func CarriageAvailability(class ClassName, layout ClassLayout, carriage int, unavailable UnavailableSeats) Availability {
	seats := CarriageGeometry(class, layout, carriage).Seats()
	return Partition(seats, unavailable, class, carriage)
}

// BlockedInCarriage lists the blocked ids of class that carry the carriage
// prefix, sorted.  Ids from other carriages are ignored.
func (u UnavailableSeats) BlockedInCarriage(class ClassName, carriage int) []string {
	prefix := class.SeatPrefix(carriage)
	out := []string{}
	for _, id := range u[class] {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
