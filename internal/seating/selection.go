package seating

// Scope is the class and carriage a selection belongs to.  Seat numbering
// is per class and carriage, so a selection never survives a scope change.
type Scope struct {
	Class    ClassName `json:"class"`
	Carriage int       `json:"carriage"`
}

// Selection is the ordered set of seats a passenger has picked in one
// booking session, bounded by the ticket count.  It is not safe for
// concurrent use; a session owns its selection exclusively.
//
// After every operation len(Seats()) <= Max() holds and no blocked seat is
// a member.
type Selection struct {
	scope   Scope
	max     int
	blocked map[string]struct{}
	allowed map[string]struct{} // nil means any id not blocked
	seats   []string
}

// newSelection starts an empty selection for scope.  blocked is copied.
// Ids are not checked against any grid; ForCarriage adds that restriction.
func newSelection(scope Scope, max int, blocked []string) *Selection {
	s := &Selection{scope: scope, blocked: make(map[string]struct{}, len(blocked))}
	for _, id := range blocked {
		s.blocked[id] = struct{}{}
	}
	s.max = clampMax(max)
	return s
}

// ForCarriage starts an empty selection limited to the available seats of
// one carriage.  Ids outside the carriage grid are treated like blocked ids.
func ForCarriage(a Availability, max int) *Selection {
	s := newSelection(Scope{Class: a.Class, Carriage: a.Carriage}, max, a.UnavailableIDs())
	s.allowed = make(map[string]struct{}, len(a.Available))
	for _, seat := range a.Available {
		s.allowed[seat.ID] = struct{}{}
	}
	return s
}

// Replay rebuilds a client-held list with the same rules as a sequence of
// Toggle calls: blocked or foreign ids, duplicates and anything past the
// bound are dropped.  Ids already selected are skipped.
func (s *Selection) Replay(seats []string) {
	for _, id := range seats {
		if !s.Contains(id) {
			s.Toggle(id)
		}
	}
}

func clampMax(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Toggle adds or removes id and reports whether the selection changed.
// Blocked ids and additions beyond the bound are ignored silently.
func (s *Selection) Toggle(id string) bool {
	if _, ok := s.blocked[id]; ok {
		return false
	}
	if s.allowed != nil {
		if _, ok := s.allowed[id]; !ok {
			return false
		}
	}
	for i, cur := range s.seats {
		if cur == id {
			s.seats = append(s.seats[:i], s.seats[i+1:]...)
			return true
		}
	}
	if len(s.seats) >= s.max {
		return false
	}
	s.seats = append(s.seats, id)
	return true
}

// Reset clears every selected seat.
func (s *Selection) Reset() { s.seats = nil }

// SetMax changes the bound.  Lowering it below the current size keeps the
// first max seats in selection order.
func (s *Selection) SetMax(max int) {
	s.max = clampMax(max)
	if len(s.seats) > s.max {
		s.seats = s.seats[:s.max]
	}
}

// SetScope moves the selection to another class or carriage, clearing it
// when the scope actually changes.  The carriage's seats replace any
// previous restriction.
func (s *Selection) SetScope(a Availability) {
	scope := Scope{Class: a.Class, Carriage: a.Carriage}
	if scope == s.scope {
		return
	}
	next := ForCarriage(a, s.max)
	*s = *next
}

// Contains reports membership.
func (s *Selection) Contains(id string) bool {
	for _, cur := range s.seats {
		if cur == id {
			return true
		}
	}
	return false
}

// Seats returns a copy of the selected ids in selection order.
func (s *Selection) Seats() []string {
	out := make([]string, len(s.seats))
	copy(out, s.seats)
	return out
}

func (s *Selection) Len() int     { return len(s.seats) }
func (s *Selection) Max() int     { return s.max }
func (s *Selection) Scope() Scope { return s.scope }

// Full reports whether no further seat can be added.
func (s *Selection) Full() bool { return len(s.seats) >= s.max }
