// Package booking validates a passenger's seat choice against a schedule
// and assembles the request handed to the booking collaborator.
//
// Validation is linear: a schedule must be chosen, then the number of
// selected seats must equal the ticket count, then the ticket count must
// fit the class capacity.  Passenger fields and seat ids are checked last.
// Every rejection is an error value carrying a user-facing message.
package booking

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/seating"
)

// State is where validation stopped.
type State int

const (
	StateNoSchedule State = iota
	StateCountMismatch
	StateCapacityViolation
	StateInvalid
	StateReady
)

func (s State) String() string {
	switch s {
	case StateNoSchedule:
		return "no_schedule"
	case StateCountMismatch:
		return "count_mismatch"
	case StateCapacityViolation:
		return "capacity_violation"
	case StateInvalid:
		return "invalid"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state name in JSON responses.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Passenger holds the traveller's details.
type Passenger struct {
	Name    string `json:"passengerName" validate:"required,max=120"`
	Age     int    `json:"age" validate:"gte=0,lte=130"`
	Gender  string `json:"gender" validate:"required,oneof=Male Female Other"`
	Contact string `json:"contact" validate:"required,max=120"`
}

// Request is the payload for the booking collaborator.  len(Seats) always
// equals TicketCount.
type Request struct {
	PassengerName string            `json:"passengerName"`
	Age           int               `json:"age"`
	Gender        string            `json:"gender"`
	Contact       string            `json:"contact"`
	ScheduleID    string            `json:"scheduleId"`
	FromStation   string            `json:"fromStation"`
	ToStation     string            `json:"toStation"`
	Date          string            `json:"date"`
	TravelClass   seating.ClassName `json:"travelClass"`
	TicketCount   int               `json:"ticketCount"`
	Seats         []string          `json:"seats"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func passengerValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Builder collects booking input.  The zero value is usable; a missing
// class means First.
type Builder struct {
	schedule  *model.Schedule
	passenger Passenger
	class     seating.ClassName
	tickets   int
	seats     []string
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) WithSchedule(s *model.Schedule) *Builder {
	b.schedule = s
	return b
}

func (b *Builder) WithPassenger(p Passenger) *Builder {
	b.passenger = p
	return b
}

func (b *Builder) WithClass(c seating.ClassName) *Builder {
	b.class = c
	return b
}

// WithTickets records the requested count.  It is clamped against the
// class capacity when the request is built.
func (b *Builder) WithTickets(n int) *Builder {
	b.tickets = n
	return b
}

func (b *Builder) WithSeats(ids []string) *Builder {
	b.seats = append([]string(nil), ids...)
	return b
}

// Class is the travel class in effect.
func (b *Builder) Class() seating.ClassName {
	if b.class == "" {
		return seating.First
	}
	return b.class
}

// Capacity of the chosen class, freshly computed.  0 without a schedule.
func (b *Builder) Capacity() int {
	if b.schedule == nil {
		return 0
	}
	return b.schedule.Capacity(b.Class())
}

// TicketCount is the requested count clamped into [1, capacity].
func (b *Builder) TicketCount() int {
	return seating.ClampTicketCount(b.tickets, b.Capacity())
}

// State runs the validation and reports where it stopped.
func (b *Builder) State() State {
	_, err := b.Build()
	return StateOf(err)
}

// Build validates the collected input and returns the payload.
func (b *Builder) Build() (Request, error) {
	if b.schedule == nil {
		return Request{}, ErrNoSchedule
	}
	class := b.Class()
	if !class.Valid() {
		return Request{}, ValidationError{Field: "travelClass", Msg: fmt.Sprintf("unknown travel class %q", string(class))}
	}
	tickets := b.TicketCount()
	if len(b.seats) != tickets {
		return Request{}, CountMismatchError{Required: tickets, Selected: len(b.seats)}
	}
	capacity := b.Capacity()
	if tickets < seating.MinTickets || tickets > capacity {
		return Request{}, CapacityError{Class: class, Capacity: capacity, Requested: tickets}
	}
	if err := b.checkPassenger(); err != nil {
		return Request{}, err
	}
	seats, err := b.checkSeats(class)
	if err != nil {
		return Request{}, err
	}
	p := b.passenger
	return Request{
		PassengerName: strings.TrimSpace(p.Name),
		Age:           p.Age,
		Gender:        p.Gender,
		Contact:       strings.TrimSpace(p.Contact),
		ScheduleID:    b.schedule.ID,
		FromStation:   b.schedule.StartStation,
		ToStation:     b.schedule.StopStation,
		Date:          b.schedule.Date,
		TravelClass:   class,
		TicketCount:   tickets,
		Seats:         seats,
	}, nil
}

func (b *Builder) checkPassenger() error {
	p := b.passenger
	p.Name = strings.TrimSpace(p.Name)
	p.Contact = strings.TrimSpace(p.Contact)
	err := passengerValidator().Struct(p)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return ValidationError{Field: fe.Field(), Msg: fieldMessage(fe), Err: err}
	}
	return ValidationError{Field: "passenger", Msg: err.Error(), Err: err}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte", "lte":
		return "is out of range"
	}
	return "is invalid"
}

// checkSeats parses every id, rejects duplicates, ids of another class,
// positions outside the layout and seats that are no longer available.
// Bare ids are accepted for single-carriage classes and come back
// prefixed.
func (b *Builder) checkSeats(class seating.ClassName) ([]string, error) {
	layout, _ := b.schedule.Layout(class)
	seen := make(map[string]struct{}, len(b.seats))
	out := make([]string, 0, len(b.seats))
	for _, raw := range b.seats {
		id, err := seating.ParseSeatID(raw)
		if err != nil {
			return nil, ValidationError{Field: "seats", Msg: fmt.Sprintf("invalid seat %q", raw), Err: err}
		}
		if !id.HasPrefix() {
			// A bare id only names a seat when the class has one carriage.
			if layout.Carriages != 1 {
				return nil, ValidationError{Field: "seats", Msg: fmt.Sprintf("seat %s needs a carriage prefix such as %s", id, class.SeatPrefix(1)+id.String())}
			}
			id.Class, id.Carriage = class, 1
		}
		if id.Class != class {
			return nil, ValidationError{Field: "seats", Msg: fmt.Sprintf("seat %s is not in %s class", id, class)}
		}
		if !layout.HasCarriage(id.Carriage) {
			return nil, ValidationError{Field: "seats", Msg: fmt.Sprintf("seat %s is outside the train", id)}
		}
		if id.Row >= layout.Rows || id.Col > layout.Cols {
			return nil, ValidationError{Field: "seats", Msg: fmt.Sprintf("seat %s is outside the carriage", id)}
		}
		key := id.String()
		if _, dup := seen[key]; dup {
			return nil, ValidationError{Field: "seats", Msg: fmt.Sprintf("seat %s selected twice", key)}
		}
		seen[key] = struct{}{}
		if b.schedule.UnavailableSeats.Contains(class, key) {
			return nil, ValidationError{Field: "seats", Msg: fmt.Sprintf("seat %s is not available", key)}
		}
		out = append(out, key)
	}
	return out, nil
}
