// Package queue defines the booking messages exchanged over RabbitMQ and
// the consumer that records them in the booking log.
package queue

import (
	"time"

	"github.com/iliyamo/train-ticket-reservation/internal/booking"
)

// BookingRequestedEvent is published once a booking request passed
// validation.  The booking collaborator owns everything after this point,
// including marking the seats unavailable.
type BookingRequestedEvent struct {
	Reference   string          `json:"reference"`
	UserID      uint64          `json:"user_id"`
	TrainName   string          `json:"train_name"`
	Departure   string          `json:"departure_time,omitempty"`
	Request     booking.Request `json:"request"`
	RequestedAt time.Time       `json:"requested_at"`
}
