package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/train-ticket-reservation/internal/booking"
	"github.com/iliyamo/train-ticket-reservation/internal/seating"
	"github.com/iliyamo/train-ticket-reservation/pkg/logger"
)

func sampleEvent() BookingRequestedEvent {
	return BookingRequestedEvent{
		Reference: "b7e2c6a0-0000-4000-8000-000000000001",
		UserID:    5,
		TrainName: "Podi Menike",
		Request: booking.Request{
			PassengerName: "Sunil",
			ScheduleID:    "3",
			FromStation:   "Kandy",
			ToStation:     "Ella",
			Date:          "2025-08-01",
			TravelClass:   seating.Second,
			TicketCount:   2,
			Seats:         []string{"SC2-A1", "SC2-A2"},
		},
		RequestedAt: time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestFormatLine(t *testing.T) {
	line := formatLine(sampleEvent())
	for _, part := range []string{
		"[2025-07-01T09:30:00Z] Booking requested",
		"ref=b7e2c6a0-0000-4000-8000-000000000001",
		"user_id=5",
		"schedule_id=3",
		`route="Kandy -> Ella"`,
		"class=Second",
		"tickets=2",
		"seats=[SC2-A1,SC2-A2]",
	} {
		if !strings.Contains(line, part) {
			t.Errorf("line %q missing %q", line, part)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatal("line must end with newline")
	}
}

func TestBookingLogAppend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	bl, err := NewBookingLog(dir)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := json.Marshal(sampleEvent())
	for i := 0; i < 2; i++ {
		if err := bl.Append(body); err != nil {
			t.Fatal(err)
		}
	}
	if err := bl.Append([]byte("not json")); err == nil {
		t.Fatal("bad body accepted")
	}
	data, err := os.ReadFile(filepath.Join(dir, "booking.log"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "Booking requested"); n != 2 {
		t.Fatalf("lines = %d", n)
	}
}

func TestConsumerStopsOnCancelWhileRedialing(t *testing.T) {
	bl, err := NewBookingLog(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewConsumer(ConsumerConfig{URL: "amqp://nowhere", Queue: "q"}, bl, logger.Nop())
	c.dial = func(string) (*amqp.Connection, error) { return nil, errors.New("refused") }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}
