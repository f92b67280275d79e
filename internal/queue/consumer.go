package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/train-ticket-reservation/pkg/logger"
)

// ConsumerConfig names the broker and the queue to read.
type ConsumerConfig struct {
	URL   string
	Queue string
}

// BookingLog appends one line per booking request to {dir}/booking.log.
type BookingLog struct {
	mu   sync.Mutex
	path string
}

func NewBookingLog(dir string) (*BookingLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &BookingLog{path: filepath.Join(dir, "booking.log")}, nil
}

// Append decodes body and writes its log line.
func (b *BookingLog) Append(body []byte) error {
	var ev BookingRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	f, err := os.OpenFile(b.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev BookingRequestedEvent) string {
	r := ev.Request
	return fmt.Sprintf("[%s] Booking requested | ref=%s | user_id=%d | schedule_id=%s | train=%q | date=%s | route=%q | class=%s | tickets=%d | seats=[%s] | passenger=%q\n",
		ev.RequestedAt.UTC().Format(time.RFC3339), ev.Reference, ev.UserID, r.ScheduleID, ev.TrainName, r.Date,
		r.FromStation+" -> "+r.ToStation, r.TravelClass, r.TicketCount, strings.Join(r.Seats, ","), r.PassengerName)
}

// Consumer reads the booking queue into a BookingLog.
type Consumer struct {
	cfg  ConsumerConfig
	out  *BookingLog
	log  *logger.Logger
	dial func(url string) (*amqp.Connection, error)
}

func NewConsumer(cfg ConsumerConfig, out *BookingLog, log *logger.Logger) *Consumer {
	return &Consumer{cfg: cfg, out: out, log: log.WithComponent("booking-consumer"), dial: amqp.Dial}
}

// Run connects, consumes and reconnects with exponential backoff (1s up
// to 30s) until ctx is cancelled.  It returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := c.dial(c.cfg.URL)
		if err != nil {
			c.log.WithError(err).Warnf("dial failed, retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Infof("consuming %s", c.cfg.Queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.out.Append(d.Body); err != nil {
				c.log.WithError(err).Error("handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// sleep waits d or until ctx is done; false means cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
