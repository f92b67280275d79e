// Package service hands validated bookings to the booking collaborator
// over RabbitMQ.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/train-ticket-reservation/internal/queue"
)

// BookingPublisher publishes BookingRequestedEvent messages to a durable
// queue through the default exchange.  The connection is opened lazily and
// reopened after it drops; it is safe for concurrent use.
type BookingPublisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewBookingPublisher(url, queue string) *BookingPublisher {
	return &BookingPublisher{url: url, queue: queue}
}

// PublishBookingRequested sends ev as a persistent JSON message.  Errors
// are returned so the caller can answer 502.
func (p *BookingPublisher) PublishBookingRequested(ctx context.Context, ev q.BookingRequestedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     ev.Reference,
		CorrelationId: ev.Reference,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	})
}

func (p *BookingPublisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq dial: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		_ = p.conn.Close()
		p.conn = nil
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	return ch, nil
}

// Close releases the connection, if any.
func (p *BookingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
