// Package events publishes session lifecycle updates to RabbitMQ so that
// downstream workers can react to new sessions and uploaded connections.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DefaultExchange is the topic exchange session updates are published to.
const DefaultExchange = "session_updates"

// Event types.
const (
	SessionCreated     = "session.created"
	ConnectionsFetched = "connections.fetched"
	ConnectionsUpdated = "connections.updated"
)

// Event is one session update.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RoutingKey returns the key the event is published under.
func (e Event) RoutingKey() string {
	return "session." + e.SessionID
}

// Publisher sends events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events on a fresh channel per message.
type AMQPPublisher struct {
	exchange    string
	openChannel func() (Channel, error)
	closeConn   func() error
	logger      *zap.Logger
}

// Dial connects to RabbitMQ and declares the exchange as a durable topic.
func Dial(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	open := func() (Channel, error) { return conn.Channel() }
	p := NewPublisher(open, exchange, logger)
	p.closeConn = conn.Close
	return p, nil
}

// NewPublisher builds a publisher over an arbitrary channel source.
func NewPublisher(open func() (Channel, error), exchange string, logger *zap.Logger) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &AMQPPublisher{
		exchange:    exchange,
		openChannel: open,
		logger:      logger.Named("events"),
	}
}

// Publish sends e as JSON, routed by session.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ch, err := p.openChannel()
	if err != nil {
		return fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	err = ch.Publish(p.exchange, e.RoutingKey(), false, false, amqp.Publishing{
		ContentType: "application/json",
		Type:        e.Type,
		Timestamp:   e.Timestamp,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}

	p.logger.Debug("event published",
		zap.String("type", e.Type),
		zap.String("routing_key", e.RoutingKey()),
	)
	return nil
}

// Close releases the underlying connection, if any.
func (p *AMQPPublisher) Close() error {
	if p.closeConn == nil {
		return nil
	}
	return p.closeConn()
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything recorded.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
