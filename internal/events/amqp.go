package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"spendwise/internal/logger"
)

const publishTimeout = 5 * time.Second

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("event publisher closed")

// AMQPPublisher publishes events to a durable topic exchange. A lost
// connection is noticed through NotifyClose and redialed on the next Publish.
type AMQPPublisher struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	closed  bool
}

// NewAMQPPublisher dials url and declares exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, exchange: exchange}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect dials the broker, opens a channel and declares the exchange.
// Callers hold p.mu or own p exclusively.
func (p *AMQPPublisher) connect() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	p.conn, p.channel = conn, channel
	// A closed connection also closes its channels, so watching the channel covers both.
	go p.watch(channel, channel.NotifyClose(make(chan *amqp091.Error, 1)))
	return nil
}

// watch drops ch once the broker closes it, so the next Publish redials.
func (p *AMQPPublisher) watch(ch *amqp091.Channel, closed <-chan *amqp091.Error) {
	amqpErr, ok := <-closed

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != ch {
		return
	}
	if p.conn != nil && !p.conn.IsClosed() {
		p.conn.Close()
	}
	p.conn, p.channel = nil, nil

	if ok && amqpErr != nil && !p.closed {
		logger.Named("events").Warnw("AMQP channel closed, reconnecting on next publish",
			"exchange", p.exchange,
			"code", amqpErr.Code,
			"reason", amqpErr.Reason,
		)
	}
}

// currentChannel returns the live channel, redialing if the last one was lost.
func (p *AMQPPublisher) currentChannel() (*amqp091.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPublisherClosed
	}
	if p.channel == nil {
		if err := p.connect(); err != nil {
			return nil, fmt.Errorf("reconnect: %w", err)
		}
		logger.Named("events").Infow("AMQP publisher reconnected", "exchange", p.exchange)
	}
	return p.channel, nil
}

// Publish sends e as a persistent JSON message routed by e.RoutingKey().
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	channel, err := p.currentChannel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = channel.PublishWithContext(
		ctx,
		p.exchange,     // exchange
		e.RoutingKey(), // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    e.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	logger.Get().Debugw("published event",
		"exchange", p.exchange,
		"routing_key", e.RoutingKey(),
		"resource_id", e.ResourceID,
	)
	return nil
}

// Close releases the channel and the connection. Later Publish calls fail
// with ErrPublisherClosed.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	channel, conn := p.channel, p.conn
	p.channel, p.conn = nil, nil

	if channel != nil {
		channel.Close()
	}
	if conn != nil {
		return conn.Close()
	}
	return nil
}
