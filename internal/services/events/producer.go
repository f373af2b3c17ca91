// Package events publishes risk decisions to RabbitMQ so downstream
// consumers (case management, notifications) can react to warn and hold
// verdicts and to operator overrides. Publishing is best-effort.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Exchange is the durable topic exchange every event goes to.
const Exchange = "risk_events"

// Publisher is implemented by the RabbitMQ producer and its fallback.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body interface{}) error
	Close()
}

// Fallback is a no-op publisher used when RabbitMQ is not configured or
// unreachable at startup.
type Fallback struct {
	Logger *slog.Logger
}

func (f *Fallback) Publish(_ context.Context, routingKey string, _ interface{}) error {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("event publish skipped", "component", "events", "mode", "fallback", "routing_key", routingKey)
	return nil
}

func (f *Fallback) Close() {}

// Producer holds one connection and channel.
type Producer struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	logger   *slog.Logger
}

func sanitizeURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewProducer dials RabbitMQ with a bounded timeout and declares the
// exchange.
func NewProducer(amqpURL string, logger *slog.Logger) (*Producer, error) {
	cleanURL, err := sanitizeURL(amqpURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	p := &Producer{conn: conn, exchange: Exchange, logger: logger}
	if err := p.reopen(); err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

// Connect returns a Producer, or a Fallback when amqpURL is empty or the
// broker cannot be reached.
func Connect(amqpURL string, logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(amqpURL) == "" {
		logger.Info("AMQP_URL not set, events disabled")
		return &Fallback{Logger: logger}
	}
	p, err := NewProducer(amqpURL, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable, events disabled", "error", err)
		return &Fallback{Logger: logger}
	}
	return p
}

// reopen must be called with mu held or before the producer is shared.
func (p *Producer) reopen() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	if p.channel != nil {
		p.channel.Close()
	}
	p.channel = ch
	return nil
}

func (p *Producer) Publish(ctx context.Context, routingKey string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err == nil {
		return nil
	}

	p.logger.Warn("publish failed, reopening channel", "routing_key", routingKey, "error", err)
	if reErr := p.reopen(); reErr != nil {
		return errors.Join(err, reErr)
	}
	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
}

func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
