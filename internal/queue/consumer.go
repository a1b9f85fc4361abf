package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer reads booking confirmations and appends them to the booking
// log.  Undecodable messages are rejected without requeue.
type Consumer struct {
	url  string
	sink *logrus.Logger
	log  logrus.FieldLogger
}

// NewConsumer returns a consumer for url that writes entries to sink
// (one JSON object per line) and reports its own trouble to log.
func NewConsumer(url string, sink *logrus.Logger, log logrus.FieldLogger) *Consumer {
	return &Consumer{url: url, sink: sink, log: log}
}

// OpenBookingLog opens logs/booking.log under dir for appending and
// returns a JSON logger over it.
func OpenBookingLog(dir string) (*logrus.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "logs", "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open booking log: %w", err)
	}
	sink := logrus.New()
	sink.Out = f
	sink.Formatter = &logrus.JSONFormatter{TimestampFormat: time.RFC3339}
	return sink, f, nil
}

// Run consumes until ctx is cancelled, redialling with exponential
// backoff capped at 30s whenever the connection drops.
func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.WithError(err).WithField("retry_in", backoff.String()).Warn("booking consumer: dial failed")
			if !sleep(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if err != nil && ctx.Err() == nil {
			c.log.WithError(err).Warn("booking consumer: reconnecting")
			if !sleep(ctx, 2*time.Second) {
				return
			}
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("booking consumer: set qos failed")
	}
	if _, err := ch.QueueDeclare(BookingQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, BookingQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			c.log.WithError(err).Warn("booking consumer: message rejected")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	if ctx.Err() != nil {
		return nil
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one message body and writes it to the booking log.
func (c *Consumer) Handle(body []byte) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Ref == "" {
		return errors.New("event without ref")
	}
	tickets := 0
	for _, it := range ev.Items {
		tickets += len(it.Seats) + it.Quantity
	}
	c.sink.WithFields(logrus.Fields{
		"ref":             ev.Ref,
		"browser_session": ev.BrowserSession,
		"sessions":        len(ev.Items),
		"tickets":         tickets,
		"total_cents":     ev.TotalCents,
		"confirmed_at":    ev.ConfirmedAt,
		"items":           ev.Items,
	}).Info("booking confirmed")
	return nil
}

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
