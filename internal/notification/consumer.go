package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler processes one notification.
type Handler func(ctx context.Context, ev PostPublished) error

// MessageReader is the subset of *kafka.Reader used by Consumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaReader returns a consumer-group reader for the notification topic.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  1 * time.Second,
	})
}

// Consumer reads notifications and hands them to a Handler. A message is
// committed after it was handled, whether or not the handler succeeded.
type Consumer struct {
	reader         MessageReader
	handler        Handler
	logger         *slog.Logger
	HandlerTimeout time.Duration
}

// NewConsumer returns a Consumer reading from r.
func NewConsumer(r MessageReader, h Handler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{reader: r, handler: h, logger: logger, HandlerTimeout: 2 * time.Minute}
}

// Run consumes until ctx is cancelled. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.ErrorContext(ctx, "notification: kafka read error", "error", err)
			continue
		}
		c.handle(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.ErrorContext(ctx, "notification: commit failed", "offset", msg.Offset, "error", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	ev, err := Decode(msg.Value)
	if err != nil {
		c.logger.WarnContext(ctx, "notification: dropping malformed message", "offset", msg.Offset, "error", err)
		return
	}
	hctx, cancel := context.WithTimeout(ctx, c.HandlerTimeout)
	defer cancel()
	if err := c.handler(hctx, ev); err != nil {
		c.logger.ErrorContext(ctx, "notification: handler failed", "post_id", ev.PostID, "error", err)
	}
}
