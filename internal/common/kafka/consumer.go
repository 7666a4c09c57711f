package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Default retry policy for a failing handler.
const (
	defaultHandlerAttempts = 3
	defaultHandlerBackoff  = 200 * time.Millisecond
)

// MessageHandler processes one message. A failing handler is retried in
// place; once the attempts are spent the message is logged as dropped and
// its offset committed, since a group reader never redelivers a skipped
// offset.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// ConsumerOption tunes a Consumer.
type ConsumerOption func(*consumerOptions)

type consumerOptions struct {
	startOffset int64
	attempts    int
	backoff     time.Duration
}

// WithStartOffset sets where a group without committed offsets begins
// reading (kafkago.FirstOffset or kafkago.LastOffset).
func WithStartOffset(offset int64) ConsumerOption {
	return func(o *consumerOptions) { o.startOffset = offset }
}

// WithRetry sets how often a failing handler runs for one message and the
// initial pause between runs. The pause doubles after each failure.
func WithRetry(attempts int, backoff time.Duration) ConsumerOption {
	return func(o *consumerOptions) {
		if attempts > 0 {
			o.attempts = attempts
		}
		if backoff >= 0 {
			o.backoff = backoff
		}
	}
}

// Consumer reads a topic as part of a consumer group.
type Consumer struct {
	reader   *kafkago.Reader
	logger   *zap.Logger
	attempts int
	backoff  time.Duration
}

// NewConsumer creates a Consumer.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger, opts ...ConsumerOption) *Consumer {
	o := consumerOptions{
		startOffset: kafkago.FirstOffset,
		attempts:    defaultHandlerAttempts,
		backoff:     defaultHandlerBackoff,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Consumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			Topic:       topic,
			MinBytes:    1,
			MaxBytes:    10e6,
			StartOffset: o.startOffset,
		}),
		logger:   logger,
		attempts: o.attempts,
		backoff:  o.backoff,
	}
}

// Consume blocks, dispatching messages to handler until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		if err := c.handle(ctx, handler, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("dropping message after failed retries",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Int("attempts", c.attempts),
				zap.Error(err),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Warn("failed to commit offset", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// handle runs handler for msg up to c.attempts times. It returns the last
// handler error, or ctx's error if ctx ends while waiting to retry.
func (c *Consumer) handle(ctx context.Context, handler MessageHandler, msg kafkago.Message) error {
	backoff := c.backoff
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == c.attempts {
			break
		}

		c.logger.Warn("message handler failed, retrying",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return err
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
