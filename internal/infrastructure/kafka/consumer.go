package kafka

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Candidate-Verifier/pkg/kafka/consumer"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// EventConsumer reads candidate events from the consumer group. Offsets are
// committed explicitly, only after the event was handled.
type EventConsumer struct {
	reader messageReader
	closer func() error
}

func NewEventConsumer(c *consumer.Consumer) *EventConsumer {
	return &EventConsumer{
		reader: c.Reader,
		closer: c.Close,
	}
}

func (ec *EventConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	msg, err := ec.reader.FetchMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("EventConsumer - ReadEvent - ec.reader.FetchMessage: %w", err)
	}

	return msg, nil
}

func (ec *EventConsumer) CommitEvent(ctx context.Context, event kafka.Message) error {
	err := ec.reader.CommitMessages(ctx, event)
	if err != nil {
		return fmt.Errorf("EventConsumer - CommitEvent - ec.reader.CommitMessages: %w", err)
	}

	return nil
}

func (ec *EventConsumer) Close() error {
	err := ec.closer()
	if err != nil {
		return fmt.Errorf("EventConsumer - Close: %w", err)
	}

	return nil
}
