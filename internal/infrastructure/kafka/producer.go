package kafka

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/kafka/producer"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventID   = "event_id"
	HeaderEventType = "event_type"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type EventProducer struct {
	writer messageWriter
	closer func() error
	topic  string
}

func NewEventProducer(p *producer.Producer, topic string) *EventProducer {
	return &EventProducer{
		writer: p.Writer,
		closer: p.Close,
		topic:  topic,
	}
}

// SendEvents publishes the batch keyed by candidate id, so events of one
// candidate keep their order within a partition.
func (ep *EventProducer) SendEvents(ctx context.Context, events []*entity.OutboxEvent) error {
	msgs := buildMessages(ep.topic, events)
	if len(msgs) == 0 {
		return nil
	}

	err := ep.writer.WriteMessages(ctx, msgs...)
	if err != nil {
		return fmt.Errorf("EventProducer - SendEvents - ep.writer.WriteMessages: %w", err)
	}

	return nil
}

func (ep *EventProducer) Close() error {
	err := ep.closer()
	if err != nil {
		return fmt.Errorf("EventProducer - Close: %w", err)
	}

	return nil
}

func buildMessages(topic string, events []*entity.OutboxEvent) []kafka.Message {
	msgs := make([]kafka.Message, 0, len(events))

	for _, event := range events {
		msgs = append(msgs, kafka.Message{
			Topic: topic,
			Key:   []byte(event.AggregateID.String()),
			Value: event.Payload,
			Headers: []kafka.Header{
				{Key: HeaderEventID, Value: []byte(event.ID.String())},
				{Key: HeaderEventType, Value: []byte(event.EventType)},
			},
		})
	}

	return msgs
}

// EventType reads the event type header of a consumed message.
func EventType(msg kafka.Message) entity.EventType {
	for _, h := range msg.Headers {
		if h.Key == HeaderEventType {
			return entity.EventType(h.Value)
		}
	}

	return ""
}
