package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/dto"
	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	kafkapc "github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type chanReader struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func newChanReader(msgs ...kafka.Message) *chanReader {
	r := &chanReader{msgs: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *chanReader) ReadEvent(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *chanReader) CommitEvent(_ context.Context, m kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, m.Offset)
	return nil
}

func (r *chanReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *chanReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type stubPreview struct {
	mu     sync.Mutex
	events []dto.CandidateSubmittedEvent
	err    error

	// failFirst calls fail before err takes over
	failFirst int
}

func (s *stubPreview) BuildThumbnails(_ context.Context, event dto.CandidateSubmittedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) <= s.failFirst {
		return errors.New("s3 timeout")
	}
	return s.err
}

func (s *stubPreview) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type stubNotification struct {
	mu     sync.Mutex
	events []dto.CandidateImportedEvent
}

func (s *stubNotification) SendLink(_ context.Context, event dto.CandidateImportedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func message(t *testing.T, offset int64, eventType entity.EventType, payload any) kafka.Message {
	t.Helper()

	b, err := json.Marshal(payload)
	require.NoError(t, err)

	return kafka.Message{
		Offset: offset,
		Value:  b,
		Headers: []kafka.Header{
			{Key: kafkapc.HeaderEventType, Value: []byte(eventType)},
		},
	}
}

func newController(t *testing.T, prv *stubPreview, ntf *stubNotification, r *chanReader) *KafkaController {
	t.Helper()

	c := New(prv, ntf, r, logger.NewWithZap(zaptest.NewLogger(t)), time.Second, time.Second, 3, time.Millisecond, 2)
	c.ctx = context.Background()

	return c
}

func TestKafkaController_HandleMessage(t *testing.T) {
	t.Parallel()

	prv, ntf := &stubPreview{}, &stubNotification{}
	c := newController(t, prv, ntf, newChanReader())

	candidateID := uuid.New()

	err := c.handleMessage(context.Background(), message(t, 1, entity.EventCandidateImported, dto.CandidateImportedEvent{
		CandidateID: candidateID,
		PhoneNumber: "9876543210",
	}))
	require.NoError(t, err)
	require.Len(t, ntf.events, 1)
	assert.Equal(t, candidateID, ntf.events[0].CandidateID)

	err = c.handleMessage(context.Background(), message(t, 2, entity.EventCandidateSubmitted, dto.CandidateSubmittedEvent{
		CandidateID: candidateID,
		Photos:      []dto.SubmittedPhoto{{Slot: 1, ObjectKey: "k"}},
	}))
	require.NoError(t, err)
	require.Len(t, prv.events, 1)
	assert.Equal(t, "k", prv.events[0].Photos[0].ObjectKey)

	err = c.handleMessage(context.Background(), message(t, 3, "candidate.deleted", struct{}{}))
	assert.ErrorIs(t, err, errs.ErrUnknownEventType)
}

func TestKafkaController_CommitPolicy(t *testing.T) {
	t.Parallel()

	prv := &stubPreview{err: errors.New("s3 timeout")}
	c := newController(t, prv, &stubNotification{}, newChanReader())

	// transient failure: keep the offset
	assert.False(t, c.process(message(t, 1, entity.EventCandidateSubmitted, dto.CandidateSubmittedEvent{})))

	// poison messages: commit and move on
	assert.True(t, c.process(message(t, 2, "candidate.deleted", struct{}{})))
	assert.True(t, c.process(kafka.Message{
		Offset:  3,
		Value:   []byte("{not json"),
		Headers: []kafka.Header{{Key: kafkapc.HeaderEventType, Value: []byte(entity.EventCandidateImported)}},
	}))

	assert.True(t, c.process(message(t, 4, entity.EventCandidateImported, dto.CandidateImportedEvent{})))
}

func TestKafkaController_StartShutdown(t *testing.T) {
	t.Parallel()

	r := newChanReader(
		message(t, 10, entity.EventCandidateImported, dto.CandidateImportedEvent{PhoneNumber: "1"}),
		message(t, 11, entity.EventCandidateSubmitted, dto.CandidateSubmittedEvent{CandidateID: uuid.New()}),
	)
	ntf, prv := &stubNotification{}, &stubPreview{}
	c := New(prv, ntf, r, logger.NewWithZap(zaptest.NewLogger(t)), time.Second, time.Second, 3, time.Millisecond, 2)

	require.NoError(t, c.Start(context.Background()))
	require.Error(t, c.Start(context.Background()))

	require.Eventually(t, func() bool { return len(r.commits()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []int64{10, 11}, r.commits())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.True(t, r.closed)
}

func TestKafkaController_RetriesTransientFailureInPlace(t *testing.T) {
	t.Parallel()

	prv := &stubPreview{failFirst: 2}
	c := newController(t, prv, &stubNotification{}, newChanReader())

	assert.True(t, c.processWithRetry(message(t, 5, entity.EventCandidateSubmitted, dto.CandidateSubmittedEvent{CandidateID: uuid.New()})))
	assert.Equal(t, 3, prv.calls())
}

func TestKafkaController_RetryBudgetIsBounded(t *testing.T) {
	t.Parallel()

	prv := &stubPreview{err: errors.New("s3 down")}
	c := newController(t, prv, &stubNotification{}, newChanReader())

	assert.False(t, c.processWithRetry(message(t, 6, entity.EventCandidateSubmitted, dto.CandidateSubmittedEvent{})))
	assert.Equal(t, 3, prv.calls())
}

func TestKafkaController_FailedMessageIsCommittedOnlyAfterRecovery(t *testing.T) {
	t.Parallel()

	r := newChanReader(
		message(t, 20, entity.EventCandidateSubmitted, dto.CandidateSubmittedEvent{CandidateID: uuid.New()}),
	)
	prv := &stubPreview{failFirst: 1}
	c := New(prv, &stubNotification{}, r, logger.NewWithZap(zaptest.NewLogger(t)), time.Second, time.Second, 3, time.Millisecond, 1)

	require.NoError(t, c.Start(context.Background()))

	require.Eventually(t, func() bool { return len(r.commits()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []int64{20}, r.commits())
	assert.Equal(t, 2, prv.calls())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))
}
