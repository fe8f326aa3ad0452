package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubOutbox struct {
	mu        sync.Mutex
	pending   []*entity.OutboxEvent
	processed int
	retried   int
	failed    int
	cleaned   int
}

func (s *stubOutbox) ClaimPendingEvents(context.Context, int, int) ([]*entity.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out, nil
}

func (s *stubOutbox) MarkAsProcessedBatch(_ context.Context, events []*entity.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed += len(events)
	return nil
}

func (s *stubOutbox) IncrementRetryCountBatch(_ context.Context, events []*entity.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retried += len(events)
	return nil
}

func (s *stubOutbox) MarkMaxRetriesAsFailed(context.Context, int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
	return nil
}

func (s *stubOutbox) CleanupOutbox(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleaned++
	return nil
}

func (s *stubOutbox) snapshot() (processed, retried, failed, cleaned int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed, s.retried, s.failed, s.cleaned
}

type stubSender struct {
	mu     sync.Mutex
	sent   int
	err    error
	closed bool
}

func (s *stubSender) SendEvents(_ context.Context, events []*entity.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent += len(events)
	return nil
}

func (s *stubSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func events(n int) []*entity.OutboxEvent {
	out := make([]*entity.OutboxEvent, n)
	for i := range out {
		out[i] = &entity.OutboxEvent{ID: uuid.New(), EventType: entity.EventCandidateImported}
	}
	return out
}

func newRelay(t *testing.T, obx *stubOutbox, es *stubSender) *OutboxRelay {
	t.Helper()

	return New(obx, es, logger.NewWithZap(zaptest.NewLogger(t)),
		5*time.Millisecond, 5*time.Millisecond, 5*time.Millisecond, time.Second, 100, 3)
}

func TestOutboxRelay_PublishesAndMarksProcessed(t *testing.T) {
	t.Parallel()

	obx := &stubOutbox{pending: events(3)}
	es := &stubSender{}
	r := newRelay(t, obx, es)

	require.NoError(t, r.Start(context.Background()))
	require.Error(t, r.Start(context.Background()))

	require.Eventually(t, func() bool {
		processed, _, failed, cleaned := obx.snapshot()
		return processed == 3 && failed > 0 && cleaned > 0
	}, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))

	es.mu.Lock()
	defer es.mu.Unlock()
	assert.Equal(t, 3, es.sent)
	assert.True(t, es.closed)
}

func TestOutboxRelay_SendFailureReturnsEventsToPending(t *testing.T) {
	t.Parallel()

	obx := &stubOutbox{pending: events(2)}
	r := newRelay(t, obx, &stubSender{err: errors.New("broker down")})
	r.ctx = context.Background()

	r.processEventsBatch(context.Background())

	processed, retried, _, _ := obx.snapshot()
	assert.Zero(t, processed)
	assert.Equal(t, 2, retried)
}

func TestOutboxRelay_ShutdownBeforeStart(t *testing.T) {
	t.Parallel()

	r := newRelay(t, &stubOutbox{}, &stubSender{})
	assert.NoError(t, r.Shutdown(context.Background()))
}
