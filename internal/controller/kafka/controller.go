package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure"
	kafkapc "github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Candidate-Verifier/internal/metrics"
	"github.com/andreyxaxa/Candidate-Verifier/internal/usecase"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type KafkaController struct {
	prv    usecase.PreviewUseCase
	ntf    usecase.NotificationUseCase
	er     infrastructure.EventsReader
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration

	// transient failures are retried in place before the worker moves on
	retryAttempts int
	retryBackoff  time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	prv usecase.PreviewUseCase,
	ntf usecase.NotificationUseCase,
	er infrastructure.EventsReader,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	retryAttempts int,
	retryBackoff time.Duration,
	workers int,
) *KafkaController {
	if retryAttempts < 1 {
		retryAttempts = 1
	}

	return &KafkaController{
		prv:            prv,
		ntf:            ntf,
		er:             er,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		retryAttempts:  retryAttempts,
		retryBackoff:   retryBackoff,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	// канал для задач
	tasks := make(chan kafka.Message, c.workers*2)

	// запускаем воркеры
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				// 1. читаем из кафки
				event, err := c.er.ReadEvent(c.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						c.logger.Error(err, "KafkaController - Start - c.er.ReadEvent")
					}
					continue
				}

				// 2. отправляем в канал для воркеров
				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

// handleMessage dispatches on the event_type header.
func (c *KafkaController) handleMessage(ctx context.Context, msg kafka.Message) error {
	eventType := kafkapc.EventType(msg)

	switch eventType {
	case entity.EventCandidateImported:
		payload, err := decodeImported(msg.Value)
		if err != nil {
			return fmt.Errorf("KafkaController - handleMessage: %w", err)
		}

		err = c.ntf.SendLink(ctx, payload)
		if err != nil {
			return fmt.Errorf("KafkaController - handleMessage - c.ntf.SendLink: %w", err)
		}
	case entity.EventCandidateSubmitted:
		payload, err := decodeSubmitted(msg.Value)
		if err != nil {
			return fmt.Errorf("KafkaController - handleMessage: %w", err)
		}

		err = c.prv.BuildThumbnails(ctx, payload)
		if err != nil {
			return fmt.Errorf("KafkaController - handleMessage - c.prv.BuildThumbnails: %w", err)
		}
	default:
		return fmt.Errorf("KafkaController - handleMessage: %w", unknownEventType(string(eventType)))
	}

	return nil
}

// process reports whether the message offset may be committed.
func (c *KafkaController) process(msg kafka.Message) bool {
	eventType := string(kafkapc.EventType(msg))

	processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
	err := c.handleMessage(processCtx, msg)
	processCancel()

	if err == nil {
		metrics.EventsConsumed.WithLabelValues(eventType, "ok").Inc()
		return true
	}

	var perr *permanentError
	if errors.As(err, &perr) {
		metrics.EventsConsumed.WithLabelValues(eventType, "skipped").Inc()
		c.logger.Warn("KafkaController - skipping message at offset %d: %v", msg.Offset, err)
		return true
	}

	metrics.EventsConsumed.WithLabelValues(eventType, "failed").Inc()
	c.logger.Error(err, "KafkaController - worker - c.handleMessage")

	return false
}

// processWithRetry repeats a transiently failing message with exponential
// backoff. Once the attempts are spent the offset is left uncommitted.
func (c *KafkaController) processWithRetry(msg kafka.Message) bool {
	backoff := c.retryBackoff

	for attempt := 1; ; attempt++ {
		if c.process(msg) {
			return true
		}

		if attempt >= c.retryAttempts {
			metrics.EventsConsumed.WithLabelValues(string(kafkapc.EventType(msg)), "dropped").Inc()
			c.logger.Warn("KafkaController - giving up on message at offset %d after %d attempts", msg.Offset, attempt)

			return false
		}

		select {
		case <-time.After(backoff):
		case <-c.ctx.Done():
			return false
		}
		backoff *= 2
	}
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	// читаем канал, пока не закроется
	for event := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - worker - panic")
				}
			}()

			if !c.processWithRetry(event) {
				return
			}

			// коммитим после успешной обработки
			commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
			err := c.er.CommitEvent(commitCtx, event)
			commitCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.er.CommitEvent")
			}
		}()
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		if err := c.er.Close(); err != nil {
			c.logger.Error(err, "KafkaController - Shutdown - c.er.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("KafkaController - Shutdown: %w", ctx.Err())
	}
}
