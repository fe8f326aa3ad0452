package infrastructure

import (
	"context"

	"github.com/andreyxaxa/Candidate-Verifier/internal/dto"
	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/segmentio/kafka-go"
)

type (
	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}

	EventsReader interface {
		ReadEvent(ctx context.Context) (kafka.Message, error)
		CommitEvent(ctx context.Context, event kafka.Message) error
		Close() error
	}

	// SpreadsheetReader turns an uploaded file into a header row and keyed data rows.
	SpreadsheetReader interface {
		Read(fileName string, data []byte) (*dto.Table, error)
	}

	// PreviewRenderer produces a downscaled JPEG of a photo with caption stamped on it.
	PreviewRenderer interface {
		Preview(ctx context.Context, contentType string, data []byte, caption string) ([]byte, error)
	}

	SMSSender interface {
		SendSMS(ctx context.Context, phone, message string) error
	}

	RateLimiter interface {
		Allow(ctx context.Context, key string) (bool, error)
	}
)
