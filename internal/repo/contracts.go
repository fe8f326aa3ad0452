package repo

import (
	"context"
	"io"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/google/uuid"
)

type (
	// PhotoRepo stores photo bytes in object storage.
	PhotoRepo interface {
		Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error
		UploadBytes(ctx context.Context, key string, data []byte, contentType string) error
		Download(ctx context.Context, key string) (io.ReadCloser, error)
		DownloadBytes(ctx context.Context, key string) ([]byte, error)
		Delete(ctx context.Context, key string) error
	}

	CandidateRepo interface {
		CreateBatch(ctx context.Context, candidates []*entity.Candidate) error
		GetByToken(ctx context.Context, token string) (*entity.Candidate, error)
		GetByID(ctx context.Context, id uuid.UUID) (*entity.Candidate, error)
		List(ctx context.Context) ([]*entity.Candidate, error)
		// MarkSubmitted is a compare-and-set on status: it succeeds only for a
		// pending record and returns ErrRecordNotFound or ErrAlreadySubmitted otherwise.
		MarkSubmitted(ctx context.Context, token string, details entity.Details, submittedAt time.Time) (uuid.UUID, error)
	}

	PhotoMetadataRepo interface {
		CreateBatch(ctx context.Context, photos []entity.Photo) error
		ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Photo, error)
		Get(ctx context.Context, candidateID uuid.UUID, slot int) (*entity.Photo, error)
		SetThumbnailKey(ctx context.Context, candidateID uuid.UUID, slot int, key string) error
	}

	OutboxRepo interface {
		CreateBatch(ctx context.Context, events []*entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int, maxRetries int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		DeleteOldProcessedAndFailed(ctx context.Context) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
