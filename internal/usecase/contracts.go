package usecase

import (
	"context"

	"github.com/andreyxaxa/Candidate-Verifier/internal/dto"
	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/google/uuid"
)

type (
	CandidateUseCase interface {
		Import(ctx context.Context, fileName string, data []byte) ([]dto.ImportedCandidate, error)
		GetForPrefill(ctx context.Context, token string) (*entity.Candidate, error)
		Submit(ctx context.Context, token string, submission dto.Submission) error
		List(ctx context.Context) ([]*entity.Candidate, error)
		GetByID(ctx context.Context, id uuid.UUID) (*entity.Candidate, error)
		DownloadPhoto(ctx context.Context, id uuid.UUID, slot int, thumbnail bool) (*dto.PhotoObject, error)
	}

	OutboxUseCase interface {
		ClaimPendingEvents(ctx context.Context, limit, maxRetries int) ([]*entity.OutboxEvent, error)
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context) error
	}

	PreviewUseCase interface {
		BuildThumbnails(ctx context.Context, event dto.CandidateSubmittedEvent) error
	}

	NotificationUseCase interface {
		SendLink(ctx context.Context, event dto.CandidateImportedEvent) error
	}
)
