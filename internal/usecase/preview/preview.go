package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/dto"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure"
	"github.com/andreyxaxa/Candidate-Verifier/internal/metrics"
	"github.com/andreyxaxa/Candidate-Verifier/internal/repo"
)

const thumbnailContentType = "image/jpeg"

type PreviewUseCase struct {
	photoRepo     repo.PhotoRepo
	photoMetaRepo repo.PhotoMetadataRepo
	renderer      infrastructure.PreviewRenderer

	cpuTimeout time.Duration
}

func New(
	photoRepo repo.PhotoRepo,
	photoMetaRepo repo.PhotoMetadataRepo,
	renderer infrastructure.PreviewRenderer,
	cpuTimeout time.Duration,
) *PreviewUseCase {
	return &PreviewUseCase{
		photoRepo:     photoRepo,
		photoMetaRepo: photoMetaRepo,
		renderer:      renderer,
		cpuTimeout:    cpuTimeout,
	}
}

// BuildThumbnails renders a captioned preview for every photo of a submission.
// Thumbnail keys are deterministic, so a redelivered event overwrites instead of duplicating.
func (uc *PreviewUseCase) BuildThumbnails(ctx context.Context, event dto.CandidateSubmittedEvent) error {
	var errs []error

	for _, p := range event.Photos {
		if err := uc.buildOne(ctx, event, p); err != nil {
			errs = append(errs, fmt.Errorf("photo%d: %w", p.Slot, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("PreviewUseCase - BuildThumbnails: %w", err)
	}

	return nil
}

func (uc *PreviewUseCase) buildOne(ctx context.Context, event dto.CandidateSubmittedEvent, p dto.SubmittedPhoto) error {
	// 1. скачиваем оригинал из S3
	data, err := uc.photoRepo.DownloadBytes(ctx, p.ObjectKey)
	if err != nil {
		return fmt.Errorf("PreviewUseCase - buildOne - uc.photoRepo.DownloadBytes: %w", err)
	}

	// 2. рендерим превью
	started := time.Now()
	cpuCtx, cpuCancel := context.WithTimeout(ctx, uc.cpuTimeout)
	thumb, err := uc.renderer.Preview(cpuCtx, p.ContentType, data, Caption(p.Meta))
	cpuCancel()
	if err != nil {
		return fmt.Errorf("PreviewUseCase - buildOne - uc.renderer.Preview: %w", err)
	}
	metrics.ThumbnailDuration.Observe(time.Since(started).Seconds())

	// 3. загружаем превью и сохраняем ключ
	key := ThumbnailKey(event, p.Slot)

	err = uc.photoRepo.UploadBytes(ctx, key, thumb, thumbnailContentType)
	if err != nil {
		return fmt.Errorf("PreviewUseCase - buildOne - uc.photoRepo.UploadBytes: %w", err)
	}

	err = uc.photoMetaRepo.SetThumbnailKey(ctx, event.CandidateID, p.Slot, key)
	if err != nil {
		return fmt.Errorf("PreviewUseCase - buildOne - uc.photoMetaRepo.SetThumbnailKey: %w", err)
	}

	return nil
}

func ThumbnailKey(event dto.CandidateSubmittedEvent, slot int) string {
	return fmt.Sprintf("thumbnails/%s/photo%d", event.CandidateID, slot)
}

// Caption flattens the capture metadata to a single line.
func Caption(meta string) string {
	return strings.Join(strings.Fields(meta), " ")
}
