package candidate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/dto"
	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure"
	"github.com/andreyxaxa/Candidate-Verifier/internal/metrics"
	"github.com/andreyxaxa/Candidate-Verifier/internal/repo"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/google/uuid"
)

const thumbnailContentType = "image/jpeg"

type CandidateUseCase struct {
	candidateRepo repo.CandidateRepo
	photoMetaRepo repo.PhotoMetadataRepo
	photoRepo     repo.PhotoRepo
	outboxRepo    repo.OutboxRepo
	transactor    repo.Transactor
	sheets        infrastructure.SpreadsheetReader

	frontendBaseURL string

	logger logger.Interface
	now    func() time.Time
}

func New(
	candidateRepo repo.CandidateRepo,
	photoMetaRepo repo.PhotoMetadataRepo,
	photoRepo repo.PhotoRepo,
	outboxRepo repo.OutboxRepo,
	transactor repo.Transactor,
	sheets infrastructure.SpreadsheetReader,
	frontendBaseURL string,
	l logger.Interface,
) *CandidateUseCase {
	return &CandidateUseCase{
		candidateRepo:   candidateRepo,
		photoMetaRepo:   photoMetaRepo,
		photoRepo:       photoRepo,
		outboxRepo:      outboxRepo,
		transactor:      transactor,
		sheets:          sheets,
		frontendBaseURL: frontendBaseURL,
		logger:          l,
		now:             time.Now,
	}
}

// Import creates one pending candidate per data row of the file. The file is
// fully validated first and all rows are written in one transaction, so a
// rejected or failed import leaves no records.
func (uc *CandidateUseCase) Import(ctx context.Context, fileName string, data []byte) ([]dto.ImportedCandidate, error) {
	// 1. парсим файл
	table, err := uc.sheets.Read(fileName, data)
	if err != nil {
		metrics.ImportsRejected.WithLabelValues("format").Inc()
		return nil, fmt.Errorf("CandidateUseCase - Import - uc.sheets.Read: %w", err)
	}

	// 2. проверяем заголовки и наличие строк до любой записи
	if len(table.Header) == 0 {
		metrics.ImportsRejected.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("CandidateUseCase - Import: %w", errs.ErrEmptyInput)
	}

	if col := missingColumn(table.Header); col != "" {
		metrics.ImportsRejected.WithLabelValues("schema").Inc()
		return nil, fmt.Errorf("CandidateUseCase - Import: %w", &errs.SchemaMismatchError{Column: col})
	}

	if len(table.Rows) == 0 {
		metrics.ImportsRejected.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("CandidateUseCase - Import: %w", errs.ErrEmptyInput)
	}

	// 3. собираем записи и события
	now := uc.now()
	candidates := make([]*entity.Candidate, 0, len(table.Rows))
	events := make([]*entity.OutboxEvent, 0, len(table.Rows))
	summary := make([]dto.ImportedCandidate, 0, len(table.Rows))

	for i, row := range table.Rows {
		c := &entity.Candidate{
			ID:      uuid.New(),
			Token:   uuid.NewString(),
			Details: detailsFromRow(row),
			Status:  entity.CandidatePending,
			// file order survives the created_at sort of the admin list
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
		link := uc.link(c.Token)

		event, err := newOutboxEvent(c.ID, entity.EventCandidateImported, dto.CandidateImportedEvent{
			CandidateID:   c.ID,
			CandidateName: c.CandidateName,
			PhoneNumber:   c.PhoneNumber,
			UniqueLink:    link,
		}, now)
		if err != nil {
			return nil, fmt.Errorf("CandidateUseCase - Import - newOutboxEvent: %w", err)
		}

		candidates = append(candidates, c)
		events = append(events, event)
		summary = append(summary, dto.ImportedCandidate{
			CandidateName: c.CandidateName,
			PhoneNumber:   c.PhoneNumber,
			UniqueLink:    link,
		})
	}

	// 4. в единой транзакции
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.candidateRepo.CreateBatch(ctx, candidates); err != nil {
			return fmt.Errorf("CandidateUseCase - Import - uc.candidateRepo.CreateBatch: %w", err)
		}

		if err := uc.outboxRepo.CreateBatch(ctx, events); err != nil {
			return fmt.Errorf("CandidateUseCase - Import - uc.outboxRepo.CreateBatch: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("CandidateUseCase - Import - uc.transactor.WithinTransaction: %w", errs.Persistence(err))
	}

	metrics.CandidatesImported.Add(float64(len(candidates)))

	return summary, nil
}

func (uc *CandidateUseCase) GetForPrefill(ctx context.Context, token string) (*entity.Candidate, error) {
	c, err := uc.candidateRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("CandidateUseCase - GetForPrefill - uc.candidateRepo.GetByToken: %w", err)
	}

	if c.IsSubmitted() {
		return nil, fmt.Errorf("CandidateUseCase - GetForPrefill: %w", errs.ErrAlreadySubmitted)
	}

	return c, nil
}

// Submit finalizes a pending candidate with the edited details and photos.
// The pending -> submitted transition happens exactly once per token.
func (uc *CandidateUseCase) Submit(ctx context.Context, token string, submission dto.Submission) error {
	err := uc.submit(ctx, token, submission)

	switch {
	case err == nil:
		metrics.Submissions.WithLabelValues(metrics.ResultAccepted).Inc()
	case errors.Is(err, errs.ErrAlreadySubmitted):
		metrics.Submissions.WithLabelValues(metrics.ResultAlreadySubmitted).Inc()
	case errors.Is(err, errs.ErrRecordNotFound):
		metrics.Submissions.WithLabelValues(metrics.ResultNotFound).Inc()
	case errors.Is(err, errs.ErrValidation):
		metrics.Submissions.WithLabelValues(metrics.ResultInvalid).Inc()
	default:
		metrics.Submissions.WithLabelValues(metrics.ResultError).Inc()
	}

	return err
}

func (uc *CandidateUseCase) submit(ctx context.Context, token string, submission dto.Submission) error {
	if err := validatePhotos(submission.Photos); err != nil {
		return fmt.Errorf("CandidateUseCase - Submit - validatePhotos: %w", err)
	}

	// 1. отсекаем неизвестные и уже отправленные токены до загрузки в S3;
	// окончательное решение принимает условный UPDATE в транзакции
	c, err := uc.candidateRepo.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("CandidateUseCase - Submit - uc.candidateRepo.GetByToken: %w", err)
	}
	if c.IsSubmitted() {
		return fmt.Errorf("CandidateUseCase - Submit: %w", errs.ErrAlreadySubmitted)
	}

	// 2. загружаем фото в S3 под ключами этой попытки
	attemptID := uuid.New()
	photos := make([]entity.Photo, 0, len(submission.Photos))
	uploaded := make([]string, 0, len(submission.Photos))

	for _, p := range submission.Photos {
		key := photoKey(c.ID, attemptID, p.Slot)

		err = uc.photoRepo.UploadBytes(ctx, key, p.Data, p.ContentType)
		if err != nil {
			uc.deleteObjects(ctx, uploaded)
			return fmt.Errorf("CandidateUseCase - Submit - uc.photoRepo.UploadBytes: %w", errs.Persistence(err))
		}
		uploaded = append(uploaded, key)

		photos = append(photos, entity.Photo{
			CandidateID: c.ID,
			Slot:        p.Slot,
			ObjectKey:   key,
			ContentType: p.ContentType,
			Size:        int64(len(p.Data)),
			Meta:        p.Meta,
		})
	}

	// 3. в единой транзакции: переход статуса, фото, событие
	now := uc.now()
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		id, err := uc.candidateRepo.MarkSubmitted(ctx, token, submission.Details, now)
		if err != nil {
			return fmt.Errorf("CandidateUseCase - Submit - uc.candidateRepo.MarkSubmitted: %w", err)
		}

		event := dto.CandidateSubmittedEvent{CandidateID: id}
		for i := range photos {
			photos[i].CandidateID = id
			event.Photos = append(event.Photos, dto.SubmittedPhoto{
				Slot:        photos[i].Slot,
				ObjectKey:   photos[i].ObjectKey,
				ContentType: photos[i].ContentType,
				Meta:        photos[i].Meta,
			})
		}

		if err := uc.photoMetaRepo.CreateBatch(ctx, photos); err != nil {
			return fmt.Errorf("CandidateUseCase - Submit - uc.photoMetaRepo.CreateBatch: %w", err)
		}

		outboxEvent, err := newOutboxEvent(id, entity.EventCandidateSubmitted, event, now)
		if err != nil {
			return err
		}

		if err := uc.outboxRepo.CreateBatch(ctx, []*entity.OutboxEvent{outboxEvent}); err != nil {
			return fmt.Errorf("CandidateUseCase - Submit - uc.outboxRepo.CreateBatch: %w", err)
		}

		return nil
	})

	// если транзакция не прошла - удаляем загруженные объекты
	if err != nil {
		uc.deleteObjects(ctx, uploaded)

		if errors.Is(err, errs.ErrAlreadySubmitted) || errors.Is(err, errs.ErrRecordNotFound) {
			return fmt.Errorf("CandidateUseCase - Submit - uc.transactor.WithinTransaction: %w", err)
		}
		return fmt.Errorf("CandidateUseCase - Submit - uc.transactor.WithinTransaction: %w", errs.Persistence(err))
	}

	return nil
}

func (uc *CandidateUseCase) List(ctx context.Context) ([]*entity.Candidate, error) {
	candidates, err := uc.candidateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("CandidateUseCase - List - uc.candidateRepo.List: %w", err)
	}

	return candidates, nil
}

func (uc *CandidateUseCase) GetByID(ctx context.Context, id uuid.UUID) (*entity.Candidate, error) {
	c, err := uc.candidateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("CandidateUseCase - GetByID - uc.candidateRepo.GetByID: %w", err)
	}

	photos, err := uc.photoMetaRepo.ListByCandidate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("CandidateUseCase - GetByID - uc.photoMetaRepo.ListByCandidate: %w", err)
	}
	c.Photos = photos

	return c, nil
}

func (uc *CandidateUseCase) DownloadPhoto(ctx context.Context, id uuid.UUID, slot int, thumbnail bool) (*dto.PhotoObject, error) {
	if slot < 1 || slot > entity.MaxPhotoSlots {
		return nil, fmt.Errorf("CandidateUseCase - DownloadPhoto: %w",
			errs.NewValidationError("slot", fmt.Sprintf("must be between 1 and %d", entity.MaxPhotoSlots)))
	}

	p, err := uc.photoMetaRepo.Get(ctx, id, slot)
	if err != nil {
		return nil, fmt.Errorf("CandidateUseCase - DownloadPhoto - uc.photoMetaRepo.Get: %w", err)
	}

	key, contentType := p.ObjectKey, p.ContentType
	if thumbnail {
		if !p.HasThumbnail() {
			return nil, fmt.Errorf("CandidateUseCase - DownloadPhoto - thumbnail: %w", errs.ErrRecordNotFound)
		}
		key, contentType = *p.ThumbnailKey, thumbnailContentType
	}

	body, err := uc.photoRepo.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("CandidateUseCase - DownloadPhoto - uc.photoRepo.Download: %w", err)
	}

	return &dto.PhotoObject{Body: body, ContentType: contentType}, nil
}

func validatePhotos(photos []dto.PhotoUpload) error {
	if len(photos) == 0 {
		return errs.NewValidationError("photos", "at least one photo is required")
	}

	seen := make(map[int]struct{}, len(photos))
	for _, p := range photos {
		field := fmt.Sprintf("photo%d", p.Slot)

		if p.Slot < 1 || p.Slot > entity.MaxPhotoSlots {
			return errs.NewValidationError(field, "unknown photo slot")
		}
		if _, dup := seen[p.Slot]; dup {
			return errs.NewValidationError(field, "sent more than once")
		}
		seen[p.Slot] = struct{}{}

		if len(p.Data) == 0 {
			return errs.NewValidationError(field, "is empty")
		}
		if p.Meta == "" {
			return errs.NewValidationError(fmt.Sprintf("meta%d", p.Slot), "is required with its photo")
		}
	}

	return nil
}
