package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/postgres"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	photosTable = "candidate_photos"

	// Columns
	photoCandidateIDColumn  = "candidate_id"
	photoSlotColumn         = "slot"
	photoObjectKeyColumn    = "object_key"
	photoThumbnailKeyColumn = "thumbnail_key"
	photoContentTypeColumn  = "content_type"
	photoSizeColumn         = "size"
	photoMetaColumn         = "meta"
)

type PhotoMetadataRepo struct {
	*postgres.Postgres
}

func NewPhotoMetadataRepo(pg *postgres.Postgres) *PhotoMetadataRepo {
	return &PhotoMetadataRepo{pg}
}

func (r *PhotoMetadataRepo) CreateBatch(ctx context.Context, photos []entity.Photo) error {
	if len(photos) == 0 {
		return nil
	}

	builder := r.Builder.
		Insert(photosTable).
		Columns(
			photoCandidateIDColumn,
			photoSlotColumn,
			photoObjectKeyColumn,
			photoContentTypeColumn,
			photoSizeColumn,
			photoMetaColumn,
		)

	for _, p := range photos {
		builder = builder.Values(p.CandidateID, p.Slot, p.ObjectKey, p.ContentType, p.Size, p.Meta)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("PhotoMetadataRepo - CreateBatch - r.Builder.ToSql: %w", err)
	}

	_, err = r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("PhotoMetadataRepo - CreateBatch - executor.Exec: %w", err)
	}

	return nil
}

func (r *PhotoMetadataRepo) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Photo, error) {
	sql, args, err := r.selectPhoto().
		Where(squirrel.Eq{photoCandidateIDColumn: candidateID}).
		OrderBy(photoSlotColumn + " ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PhotoMetadataRepo - ListByCandidate - r.Builder.ToSql: %w", err)
	}

	rows, err := r.GetExecutor(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("PhotoMetadataRepo - ListByCandidate - executor.Query: %w", err)
	}
	defer rows.Close()

	photos := make([]entity.Photo, 0, entity.MaxPhotoSlots)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("PhotoMetadataRepo - ListByCandidate - rows.Scan: %w", err)
		}
		photos = append(photos, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PhotoMetadataRepo - ListByCandidate - rows.Err: %w", err)
	}

	return photos, nil
}

func (r *PhotoMetadataRepo) Get(ctx context.Context, candidateID uuid.UUID, slot int) (*entity.Photo, error) {
	sql, args, err := r.selectPhoto().
		Where(squirrel.And{
			squirrel.Eq{photoCandidateIDColumn: candidateID},
			squirrel.Eq{photoSlotColumn: slot},
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PhotoMetadataRepo - Get - r.Builder.ToSql: %w", err)
	}

	p, err := scanPhoto(r.GetExecutor(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("PhotoMetadataRepo - Get: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("PhotoMetadataRepo - Get - executor.QueryRow: %w", err)
	}

	return p, nil
}

func (r *PhotoMetadataRepo) SetThumbnailKey(ctx context.Context, candidateID uuid.UUID, slot int, key string) error {
	sql, args, err := r.Builder.
		Update(photosTable).
		Set(photoThumbnailKeyColumn, key).
		Where(squirrel.And{
			squirrel.Eq{photoCandidateIDColumn: candidateID},
			squirrel.Eq{photoSlotColumn: slot},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("PhotoMetadataRepo - SetThumbnailKey - r.Builder.ToSql: %w", err)
	}

	tag, err := r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("PhotoMetadataRepo - SetThumbnailKey - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("PhotoMetadataRepo - SetThumbnailKey: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *PhotoMetadataRepo) selectPhoto() squirrel.SelectBuilder {
	return r.Builder.
		Select(
			photoCandidateIDColumn,
			photoSlotColumn,
			photoObjectKeyColumn,
			photoThumbnailKeyColumn,
			photoContentTypeColumn,
			photoSizeColumn,
			photoMetaColumn,
		).
		From(photosTable)
}

func scanPhoto(row pgx.Row) (*entity.Photo, error) {
	var p entity.Photo

	err := row.Scan(
		&p.CandidateID,
		&p.Slot,
		&p.ObjectKey,
		&p.ThumbnailKey,
		&p.ContentType,
		&p.Size,
		&p.Meta,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
