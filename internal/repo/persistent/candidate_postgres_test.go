package persistent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/postgres"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*postgres.Postgres, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return postgres.NewWithPool(mock), mock
}

// anyArgs matches n bound parameters of any value.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

// markSubmittedArgs follows squirrel's SetMap order (columns sorted by name),
// then the token and the pending status of the WHERE clause.
func markSubmittedArgs(token string) []any {
	args := anyArgs(len(detailColumns) + 2)
	args[3] = "Asha"                     // candidate_name
	args[4] = "Pune"                     // city
	args[14] = entity.CandidateSubmitted // status

	return append(args, token, entity.CandidatePending)
}

const (
	markSubmittedSQL = `UPDATE candidates SET .* WHERE \(token = \$\d+ AND status = \$\d+\) RETURNING id`
	probeStatusSQL   = `SELECT status FROM candidates WHERE token = \$1`
)

func TestCandidateRepo_MarkSubmitted(t *testing.T) {
	t.Parallel()

	details := entity.Details{CandidateName: "Asha", City: "Pune"}

	t.Run("pending record transitions", func(t *testing.T) {
		t.Parallel()

		pg, mock := newMockPostgres(t)
		id := uuid.New()

		mock.ExpectQuery(markSubmittedSQL).
			WithArgs(markSubmittedArgs("tok")...).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

		got, err := NewCandidateRepo(pg).MarkSubmitted(context.Background(), "tok", details, time.Now())
		require.NoError(t, err)
		assert.Equal(t, id, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already submitted", func(t *testing.T) {
		t.Parallel()

		pg, mock := newMockPostgres(t)

		mock.ExpectQuery(markSubmittedSQL).
			WithArgs(markSubmittedArgs("tok")...).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))
		mock.ExpectQuery(probeStatusSQL).
			WithArgs("tok").
			WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(entity.CandidateSubmitted))

		_, err := NewCandidateRepo(pg).MarkSubmitted(context.Background(), "tok", details, time.Now())
		assert.ErrorIs(t, err, errs.ErrAlreadySubmitted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()

		pg, mock := newMockPostgres(t)

		mock.ExpectQuery(markSubmittedSQL).
			WithArgs(markSubmittedArgs("missing")...).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))
		mock.ExpectQuery(probeStatusSQL).
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows([]string{"status"}))

		_, err := NewCandidateRepo(pg).MarkSubmitted(context.Background(), "missing", details, time.Now())
		assert.ErrorIs(t, err, errs.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store failure is not mistaken for a conflict", func(t *testing.T) {
		t.Parallel()

		pg, mock := newMockPostgres(t)
		boom := errors.New("connection reset")

		mock.ExpectQuery(markSubmittedSQL).
			WithArgs(markSubmittedArgs("tok")...).
			WillReturnError(boom)

		_, err := NewCandidateRepo(pg).MarkSubmitted(context.Background(), "tok", details, time.Now())
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, errs.ErrAlreadySubmitted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCandidateRepo_GetByTokenNotFound(t *testing.T) {
	t.Parallel()

	pg, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT .* FROM candidates c WHERE token = \$1`).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := NewCandidateRepo(pg).GetByToken(context.Background(), "nope")
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepo_CreateBatchChunks(t *testing.T) {
	t.Parallel()

	pg, mock := newMockPostgres(t)

	candidates := make([]*entity.Candidate, insertChunkSize+1)
	for i := range candidates {
		candidates[i] = &entity.Candidate{
			ID:        uuid.New(),
			Token:     uuid.NewString(),
			Status:    entity.CandidatePending,
			CreatedAt: time.Now(),
		}
	}

	rowArgs := len(detailColumns) + 4 // id, token, details, status, created_at

	mock.ExpectExec(`INSERT INTO candidates`).
		WithArgs(anyArgs(insertChunkSize * rowArgs)...).
		WillReturnResult(pgxmock.NewResult("INSERT", insertChunkSize))
	mock.ExpectExec(`INSERT INTO candidates`).
		WithArgs(anyArgs(rowArgs)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := NewCandidateRepo(pg).CreateBatch(context.Background(), candidates)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepo_CreateBatchRollsBackWithinTransaction(t *testing.T) {
	t.Parallel()

	pg, mock := newMockPostgres(t)
	repo := NewCandidateRepo(pg)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO candidates`).
		WithArgs(anyArgs(len(detailColumns) + 4)...).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := pg.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return repo.CreateBatch(ctx, []*entity.Candidate{{ID: uuid.New(), Token: "t", Status: entity.CandidatePending}})
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoMetadataRepo_SetThumbnailKeyMissing(t *testing.T) {
	t.Parallel()

	pg, mock := newMockPostgres(t)
	candidateID := uuid.New()

	mock.ExpectExec(`UPDATE candidate_photos SET thumbnail_key = \$1 WHERE \(candidate_id = \$2 AND slot = \$3\)`).
		WithArgs("thumbnails/x/photo1", candidateID.String(), 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewPhotoMetadataRepo(pg).SetThumbnailKey(context.Background(), candidateID, 1, "thumbnails/x/photo1")
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoMetadataRepo_CreateBatchEmpty(t *testing.T) {
	t.Parallel()

	pg, mock := newMockPostgres(t)

	err := NewPhotoMetadataRepo(pg).CreateBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateOutboxRepo_DeleteOldProcessedAndFailed(t *testing.T) {
	t.Parallel()

	pg, mock := newMockPostgres(t)

	mock.ExpectExec(`DELETE FROM candidates_outbox WHERE \(status IN \(\$1,\$2\) AND created_at < \$3\)`).
		WithArgs(string(entity.Processed), string(entity.Failed), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := NewCandidateOutboxRepo(pg).DeleteOldProcessedAndFailed(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateOutboxRepo_MarkAsProcessedBatchMissing(t *testing.T) {
	t.Parallel()

	pg, mock := newMockPostgres(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE candidates_outbox SET status = \$1, processed_at = \$2 WHERE id IN`).
		WithArgs(entity.Processed, pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewCandidateOutboxRepo(pg).MarkAsProcessedBatch(context.Background(), uuid.UUIDs{id})
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
