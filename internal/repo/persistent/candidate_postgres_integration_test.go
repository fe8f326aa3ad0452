//go:build integration

package persistent

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/postgres"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newContainerPostgres(t *testing.T) *postgres.Postgres {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("candidates"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("pass"),
		tcpostgres.WithInitScripts(filepath.Join("..", "..", "..", "migrations", "20251018120000_candidates.up.sql")),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pg, err := postgres.New(url, postgres.MaxPoolSize(16))
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	return pg
}

func seedCandidates(t *testing.T, repo *CandidateRepo, n int) []*entity.Candidate {
	t.Helper()

	base := time.Now().Add(-time.Hour)
	candidates := make([]*entity.Candidate, n)
	for i := range candidates {
		candidates[i] = &entity.Candidate{
			ID:        uuid.New(),
			Token:     uuid.NewString(),
			Details:   entity.Details{CandidateName: "Candidate " + string(rune('A'+i))},
			Status:    entity.CandidatePending,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
	}

	require.NoError(t, repo.CreateBatch(context.Background(), candidates))

	return candidates
}

func TestCandidateRepo_ConcurrentMarkSubmitted(t *testing.T) {
	pg := newContainerPostgres(t)
	repo := NewCandidateRepo(pg)
	c := seedCandidates(t, repo, 1)[0]

	const racers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := repo.MarkSubmitted(context.Background(), c.Token, entity.Details{City: "Pune"}, time.Now())

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, errs.ErrAlreadySubmitted):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, racers-1, conflicts)

	got, err := repo.GetByToken(context.Background(), c.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.CandidateSubmitted, got.Status)
	assert.NotNil(t, got.SubmittedAt)
	assert.Equal(t, "Pune", got.City)
}

func TestCandidateRepo_ListOrdersSubmittedFirst(t *testing.T) {
	pg := newContainerPostgres(t)
	repo := NewCandidateRepo(pg)
	photos := NewPhotoMetadataRepo(pg)
	candidates := seedCandidates(t, repo, 3)

	ctx := context.Background()

	id, err := repo.MarkSubmitted(ctx, candidates[2].Token, candidates[2].Details, time.Now())
	require.NoError(t, err)
	require.NoError(t, photos.CreateBatch(ctx, []entity.Photo{
		{CandidateID: id, Slot: 1, ObjectKey: "submissions/a/photo1", ContentType: "image/png", Size: 3, Meta: "lat=1"},
		{CandidateID: id, Slot: 2, ObjectKey: "submissions/a/photo2", ContentType: "image/png", Size: 3, Meta: "lat=2"},
	}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, candidates[2].ID, list[0].ID)
	assert.Equal(t, 2, list[0].PhotoCount)
	assert.Equal(t, candidates[0].ID, list[1].ID)
	assert.Equal(t, candidates[1].ID, list[2].ID)

	stored, err := photos.ListByCandidate(ctx, id)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "lat=2", stored[1].Meta)
	assert.False(t, stored[0].HasThumbnail())
}
