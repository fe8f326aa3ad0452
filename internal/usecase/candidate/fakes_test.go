package candidate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/google/uuid"
)

// memDB is an in-memory stand-in for the candidates, candidate_photos and
// candidates_outbox tables. Transactions are serialized and roll back by
// restoring a snapshot.
type memDB struct {
	txMu sync.Mutex

	mu         sync.Mutex
	candidates map[uuid.UUID]entity.Candidate
	photos     map[uuid.UUID][]entity.Photo
	outbox     []*entity.OutboxEvent

	failPhotoInsert  error
	failOutboxInsert error
}

func newMemDB() *memDB {
	return &memDB{
		candidates: make(map[uuid.UUID]entity.Candidate),
		photos:     make(map[uuid.UUID][]entity.Photo),
	}
}

type memSnapshot struct {
	candidates map[uuid.UUID]entity.Candidate
	photos     map[uuid.UUID][]entity.Photo
	outbox     []*entity.OutboxEvent
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()

	s := memSnapshot{
		candidates: make(map[uuid.UUID]entity.Candidate, len(db.candidates)),
		photos:     make(map[uuid.UUID][]entity.Photo, len(db.photos)),
		outbox:     append([]*entity.OutboxEvent(nil), db.outbox...),
	}
	for k, v := range db.candidates {
		s.candidates[k] = v
	}
	for k, v := range db.photos {
		s.photos[k] = append([]entity.Photo(nil), v...)
	}

	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.candidates = s.candidates
	db.photos = s.photos
	db.outbox = s.outbox
}

func (db *memDB) WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	snap := db.snapshot()
	if err := f(ctx); err != nil {
		db.restore(snap)
		return err
	}

	return nil
}

func (db *memDB) count() int {
	db.mu.Lock()
	defer db.mu.Unlock()

	return len(db.candidates)
}

func (db *memDB) outboxEvents(eventType entity.EventType) []*entity.OutboxEvent {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []*entity.OutboxEvent
	for _, e := range db.outbox {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}

	return out
}

type memCandidateRepo struct{ db *memDB }

func (r memCandidateRepo) CreateBatch(_ context.Context, candidates []*entity.Candidate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, c := range candidates {
		for _, existing := range r.db.candidates {
			if existing.Token == c.Token {
				return errors.New("duplicate token")
			}
		}
		r.db.candidates[c.ID] = *c
	}

	return nil
}

func (r memCandidateRepo) GetByToken(_ context.Context, token string) (*entity.Candidate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, c := range r.db.candidates {
		if c.Token == token {
			c.PhotoCount = len(r.db.photos[c.ID])
			return &c, nil
		}
	}

	return nil, errs.ErrRecordNotFound
}

func (r memCandidateRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Candidate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.candidates[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	c.PhotoCount = len(r.db.photos[c.ID])

	return &c, nil
}

func (r memCandidateRepo) List(_ context.Context) ([]*entity.Candidate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]*entity.Candidate, 0, len(r.db.candidates))
	for _, c := range r.db.candidates {
		c := c
		c.PhotoCount = len(r.db.photos[c.ID])
		out = append(out, &c)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.SubmittedAt != nil && b.SubmittedAt == nil:
			return true
		case a.SubmittedAt == nil && b.SubmittedAt != nil:
			return false
		case a.SubmittedAt != nil && !a.SubmittedAt.Equal(*b.SubmittedAt):
			return a.SubmittedAt.After(*b.SubmittedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return out, nil
}

func (r memCandidateRepo) MarkSubmitted(_ context.Context, token string, details entity.Details, submittedAt time.Time) (uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for id, c := range r.db.candidates {
		if c.Token != token {
			continue
		}
		if c.Status != entity.CandidatePending {
			return uuid.Nil, errs.ErrAlreadySubmitted
		}

		c.Details = details
		c.Status = entity.CandidateSubmitted
		c.SubmittedAt = &submittedAt
		r.db.candidates[id] = c

		return id, nil
	}

	return uuid.Nil, errs.ErrRecordNotFound
}

type memPhotoMetaRepo struct{ db *memDB }

func (r memPhotoMetaRepo) CreateBatch(_ context.Context, photos []entity.Photo) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.failPhotoInsert != nil {
		return r.db.failPhotoInsert
	}

	for _, p := range photos {
		r.db.photos[p.CandidateID] = append(r.db.photos[p.CandidateID], p)
	}

	return nil
}

func (r memPhotoMetaRepo) ListByCandidate(_ context.Context, candidateID uuid.UUID) ([]entity.Photo, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return append([]entity.Photo(nil), r.db.photos[candidateID]...), nil
}

func (r memPhotoMetaRepo) Get(_ context.Context, candidateID uuid.UUID, slot int) (*entity.Photo, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, p := range r.db.photos[candidateID] {
		if p.Slot == slot {
			return &p, nil
		}
	}

	return nil, errs.ErrRecordNotFound
}

func (r memPhotoMetaRepo) SetThumbnailKey(_ context.Context, candidateID uuid.UUID, slot int, key string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i, p := range r.db.photos[candidateID] {
		if p.Slot == slot {
			r.db.photos[candidateID][i].ThumbnailKey = &key
			return nil
		}
	}

	return errs.ErrRecordNotFound
}

type memOutboxRepo struct{ db *memDB }

func (r memOutboxRepo) CreateBatch(_ context.Context, events []*entity.OutboxEvent) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.failOutboxInsert != nil {
		return r.db.failOutboxInsert
	}

	r.db.outbox = append(r.db.outbox, events...)

	return nil
}

func (r memOutboxRepo) GetPendingEvents(context.Context, int, int) ([]*entity.OutboxEvent, error) {
	return nil, nil
}

func (r memOutboxRepo) MarkAsProcessingBatch(context.Context, uuid.UUIDs) error { return nil }

func (r memOutboxRepo) MarkAsProcessedBatch(context.Context, uuid.UUIDs) error { return nil }

func (r memOutboxRepo) MarkMaxRetriesAsFailed(context.Context, int) error { return nil }

func (r memOutboxRepo) IncrementRetryCountBatch(context.Context, uuid.UUIDs) error { return nil }

func (r memOutboxRepo) DeleteOldProcessedAndFailed(context.Context) (int64, error) { return 0, nil }

// memObjectStore is an in-memory bucket.
type memObjectStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failUpload error
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: make(map[string][]byte)}
}

func (s *memObjectStore) Upload(ctx context.Context, key string, data io.Reader, contentType string, _ int64) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	return s.UploadBytes(ctx, key, b, contentType)
}

func (s *memObjectStore) UploadBytes(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failUpload != nil {
		return s.failUpload
	}

	s.objects[key] = append([]byte(nil), data...)

	return nil
}

func (s *memObjectStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b, err := s.DownloadBytes(ctx, key)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *memObjectStore) DownloadBytes(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.objects[key]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}

	return append([]byte(nil), b...), nil
}

func (s *memObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)

	return nil
}

func (s *memObjectStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.objects)
}
