package candidate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/google/uuid"
)

const verifyPage = "candidate-verify.html"

func (uc *CandidateUseCase) link(token string) string {
	return strings.TrimRight(uc.frontendBaseURL, "/") + "/" + verifyPage + "?" + url.Values{"token": {token}}.Encode()
}

func photoKey(candidateID, attemptID uuid.UUID, slot int) string {
	return fmt.Sprintf("submissions/%s/%s/photo%d", candidateID, attemptID, slot)
}

func newOutboxEvent(aggregateID uuid.UUID, eventType entity.EventType, payload any, now time.Time) (*entity.OutboxEvent, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("CandidateUseCase - newOutboxEvent - json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     b,
		Status:      entity.Pending,
		CreatedAt:   now,
		RetryCount:  0,
	}, nil
}

// deleteObjects removes uploads of a failed attempt. It outlives the request
// context so a disconnected client does not leave orphans behind.
func (uc *CandidateUseCase) deleteObjects(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)

	for _, key := range keys {
		if err := uc.photoRepo.Delete(ctx, key); err != nil {
			uc.logger.Error(err, "CandidateUseCase - deleteObjects - uc.photoRepo.Delete key=%s", key)
		}
	}
}
