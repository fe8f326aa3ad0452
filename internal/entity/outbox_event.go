package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCandidateImported  EventType = "candidate.imported"
	EventCandidateSubmitted EventType = "candidate.submitted"
)

type OutboxEvent struct {
	ID          uuid.UUID  `json:"id"`
	AggregateID uuid.UUID  `json:"aggregate_id"` // candidate id
	EventType   EventType  `json:"event_type"`
	Payload     []byte     `json:"payload"`
	Status      Status     `json:"status"` // pending, processing, processed, failed
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	RetryCount  int        `json:"retry_count"`
}
