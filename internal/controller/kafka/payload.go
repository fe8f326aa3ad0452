package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/andreyxaxa/Candidate-Verifier/internal/dto"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
)

// permanentError marks a message that can never be processed; it is
// committed so it does not block the partition.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

func decodeImported(value []byte) (dto.CandidateImportedEvent, error) {
	var payload dto.CandidateImportedEvent
	if err := json.Unmarshal(value, &payload); err != nil {
		return payload, &permanentError{fmt.Errorf("decodeImported - json.Unmarshal: %w", err)}
	}

	return payload, nil
}

func decodeSubmitted(value []byte) (dto.CandidateSubmittedEvent, error) {
	var payload dto.CandidateSubmittedEvent
	if err := json.Unmarshal(value, &payload); err != nil {
		return payload, &permanentError{fmt.Errorf("decodeSubmitted - json.Unmarshal: %w", err)}
	}

	return payload, nil
}

func unknownEventType(eventType string) error {
	return &permanentError{fmt.Errorf("%w: %q", errs.ErrUnknownEventType, eventType)}
}
