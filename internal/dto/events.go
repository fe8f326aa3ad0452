package dto

import "github.com/google/uuid"

type CandidateImportedEvent struct {
	CandidateID   uuid.UUID `json:"candidate_id"`
	CandidateName string    `json:"candidate_name"`
	PhoneNumber   string    `json:"phone_number"`
	UniqueLink    string    `json:"unique_link"`
}

type CandidateSubmittedEvent struct {
	CandidateID uuid.UUID        `json:"candidate_id"`
	Photos      []SubmittedPhoto `json:"photos"`
}

type SubmittedPhoto struct {
	Slot        int    `json:"slot"`
	ObjectKey   string `json:"object_key"`
	ContentType string `json:"content_type"`
	Meta        string `json:"meta"`
}
