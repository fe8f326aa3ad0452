package entity

import "github.com/google/uuid"

type Photo struct {
	CandidateID uuid.UUID `json:"-"`
	Slot        int       `json:"slot"` // 1..MaxPhotoSlots

	ObjectKey    string  `json:"-"`
	ThumbnailKey *string `json:"-"`
	ContentType  string  `json:"content_type"`
	Size         int64   `json:"size"`

	// Meta is the capture metadata sent with the photo (geolocation, timestamp).
	// It is stored verbatim and never parsed.
	Meta string `json:"meta"`
}

func (p *Photo) HasThumbnail() bool {
	return p.ThumbnailKey != nil && *p.ThumbnailKey != ""
}
