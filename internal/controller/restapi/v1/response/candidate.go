package response

import (
	"fmt"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/dto"
	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
)

type Upload struct {
	Message    string                  `json:"message" example:"Upload successful"`
	Candidates []dto.ImportedCandidate `json:"candidates"`
}

// PublicCandidate is what a candidate sees when the form is prefilled.
type PublicCandidate struct {
	entity.Details

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type CandidateSummary struct {
	ID    string `json:"id"`
	Token string `json:"token"`

	entity.Details

	Status      string     `json:"status"`
	PhotoCount  int        `json:"photoCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	SubmittedAt *time.Time `json:"submittedAt"`
}

type CandidateList struct {
	Candidates []CandidateSummary `json:"candidates"`
}

type CandidateDetail struct {
	CandidateSummary

	Photos []Photo `json:"photos"`
}

type Photo struct {
	Slot         int    `json:"slot"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
	Meta         string `json:"meta"`
	URL          string `json:"url"`
	HasThumbnail bool   `json:"hasThumbnail"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

func NewPublicCandidate(c *entity.Candidate) PublicCandidate {
	return PublicCandidate{
		Details:   c.Details,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
}

func NewCandidateSummary(c *entity.Candidate) CandidateSummary {
	return CandidateSummary{
		ID:          c.ID.String(),
		Token:       c.Token,
		Details:     c.Details,
		Status:      string(c.Status),
		PhotoCount:  c.PhotoCount,
		CreatedAt:   c.CreatedAt,
		SubmittedAt: c.SubmittedAt,
	}
}

func NewCandidateDetail(c *entity.Candidate) CandidateDetail {
	d := CandidateDetail{
		CandidateSummary: NewCandidateSummary(c),
		Photos:           make([]Photo, 0, len(c.Photos)),
	}
	d.PhotoCount = len(c.Photos)

	for _, p := range c.Photos {
		url := PhotoURL(c.ID.String(), p.Slot)

		photo := Photo{
			Slot:         p.Slot,
			ContentType:  p.ContentType,
			Size:         p.Size,
			Meta:         p.Meta,
			URL:          url,
			HasThumbnail: p.HasThumbnail(),
		}
		if photo.HasThumbnail {
			photo.ThumbnailURL = url + "?variant=thumbnail"
		}

		d.Photos = append(d.Photos, photo)
	}

	return d
}

// PhotoURL is the admin download path of one photo slot.
func PhotoURL(candidateID string, slot int) string {
	return fmt.Sprintf("/admin/candidate/%s/photo/%d", candidateID, slot)
}
