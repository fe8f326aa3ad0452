package dto

import (
	"io"

	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
)

// ImportedCandidate is one line of the import summary handed back to the admin.
type ImportedCandidate struct {
	CandidateName string `json:"candidateName"`
	PhoneNumber   string `json:"phoneNumber"`
	UniqueLink    string `json:"uniqueLink"`
}

type Submission struct {
	Details entity.Details
	Photos  []PhotoUpload
}

type PhotoUpload struct {
	Slot        int
	ContentType string
	Data        []byte
	Meta        string
}

type PhotoObject struct {
	Body        io.ReadCloser
	ContentType string
}
