package entity

// CandidateStatus is the lifecycle state of a candidate record.
// The only transition is Pending -> Submitted.
type CandidateStatus string

const (
	CandidatePending   CandidateStatus = "Pending"
	CandidateSubmitted CandidateStatus = "Submitted"
)

// Status is the delivery state of an outbox event.
type Status string

const (
	Pending    Status = "pending"
	Processing Status = "processing"
	Processed  Status = "processed"
	Failed     Status = "failed"
)
