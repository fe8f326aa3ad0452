package entity

import (
	"time"

	"github.com/google/uuid"
)

const MaxPhotoSlots = 6

type Candidate struct {
	ID    uuid.UUID `json:"id"`
	Token string    `json:"token"`

	Details

	Photos     []Photo `json:"photos,omitempty"`
	PhotoCount int     `json:"photo_count"`

	Status      CandidateStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
}

// Details holds the fields imported from the spreadsheet and re-submitted by the candidate.
type Details struct {
	ClientName                 string `json:"clientName"`
	SubClientName              string `json:"subClientName"`
	CandidateName              string `json:"candidateName"`
	EmployeeID                 string `json:"employeeId"`
	PhoneNumber                string `json:"phoneNumber"`
	AlternatePhone             string `json:"alternatePhone"`
	Address                    string `json:"address"`
	Pincode                    string `json:"pincode"`
	AreaName                   string `json:"areaName"`
	City                       string `json:"city"`
	State                      string `json:"state"`
	POSStartDate               string `json:"posStartDate"`
	POSEndDate                 string `json:"posEndDate"`
	ResidentType               string `json:"residentType"`
	RelationshipWithRespondent string `json:"relationshipWithRespondent"`
	TypeOfID                   string `json:"typeOfID"`
}

func (c *Candidate) IsSubmitted() bool {
	return c.Status == CandidateSubmitted
}
