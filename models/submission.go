package models

import "time"

// SubmissionStatus is the closed set of workflow states. A submission is
// created pending and ends in exactly one of approved or rejected; the
// terminal states are never left again.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Terminal reports whether no further transition is permitted from s.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

type Submission struct {
	SubmissionID   int              `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	SubmissionCode string           `gorm:"column:submission_code;unique" json:"submission_code"`
	PersonnelID    int              `gorm:"column:personnel_id;index" json:"personnel_id"`
	SubmittedBy    int              `gorm:"column:submitted_by;index" json:"submitted_by"`
	SubmissionType string           `gorm:"column:submission_type" json:"submission_type"`
	Status         SubmissionStatus `gorm:"column:status" json:"status"`
	SubmissionDate time.Time        `gorm:"column:submission_date" json:"submission_date"`
	ReviewedBy     *int             `gorm:"column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes    *string          `gorm:"column:review_notes" json:"review_notes,omitempty"`
	ReviewedAt     *time.Time       `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`

	// Relations
	Personnel *Personnel `gorm:"foreignKey:PersonnelID" json:"personnel,omitempty"`
	Submitter *User      `gorm:"foreignKey:SubmittedBy" json:"submitter,omitempty"`
	Reviewer  *User      `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}
