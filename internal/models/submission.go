package models

import "time"

// Submission represents one attempt by a student at an assignment.
type Submission struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	AssignmentID uint             `gorm:"not null;index:idx_submission_attempt,unique" json:"assignment_id"`
	StudentID    uint             `gorm:"not null;index:idx_submission_attempt,unique" json:"student_id"`
	Attempt      int              `gorm:"not null;default:1;index:idx_submission_attempt,unique" json:"attempt"`
	FileURL      string           `gorm:"size:512" json:"file_url"`
	Status       string           `gorm:"size:32;not null" json:"status"`
	Grade        *float64         `json:"grade"`
	Feedback     string           `gorm:"type:text" json:"feedback"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Draft        *SubmissionDraft `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"draft,omitempty"`
	Assignment   Assignment       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      Student          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

const (
	// SubmissionStatusUnsubmitted indicates an attempt that has been started but not turned in.
	SubmissionStatusUnsubmitted = "unsubmitted"
	// SubmissionStatusSubmitted indicates the submission has been uploaded but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "graded"
)

// SubmissionDraft holds uploaded work that has not been turned in yet.
type SubmissionDraft struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	SubmissionID            uint      `gorm:"not null;uniqueIndex" json:"submission_id"`
	FileURL                 string    `gorm:"size:512" json:"file_url"`
	Body                    string    `gorm:"type:text" json:"body"`
	MeetsAssignmentCriteria bool      `gorm:"not null;default:false" json:"meets_assignment_criteria"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}
