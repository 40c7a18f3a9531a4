package dto

import (
	"time"

	"github.com/noah-isme/gema-steps-api/internal/models"
	"github.com/noah-isme/gema-steps-api/internal/steps"
)

// StepLadderQuery describes the inputs for computing a student's progress ladder.
type StepLadderQuery struct {
	AssignmentID      uint `validate:"required,gt=0"`
	StudentID         uint `validate:"required,gt=0"`
	Collapsed         bool `query:"collapsed"`
	ForceLock         bool `query:"force_lock"`
	NextButtonEnabled bool `query:"next_button_enabled"`
}

// StepResponse serializes one ladder step.
type StepResponse struct {
	Label  string `json:"label"`
	Text   string `json:"text"`
	Status string `json:"status"`
}

// StepLadderResponse is returned to API clients when viewing assignment progress.
type StepLadderResponse struct {
	AssignmentID uint           `json:"assignment_id"`
	SubmissionID *uint          `json:"submission_id"`
	Attempt      int            `json:"attempt"`
	State        string         `json:"state"`
	Collapsed    bool           `json:"collapsed"`
	Summary      string         `json:"summary"`
	SummaryText  string         `json:"summary_text"`
	Steps        []StepResponse `json:"steps"`
}

// NewStepLadderResponse converts a computed ladder into a DTO.
func NewStepLadderResponse(assignmentID uint, submission *models.Submission, ladder steps.Ladder) StepLadderResponse {
	response := StepLadderResponse{
		AssignmentID: assignmentID,
		State:        string(ladder.State),
		Collapsed:    ladder.Collapsed,
		Summary:      string(ladder.Summary),
		SummaryText:  ladder.Summary.Text(),
		Steps:        make([]StepResponse, 0, len(ladder.Steps)),
	}

	if submission != nil {
		id := submission.ID
		response.SubmissionID = &id
		response.Attempt = submission.Attempt
	}

	for _, step := range ladder.Steps {
		response.Steps = append(response.Steps, StepResponse{
			Label:  string(step.Label),
			Text:   step.Label.Text(),
			Status: string(step.Status),
		})
	}

	return response
}

// DraftSaveRequest carries work a student uploads before turning it in.
type DraftSaveRequest struct {
	Body    string `json:"body" validate:"omitempty,max=20000"`
	FileURL string `json:"file_url" validate:"omitempty,url,max=512"`
}

// AttemptResponse summarizes the state of one submission attempt.
type AttemptResponse struct {
	SubmissionID            uint      `json:"submission_id"`
	AssignmentID            uint      `json:"assignment_id"`
	Attempt                 int       `json:"attempt"`
	Status                  string    `json:"status"`
	HasDraft                bool      `json:"has_draft"`
	MeetsAssignmentCriteria bool      `json:"meets_assignment_criteria"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// NewAttemptResponse converts a submission model into a DTO.
func NewAttemptResponse(model models.Submission) AttemptResponse {
	response := AttemptResponse{
		SubmissionID: model.ID,
		AssignmentID: model.AssignmentID,
		Attempt:      model.Attempt,
		Status:       model.Status,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Draft != nil {
		response.HasDraft = true
		response.MeetsAssignmentCriteria = model.Draft.MeetsAssignmentCriteria
	}

	return response
}

// AssignmentLockRequest replaces the lock settings of an assignment.
type AssignmentLockRequest struct {
	Locked   bool       `json:"locked"`
	UnlockAt *time.Time `json:"unlock_at"`
	LockAt   *time.Time `json:"lock_at"`
}

// AssignmentLockResponse reports the stored lock settings and their effect at the time of the update.
type AssignmentLockResponse struct {
	AssignmentID uint       `json:"assignment_id"`
	Locked       bool       `json:"locked"`
	UnlockAt     *time.Time `json:"unlock_at"`
	LockAt       *time.Time `json:"lock_at"`
	LockedNow    bool       `json:"locked_now"`
}

// NewAssignmentLockResponse converts an assignment model into a DTO.
func NewAssignmentLockResponse(model models.Assignment, now time.Time) AssignmentLockResponse {
	return AssignmentLockResponse{
		AssignmentID: model.ID,
		Locked:       model.Locked,
		UnlockAt:     model.UnlockAt,
		LockAt:       model.LockAt,
		LockedNow:    model.IsLocked(now),
	}
}
