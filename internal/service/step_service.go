package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-steps-api/internal/dto"
	"github.com/noah-isme/gema-steps-api/internal/models"
	"github.com/noah-isme/gema-steps-api/internal/observability"
	"github.com/noah-isme/gema-steps-api/internal/repository"
	"github.com/noah-isme/gema-steps-api/internal/steps"
)

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrAssignmentLocked indicates the assignment does not accept work right now.
	ErrAssignmentLocked = errors.New("assignment is locked")
	// ErrSubmissionNotFound indicates the student has no attempt for the assignment.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrAttemptClosed indicates the latest attempt was already turned in.
	ErrAttemptClosed = errors.New("attempt already submitted")
	// ErrAttemptOpen indicates the latest attempt has not been turned in yet.
	ErrAttemptOpen = errors.New("current attempt has not been submitted")
	// ErrDraftIncomplete indicates the draft does not meet the assignment criteria.
	ErrDraftIncomplete = errors.New("draft does not meet assignment criteria")
	// ErrAttemptsExhausted indicates the student has used every allowed attempt.
	ErrAttemptsExhausted = errors.New("no attempts remaining")
	// ErrInvalidLockWindow indicates lock_at does not come after unlock_at.
	ErrInvalidLockWindow = errors.New("lock_at must be after unlock_at")
)

// StepService computes submission progress ladders and moves attempts through
// them. UpdateLock changes the assignment lock settings the ladders depend on.
type StepService interface {
	GetLadder(ctx context.Context, query dto.StepLadderQuery) (dto.StepLadderResponse, bool, error)
	SaveDraft(ctx context.Context, assignmentID, studentID uint, payload dto.DraftSaveRequest) (dto.AttemptResponse, error)
	Submit(ctx context.Context, assignmentID, studentID uint) (dto.AttemptResponse, error)
	StartAttempt(ctx context.Context, assignmentID, studentID uint) (dto.AttemptResponse, error)
	UpdateLock(ctx context.Context, assignmentID uint, payload dto.AssignmentLockRequest) (dto.AssignmentLockResponse, error)
}

type stepService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	cache       *redis.Client
	cacheTTL    time.Duration
	sanitizer   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStepService builds the step ladder service. A nil cache disables caching.
func NewStepService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, validate *validator.Validate, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StepService {
	return &stepService{
		assignments: assignments,
		submissions: submissions,
		validator:   validate,
		cache:       cache,
		cacheTTL:    ttl,
		sanitizer:   bluemonday.UGCPolicy(),
		tracer:      otel.Tracer("github.com/noah-isme/gema-steps-api/internal/service/steps"),
		logger:      logger.With().Str("component", "step_service").Logger(),
		now:         time.Now,
	}
}

func (s *stepService) GetLadder(ctx context.Context, query dto.StepLadderQuery) (dto.StepLadderResponse, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.StepLadderResponse{}, false, err
	}

	ctx, span := s.tracer.Start(ctx, "steps.ladder", trace.WithAttributes(
		attribute.Int64("steps.assignment_id", int64(query.AssignmentID)),
		attribute.Int64("steps.student_id", int64(query.StudentID)),
		attribute.Bool("steps.collapsed", query.Collapsed),
	))
	defer span.End()

	cacheKey := ladderCacheKey(query)
	if cached, ok := s.readCache(ctx, cacheKey); ok {
		span.SetAttributes(attribute.Bool("steps.cache_hit", true))
		return cached, true, nil
	}

	assignment, err := s.loadAssignment(ctx, query.AssignmentID)
	if err != nil {
		span.RecordError(err)
		return dto.StepLadderResponse{}, false, err
	}

	submission, err := s.latestSubmission(ctx, query.AssignmentID, query.StudentID)
	if err != nil && !errors.Is(err, ErrSubmissionNotFound) {
		span.RecordError(err)
		return dto.StepLadderResponse{}, false, err
	}

	now := s.now()
	ladder := steps.Build(steps.Input{
		Assignment:      toStepsAssignment(assignment, now),
		Submission:      toStepsSubmission(submission),
		ForceLockStatus: query.ForceLock,
		IsCollapsed:     query.Collapsed,
		Viewer:          steps.ViewerContext{NextButtonEnabled: query.NextButtonEnabled},
	})
	observability.ObserveLadder(string(ladder.State), ladder.Collapsed)
	span.SetAttributes(attribute.String("steps.state", string(ladder.State)))

	response := dto.NewStepLadderResponse(assignment.ID, submission, ladder)
	s.writeCache(ctx, cacheKey, response, s.ladderTTL(assignment, now))

	return response, false, nil
}

func (s *stepService) SaveDraft(ctx context.Context, assignmentID, studentID uint, payload dto.DraftSaveRequest) (dto.AttemptResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttemptResponse{}, err
	}

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}
	if assignment.IsLocked(s.now()) {
		return dto.AttemptResponse{}, ErrAssignmentLocked
	}

	submission, err := s.latestSubmission(ctx, assignmentID, studentID)
	switch {
	case errors.Is(err, ErrSubmissionNotFound):
		submission = &models.Submission{
			AssignmentID: assignmentID,
			StudentID:    studentID,
			Attempt:      1,
			Status:       models.SubmissionStatusUnsubmitted,
		}
		if err := s.submissions.Create(ctx, submission); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return dto.AttemptResponse{}, fmt.Errorf("failed to open attempt: %w", err)
			}
			// a concurrent request opened the first attempt
			if submission, err = s.latestSubmission(ctx, assignmentID, studentID); err != nil {
				return dto.AttemptResponse{}, err
			}
		}
	case err != nil:
		return dto.AttemptResponse{}, err
	}
	if submission.Status != models.SubmissionStatusUnsubmitted {
		return dto.AttemptResponse{}, ErrAttemptClosed
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	fileURL := strings.TrimSpace(payload.FileURL)
	draft := &models.SubmissionDraft{
		SubmissionID:            submission.ID,
		Body:                    body,
		FileURL:                 fileURL,
		MeetsAssignmentCriteria: body != "" || fileURL != "",
	}
	if err := s.submissions.UpsertDraft(ctx, draft); err != nil {
		return dto.AttemptResponse{}, fmt.Errorf("failed to save draft: %w", err)
	}
	submission.Draft = draft

	s.invalidate(ctx, assignmentID, studentID)
	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Uint("student_id", studentID).
		Int("attempt", submission.Attempt).
		Bool("meets_criteria", draft.MeetsAssignmentCriteria).
		Msg("draft saved")

	return dto.NewAttemptResponse(*submission), nil
}

func (s *stepService) Submit(ctx context.Context, assignmentID, studentID uint) (dto.AttemptResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}
	if assignment.IsLocked(s.now()) {
		return dto.AttemptResponse{}, ErrAssignmentLocked
	}

	submission, err := s.latestSubmission(ctx, assignmentID, studentID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}
	if submission.Status != models.SubmissionStatusUnsubmitted {
		return dto.AttemptResponse{}, ErrAttemptClosed
	}
	if submission.Draft == nil || !submission.Draft.MeetsAssignmentCriteria {
		return dto.AttemptResponse{}, ErrDraftIncomplete
	}

	submission.Status = models.SubmissionStatusSubmitted
	submission.FileURL = submission.Draft.FileURL
	if err := s.submissions.Update(ctx, submission); err != nil {
		return dto.AttemptResponse{}, fmt.Errorf("failed to submit attempt: %w", err)
	}

	s.invalidate(ctx, assignmentID, studentID)
	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Uint("student_id", studentID).
		Int("attempt", submission.Attempt).
		Msg("attempt submitted")

	return dto.NewAttemptResponse(*submission), nil
}

func (s *stepService) StartAttempt(ctx context.Context, assignmentID, studentID uint) (dto.AttemptResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	now := s.now()
	if assignment.IsLocked(now) {
		return dto.AttemptResponse{}, ErrAssignmentLocked
	}

	previous, err := s.latestSubmission(ctx, assignmentID, studentID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}
	if previous.Status != models.SubmissionStatusSubmitted && previous.Status != models.SubmissionStatusGraded {
		return dto.AttemptResponse{}, ErrAttemptOpen
	}
	if !steps.AllowNextAttempt(toStepsAssignment(assignment, now), toStepsSubmission(previous)) {
		return dto.AttemptResponse{}, ErrAttemptsExhausted
	}

	next := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Attempt:      previous.Attempt + 1,
		Status:       models.SubmissionStatusUnsubmitted,
	}
	if err := s.submissions.Create(ctx, &next); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AttemptResponse{}, ErrAttemptOpen
		}
		return dto.AttemptResponse{}, fmt.Errorf("failed to open attempt: %w", err)
	}

	s.invalidate(ctx, assignmentID, studentID)
	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Uint("student_id", studentID).
		Int("attempt", next.Attempt).
		Msg("attempt started")

	return dto.NewAttemptResponse(next), nil
}

func (s *stepService) UpdateLock(ctx context.Context, assignmentID uint, payload dto.AssignmentLockRequest) (dto.AssignmentLockResponse, error) {
	if payload.UnlockAt != nil && payload.LockAt != nil && !payload.LockAt.After(*payload.UnlockAt) {
		return dto.AssignmentLockResponse{}, ErrInvalidLockWindow
	}

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentLockResponse{}, err
	}

	assignment.Locked = payload.Locked
	assignment.UnlockAt = payload.UnlockAt
	assignment.LockAt = payload.LockAt
	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentLockResponse{}, fmt.Errorf("failed to update assignment lock: %w", err)
	}

	s.invalidateAssignment(ctx, assignmentID)

	now := s.now()
	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Bool("locked", assignment.Locked).
		Bool("locked_now", assignment.IsLocked(now)).
		Msg("assignment lock updated")

	return dto.NewAssignmentLockResponse(assignment, now), nil
}

func (s *stepService) loadAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *stepService) latestSubmission(ctx context.Context, assignmentID, studentID uint) (*models.Submission, error) {
	submission, err := s.submissions.GetLatestForStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &submission, nil
}

func (s *stepService) readCache(ctx context.Context, key string) (dto.StepLadderResponse, bool) {
	if s.cache == nil {
		return dto.StepLadderResponse{}, false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			observability.ObserveCache("error")
			s.logger.Warn().Err(err).Msg("failed to read step ladder cache")
		} else {
			observability.ObserveCache("miss")
		}
		return dto.StepLadderResponse{}, false
	}

	var response dto.StepLadderResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		observability.ObserveCache("error")
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt step ladder cache entry")
		return dto.StepLadderResponse{}, false
	}

	observability.ObserveCache("hit")
	s.logger.Debug().Str("key", key).Msg("step ladder cache hit")
	return response, true
}

// ladderTTL keeps a cached ladder from outliving the lock state it was built with.
func (s *stepService) ladderTTL(assignment models.Assignment, now time.Time) time.Duration {
	ttl := s.cacheTTL
	if next, ok := assignment.NextLockTransition(now); ok {
		if until := next.Sub(now); until < ttl {
			ttl = until
		}
	}
	return ttl
}

func (s *stepService) writeCache(ctx context.Context, key string, response dto.StepLadderResponse, ttl time.Duration) {
	if s.cache == nil || ttl < time.Millisecond {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store step ladder cache")
	}
}

func (s *stepService) invalidate(ctx context.Context, assignmentID, studentID uint) {
	s.deleteMatching(ctx, ladderCachePrefix(assignmentID, studentID)+"*")
}

func (s *stepService) invalidateAssignment(ctx context.Context, assignmentID uint) {
	s.deleteMatching(ctx, assignmentCachePrefix(assignmentID)+"*")
}

func (s *stepService) deleteMatching(ctx context.Context, pattern string) {
	if s.cache == nil {
		return
	}

	iter := s.cache.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to scan step ladder cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate step ladder cache")
	}
}

func assignmentCachePrefix(assignmentID uint) string {
	return fmt.Sprintf("steps:assignment:%d:", assignmentID)
}

func ladderCachePrefix(assignmentID, studentID uint) string {
	return fmt.Sprintf("%sstudent:%d:", assignmentCachePrefix(assignmentID), studentID)
}

func ladderCacheKey(query dto.StepLadderQuery) string {
	return fmt.Sprintf("%sc%d:f%d:n%d", ladderCachePrefix(query.AssignmentID, query.StudentID),
		boolFlag(query.Collapsed), boolFlag(query.ForceLock), boolFlag(query.NextButtonEnabled))
}

func boolFlag(v bool) int {
	if v {
		return 1
	}
	return 0
}

func toStepsAssignment(assignment models.Assignment, now time.Time) steps.Assignment {
	return steps.Assignment{
		AllowedAttempts: assignment.AllowedAttempts,
		LockInfo:        steps.LockInfo{IsLocked: assignment.IsLocked(now)},
	}
}

func toStepsSubmission(submission *models.Submission) *steps.Submission {
	if submission == nil {
		return nil
	}

	result := &steps.Submission{
		State:   submission.Status,
		Attempt: submission.Attempt,
	}
	if submission.Draft != nil {
		result.SubmissionDraft = &steps.Draft{MeetsAssignmentCriteria: submission.Draft.MeetsAssignmentCriteria}
	}
	return result
}
