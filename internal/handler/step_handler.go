package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-steps-api/internal/dto"
	"github.com/noah-isme/gema-steps-api/internal/service"
	"github.com/noah-isme/gema-steps-api/internal/utils"
)

// StepHandler exposes the submission progress ladder and the attempt actions behind it.
type StepHandler struct {
	service service.StepService
	logger  zerolog.Logger
}

// NewStepHandler creates a new handler instance.
func NewStepHandler(service service.StepService, logger zerolog.Logger) *StepHandler {
	return &StepHandler{
		service: service,
		logger:  logger.With().Str("component", "step_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Extra handlers
// (rate limiting, auth) run before the ladder endpoint.
func (h *StepHandler) Register(router fiber.Router, ladderGuards ...fiber.Handler) {
	ladder := append(append([]fiber.Handler{}, ladderGuards...), h.getLadder)
	router.Get("/assignments/:id/steps", ladder...)
	router.Put("/assignments/:id/draft", h.saveDraft)
	router.Post("/assignments/:id/submit", h.submit)
	router.Post("/assignments/:id/attempts", h.startAttempt)
}

// RegisterAdmin attaches the staff routes that change what ladders show.
func (h *StepHandler) RegisterAdmin(router fiber.Router) {
	router.Patch("/assignments/:id/lock", h.updateLock)
}

func (h *StepHandler) getLadder(c *fiber.Ctx) error {
	studentID, assignmentID, targetErr := actionTarget(c)
	if targetErr != nil {
		return utils.SendError(c, targetErr.Code, targetErr.Message)
	}

	var query dto.StepLadderQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	query.AssignmentID = assignmentID
	query.StudentID = studentID

	ladder, cacheHit, err := h.service.GetLadder(c.UserContext(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, ladder, "submission steps retrieved", fiber.Map{"cache_hit": cacheHit})
}

func (h *StepHandler) saveDraft(c *fiber.Ctx) error {
	studentID, assignmentID, targetErr := actionTarget(c)
	if targetErr != nil {
		return utils.SendError(c, targetErr.Code, targetErr.Message)
	}

	var payload dto.DraftSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	attempt, err := h.service.SaveDraft(c.UserContext(), assignmentID, studentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "draft saved", attempt)
}

func (h *StepHandler) submit(c *fiber.Ctx) error {
	studentID, assignmentID, targetErr := actionTarget(c)
	if targetErr != nil {
		return utils.SendError(c, targetErr.Code, targetErr.Message)
	}

	attempt, err := h.service.Submit(c.UserContext(), assignmentID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempt submitted", attempt)
}

func (h *StepHandler) startAttempt(c *fiber.Ctx) error {
	studentID, assignmentID, targetErr := actionTarget(c)
	if targetErr != nil {
		return utils.SendError(c, targetErr.Code, targetErr.Message)
	}

	attempt, err := h.service.StartAttempt(c.UserContext(), assignmentID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt started", attempt)
}

func (h *StepHandler) updateLock(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignmentLockRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	lock, err := h.service.UpdateLock(c.UserContext(), assignmentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment lock updated", lock)
}

// actionTarget resolves the calling student and the assignment in the path.
func actionTarget(c *fiber.Ctx) (uint, uint, *fiber.Error) {
	studentID, err := extractUserID(c)
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return studentID, assignmentID, nil
}

func (h *StepHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAssignmentLocked):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAttemptClosed),
		errors.Is(err, service.ErrAttemptOpen),
		errors.Is(err, service.ErrAttemptsExhausted):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrDraftIncomplete), errors.Is(err, service.ErrInvalidLockWindow):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &validationErrors):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(validationErrors))
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("path", c.Path()).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
