package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-steps-api/internal/config"
	"github.com/noah-isme/gema-steps-api/internal/dto"
	"github.com/noah-isme/gema-steps-api/internal/handler"
	"github.com/noah-isme/gema-steps-api/internal/middleware"
	"github.com/noah-isme/gema-steps-api/internal/router"
)

type fixedStepService struct{}

func (fixedStepService) GetLadder(_ context.Context, query dto.StepLadderQuery) (dto.StepLadderResponse, bool, error) {
	return dto.StepLadderResponse{AssignmentID: query.AssignmentID, State: "available"}, false, nil
}

func (fixedStepService) SaveDraft(context.Context, uint, uint, dto.DraftSaveRequest) (dto.AttemptResponse, error) {
	return dto.AttemptResponse{}, nil
}

func (fixedStepService) Submit(context.Context, uint, uint) (dto.AttemptResponse, error) {
	return dto.AttemptResponse{}, nil
}

func (fixedStepService) StartAttempt(context.Context, uint, uint) (dto.AttemptResponse, error) {
	return dto.AttemptResponse{}, nil
}

func (fixedStepService) UpdateLock(_ context.Context, assignmentID uint, payload dto.AssignmentLockRequest) (dto.AssignmentLockResponse, error) {
	return dto.AssignmentLockResponse{AssignmentID: assignmentID, Locked: payload.Locked, LockedNow: payload.Locked}, nil
}

const secret = "router-secret"

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "8",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRegisterRoutes(t *testing.T) {
	cfg := config.Config{AppName: "GEMA Steps API", AppEnv: "test", StepsRateLimit: 100, StepsRateWindow: time.Minute}

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		StepHandler:   handler.NewStepHandler(fixedStepService{}, zerolog.Nop()),
		JWTMiddleware: middleware.JWTProtected(secret),
	})

	call := func(method, path, authorization string) *http.Response {
		req := httptest.NewRequest(method, path, nil)
		if method == http.MethodPatch {
			req = httptest.NewRequest(method, path, strings.NewReader(`{"locked":true}`))
			req.Header.Set("Content-Type", "application/json")
		}
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	health := call(http.MethodGet, "/api/v1/health", "")
	require.Equal(t, fiber.StatusOK, health.StatusCode)
	require.Equal(t, cfg.AppName, health.Header.Get("X-Application"))

	require.Equal(t, fiber.StatusOK, call(http.MethodGet, "/metrics", "").StatusCode)
	require.Equal(t, fiber.StatusUnauthorized, call(http.MethodGet, "/api/v2/student/assignments/1/steps", "").StatusCode)
	require.Equal(t, fiber.StatusForbidden, call(http.MethodGet, "/api/v2/student/assignments/1/steps", bearer(t, "teacher")).StatusCode)
	require.Equal(t, fiber.StatusOK, call(http.MethodGet, "/api/v2/student/assignments/1/steps", bearer(t, "student")).StatusCode)
	require.Equal(t, fiber.StatusCreated, call(http.MethodPost, "/api/v2/student/assignments/1/attempts", bearer(t, "student")).StatusCode)

	require.Equal(t, fiber.StatusForbidden, call(http.MethodPatch, "/api/v2/admin/assignments/1/lock", bearer(t, "student")).StatusCode)
	require.Equal(t, fiber.StatusOK, call(http.MethodPatch, "/api/v2/admin/assignments/1/lock", bearer(t, "teacher")).StatusCode)
	require.Equal(t, fiber.StatusOK, call(http.MethodPatch, "/api/v2/admin/assignments/1/lock", bearer(t, "admin")).StatusCode)
}
