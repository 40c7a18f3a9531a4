package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-steps-api/internal/middleware"
)

func extractUserID(c *fiber.Ctx) (uint, error) {
	value := c.Locals("user_id")
	if value == nil {
		return 0, fmt.Errorf("missing user context")
	}

	switch v := value.(type) {
	case uint:
		if v == 0 {
			return 0, fmt.Errorf("invalid user context")
		}
		return v, nil
	case int:
		if v <= 0 {
			return 0, fmt.Errorf("invalid user context")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil || parsed == 0 {
			return 0, fmt.Errorf("invalid user context")
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("invalid user context")
	}
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(parsed), nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}
