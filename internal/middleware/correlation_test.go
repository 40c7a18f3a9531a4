package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestCorrelationIDPropagatesIncomingHeader(t *testing.T) {
	var fromContext string
	app := fiber.New()
	app.Use(CorrelationID(zerolog.Nop()))
	app.Get("/", func(c *fiber.Ctx) error {
		fromContext = CorrelationIDFromContext(c.UserContext())
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-123", resp.Header.Get("X-Correlation-ID"))
	require.Equal(t, "req-123", fromContext)
}

func TestCorrelationIDGeneratesWhenMissing(t *testing.T) {
	var fromLocals string
	app := fiber.New()
	app.Use(CorrelationID(zerolog.Nop()))
	app.Get("/", func(c *fiber.Ctx) error {
		fromLocals = GetCorrelationID(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotEmpty(t, fromLocals)
	require.Equal(t, fromLocals, resp.Header.Get("X-Correlation-ID"))
}
