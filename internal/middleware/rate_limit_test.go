package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitIsPerUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(c.QueryInt("user")))
		return c.Next()
	})
	app.Use(RateLimit("steps", 2, time.Minute))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	call := func(user string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?user="+user, nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusNoContent, call("1"))
	require.Equal(t, fiber.StatusNoContent, call("1"))
	require.Equal(t, fiber.StatusTooManyRequests, call("1"))
	require.Equal(t, fiber.StatusNoContent, call("2"))
}
