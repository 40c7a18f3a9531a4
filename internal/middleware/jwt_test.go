package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "steps-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func jwtApp(captured *fiber.Map) *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(testSecret))
	app.Get("/", func(c *fiber.Ctx) error {
		(*captured)["user_id"] = c.Locals("user_id")
		(*captured)["user_role"] = c.Locals("user_role")
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestJWTProtectedSetsLocals(t *testing.T) {
	captured := fiber.Map{}
	app := jwtApp(&captured)

	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub":  "42",
		"role": "Student",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, uint(42), captured["user_id"])
	require.Equal(t, "student", captured["user_role"])
}

func TestJWTProtectedAcceptsNumericSubject(t *testing.T) {
	captured := fiber.Map{}
	app := jwtApp(&captured)

	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": 7, "role": "student"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, uint(7), captured["user_id"])
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	captured := fiber.Map{}
	app := jwtApp(&captured)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"wrong secret": "Bearer " + signToken(t, jwt.SigningMethodHS256, "other", jwt.MapClaims{
			"sub": "1",
		}),
		"expired": "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}),
		"no subject": "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"role": "student",
		}),
		"fractional subject": "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": 1.9,
		}),
		"huge subject": "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": 1e30,
		}),
		"overflowing string subject": "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "184467440737095516160",
		}),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
	require.Empty(t, captured)
}
