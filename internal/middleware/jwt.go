package middleware

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-steps-api/internal/utils"
)

// JWTProtected returns a middleware that validates HMAC-signed bearer tokens
// and exposes the subject and role as user_id / user_role locals.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}))

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "authorization header missing", nil)
		}

		const bearer = "bearer "
		if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid authorization header", nil)
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid token", nil)
		}

		userID, ok := userIDFromClaims(claims)
		if !ok {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid token claims", nil)
		}
		c.Locals("user_id", userID)
		if role := roleFromClaims(claims); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}

func userIDFromClaims(claims jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"sub", "student_id", "user_id"} {
		if value, ok := claims[key]; ok {
			if id, err := normalizeUserID(value); err == nil && id > 0 {
				return id, true
			}
		}
	}
	return 0, false
}

// maxNumericSubject is the largest integer a JSON number carries exactly.
const maxNumericSubject = 1 << 53

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 || v > maxNumericSubject || v != math.Trunc(v) {
			return 0, fmt.Errorf("invalid subject %v", v)
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, strconv.IntSize)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type %T", value)
	}
}

func roleFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		switch v := claims[key].(type) {
		case string:
			if role := strings.ToLower(strings.TrimSpace(v)); role != "" {
				return role
			}
		case []interface{}:
			for _, item := range v {
				if str, ok := item.(string); ok {
					if role := strings.ToLower(strings.TrimSpace(str)); role != "" {
						return role
					}
				}
			}
		}
	}
	return ""
}
