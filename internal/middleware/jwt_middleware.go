package middleware

import (
	"strings"

	"backoffice/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Keys under which AuthRequired stores token claims in fiber locals.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
)

var (
	errNoAuthHeader  = errors.New("authorization header is required")
	errBadAuthScheme = errors.New("authorization header format must be 'Bearer <token>'")
)

// AuthRequired is a route-level handler that admits only requests carrying a
// valid bearer token. Mount it per route or per sub-group, never on a bare prefix.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return unauthorized(c, err.Error(), nil)
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			log.WithError(err).WithField("path", c.Path()).Info("JWT validation failed")
			return unauthorized(c, "invalid or expired token", err)
		}

		for _, key := range []string{LocalUserID, LocalEmail, LocalRole} {
			c.Locals(key, claims[key])
		}
		return c.Next()
	}
}

// Actor returns the email of the authenticated admin, or "" on public routes.
func Actor(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalEmail).(string)
	return email
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errNoAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
		return "", errBadAuthScheme
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(c *fiber.Ctx, message string, cause error) error {
	body := fiber.Map{"message": message, "code": "unauthorized"}
	if cause != nil {
		body["error"] = cause.Error()
	}
	return c.Status(fiber.StatusUnauthorized).JSON(body)
}
