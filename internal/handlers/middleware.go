package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/services"
)

const actorKey = "actor"

type AuthMiddleware struct {
	tokens     services.TokenManager
	cookieName string
}

func NewAuthMiddleware(tokens services.TokenManager, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, cookieName: cookieName}
}

// tokenFrom reads a bearer token, falling back to the session cookie.
func (m *AuthMiddleware) tokenFrom(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Cookies(m.cookieName)
}

func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := m.tokenFrom(c)
		if token == "" {
			return apperrors.NewUnauthorized("authentication required")
		}

		claims, err := m.tokens.Parse(token)
		if err != nil {
			return apperrors.NewUnauthorized("invalid or expired token")
		}

		c.Locals(actorKey, services.Actor{ID: claims.UserID, Role: claims.Role})
		return c.Next()
	}
}

// Optional attaches the caller when a valid token is present and lets
// anonymous requests through.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := m.tokenFrom(c); token != "" {
			if claims, err := m.tokens.Parse(token); err == nil {
				c.Locals(actorKey, services.Actor{ID: claims.UserID, Role: claims.Role})
			}
		}
		return c.Next()
	}
}

func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := actorFrom(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("insufficient role")
	}
}

func actorFrom(c *fiber.Ctx) (services.Actor, bool) {
	actor, ok := c.Locals(actorKey).(services.Actor)
	return actor, ok
}

func mustActor(c *fiber.Ctx) (services.Actor, error) {
	actor, ok := actorFrom(c)
	if !ok {
		return services.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return actor, nil
}
