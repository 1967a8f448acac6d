package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fastship/fastship/pkg/common"
	"github.com/fastship/fastship/pkg/infra/jwt"
)

// principalID returns the authenticated subject as a UUID, if the request
// carried a valid token for the given role.
func principalID(c *fiber.Ctx, role string) (uuid.UUID, bool) {
	gotRole, ok := c.Locals(common.RoleContextKey).(string)
	if !ok || gotRole != role {
		return uuid.Nil, false
	}
	subject, ok := c.Locals(common.PrincipalContextKey).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func claimsFromContext(c *fiber.Ctx) (*jwt.Claims, bool) {
	claims, ok := c.Locals(common.ClaimsContextKey).(*jwt.Claims)
	return claims, ok && claims != nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
}
