package middleware

import (
	"github.com/gofiber/fiber/v2"

	"asrama/internal/pkg/authz"
)

// RequirePermission rejects callers whose role may not perform act on obj.
// Dorm scope and ownership are checked by the services.
func RequirePermission(authorizer *authz.Authorizer, obj, act string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return Unauthorized("User not found")
		}

		if !authorizer.Can(user.Role, obj, act) {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}
