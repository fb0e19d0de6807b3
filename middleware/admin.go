// middleware/admin.go
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

const RoleAdmin = "admin"

// RequireRole rejects callers whose X-User-Roles lacks role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !HasRole(c, role) {
			log.Printf("🚫 [USER_CTX] %s lacks role %q for %s", UserID(c), role, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "insufficient role",
			})
		}
		return c.Next()
	}
}
