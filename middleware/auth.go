// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	RoleAdmin     = "admin"
	RoleVolunteer = "volunteer"
)

// UserContextMiddleware extracts the caller identity the Gateway resolved
// from the session: email, display name and roles, forwarded as headers.
// Secured paths (/s/...) require an identity.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := strings.ToLower(strings.TrimSpace(c.Get("X-User-Email")))
		name := strings.TrimSpace(c.Get("X-User-Name"))
		rolesStr := c.Get("X-User-Roles")

		if strings.HasPrefix(c.Path(), "/s/") && email == "" {
			log.Printf("❌ [USER_CTX] X-User-Email required but missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-Email: request must come through gateway with auth context",
			})
		}

		var roles []string
		for _, r := range strings.Split(rolesStr, ",") {
			r = strings.ToLower(strings.TrimSpace(r))
			if r != "" {
				roles = append(roles, r)
			}
		}

		c.Locals("user_email", email)
		c.Locals("user_name", name)
		c.Locals("user_roles", roles)

		return c.Next()
	}
}

// HasRole reports whether the request carries the given role claim.
func HasRole(c *fiber.Ctx, role string) bool {
	roles, _ := c.Locals("user_roles").([]string)
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RequireRoles rejects callers holding none of the listed roles.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, role := range roles {
			if HasRole(c, role) {
				return c.Next()
			}
		}
		log.Printf("🚫 [RBAC] %v lacks required role (%s) for %s", c.Locals("user_email"), strings.Join(roles, "|"), c.Path())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient privileges",
		})
	}
}
