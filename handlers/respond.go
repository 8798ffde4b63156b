package handlers

import (
	"errors"
	"log"

	"hunt-points-system/services"

	"github.com/gofiber/fiber/v2"
)

// fail maps a service error onto the JSON error envelope.
func fail(c *fiber.Ctx, err error) error {
	var op *services.OpError
	if errors.As(err, &op) {
		return c.Status(op.Status).JSON(fiber.Map{"error": op.Message})
	}
	log.Printf("❌ unhandled error on %s: %v", c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

// actor captures the privileged caller plus the request metadata audit
// entries record.
func actor(c *fiber.Ctx) services.Actor {
	email, _ := c.Locals("user_email").(string)
	return services.Actor{
		Email:     email,
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

func callerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("user_email").(string)
	return email
}

func callerName(c *fiber.Ctx) string {
	name, _ := c.Locals("user_name").(string)
	return name
}
