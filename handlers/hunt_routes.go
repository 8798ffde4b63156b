// handlers/hunt_routes.go
package handlers

import (
	"hunt-points-system/middleware"
	"hunt-points-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupHuntRoutes(app *fiber.App, claimService *services.ClaimService, userService *services.UserService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/hunt/claim", func(c *fiber.Ctx) error {
		var req struct {
			Identifier string `json:"identifier"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		// First authenticated contact creates the user row.
		if _, err := userService.EnsureUser(callerEmail(c), callerName(c)); err != nil {
			return fail(c, err)
		}

		result, err := claimService.ClaimHuntItem(callerEmail(c), req.Identifier)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"success":      true,
			"item_name":    result.ItemName,
			"description":  result.Description,
			"points":       result.Points,
			"total_points": result.TotalPoints,
		})
	})

	secured.Get("/account", func(c *fiber.Ctx) error {
		profile, err := userService.GetProfile(callerEmail(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "profile": profile})
	})

	secured.Put("/account/display-name", func(c *fiber.Ctx) error {
		var req struct {
			DisplayName string `json:"display_name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		user, err := userService.SetDisplayName(callerEmail(c), req.DisplayName)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "user": user})
	})

	secured.Put("/account/chat-handle", func(c *fiber.Ctx) error {
		var req struct {
			ChatHandle string `json:"chat_handle"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		user, err := userService.SetChatHandle(callerEmail(c), req.ChatHandle)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "user": user})
	})

	secured.Post("/account/secondary-email", func(c *fiber.Ctx) error {
		var req struct {
			Email string `json:"email"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		user, err := userService.LinkSecondaryEmail(callerEmail(c), req.Email)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "user": user})
	})
}
