// handlers/shop_routes.go
package handlers

import (
	"hunt-points-system/middleware"
	"hunt-points-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupShopRoutes(app *fiber.App, redemptionService *services.RedemptionService, catalogService *services.CatalogService, userService *services.UserService) {
	// Public catalog views.
	app.Get("/shop", func(c *fiber.Ctx) error {
		items, err := catalogService.ListShopItems(true)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "items": items})
	})

	app.Get("/collectibles", func(c *fiber.Ctx) error {
		cols, err := catalogService.ListCollectibles(true)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "collectibles": cols})
	})

	secured := app.Group("/s", middleware.UserContextMiddleware())

	// Self-service collectible purchase.
	secured.Post("/collectibles/:id/redeem", func(c *fiber.Ctx) error {
		if _, err := userService.EnsureUser(callerEmail(c), callerName(c)); err != nil {
			return fail(c, err)
		}
		result, err := redemptionService.RedeemCollectible(callerEmail(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"success":     true,
			"instance_id": result.InstanceID,
			"collectible": result.ItemName,
			"cost":        result.Cost,
			"new_balance": result.NewBalance,
		})
	})

	// Booth operations: volunteers and admins acting on another user.
	staff := secured.Group("/staff", middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleVolunteer))

	staff.Post("/shop/:id/redeem", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}
		result, err := redemptionService.RedeemShopItem(actor(c), c.Params("id"), req.UserID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"success":     true,
			"instance_id": result.InstanceID,
			"item":        result.ItemName,
			"cost":        result.Cost,
			"new_balance": result.NewBalance,
		})
	})

	staff.Post("/collectibles/instances/:instanceId/use", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}
		if err := redemptionService.UseCollectibleInstance(actor(c), req.UserID, c.Params("instanceId")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})
}
