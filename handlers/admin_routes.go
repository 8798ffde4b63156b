// handlers/admin_routes.go
package handlers

import (
	"strconv"

	"hunt-points-system/middleware"
	"hunt-points-system/services"

	"github.com/gofiber/fiber/v2"
)

// AdminServices bundles everything the admin console touches.
type AdminServices struct {
	Users       *services.UserService
	Catalog     *services.CatalogService
	Points      *services.PointsService
	Redemptions *services.RedemptionService
	Notices     *services.NoticeService
	Audit       *services.AuditService
	Analysis    *services.AnalysisService
}

func SetupAdminRoutes(app *fiber.App, svcs AdminServices) {
	admin := app.Group("/s/admin",
		middleware.UserContextMiddleware(),
		middleware.RequireRoles(middleware.RoleAdmin),
	)

	// --- Hunt items ---

	admin.Get("/hunt-items", func(c *fiber.Ctx) error {
		items, err := svcs.Catalog.ListHuntItems()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "items": items})
	})

	admin.Post("/hunt-items", func(c *fiber.Ctx) error {
		var input services.HuntItemInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		item, err := svcs.Catalog.CreateHuntItem(actor(c), input)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "item": item})
	})

	admin.Put("/hunt-items/:id", func(c *fiber.Ctx) error {
		var patch services.HuntItemPatch
		if err := c.BodyParser(&patch); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		item, err := svcs.Catalog.UpdateHuntItem(actor(c), c.Params("id"), patch)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "item": item})
	})

	admin.Delete("/hunt-items/:id", func(c *fiber.Ctx) error {
		if err := svcs.Catalog.DeleteHuntItem(actor(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	admin.Post("/hunt-items/:id/adjust-points", func(c *fiber.Ctx) error {
		var req struct {
			Delta int `json:"delta"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		result, err := svcs.Points.MassAdjustPoints(actor(c), c.Params("id"), req.Delta)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "result": result})
	})

	// --- Shop items ---

	admin.Get("/shop-items", func(c *fiber.Ctx) error {
		items, err := svcs.Catalog.ListShopItems(false)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "items": items})
	})

	admin.Post("/shop-items", func(c *fiber.Ctx) error {
		var input services.ShopItemInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		item, err := svcs.Catalog.CreateShopItem(actor(c), input)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "item": item})
	})

	admin.Put("/shop-items/:id", func(c *fiber.Ctx) error {
		var patch services.ShopItemPatch
		if err := c.BodyParser(&patch); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		item, err := svcs.Catalog.UpdateShopItem(actor(c), c.Params("id"), patch)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "item": item})
	})

	admin.Delete("/shop-items/:id", func(c *fiber.Ctx) error {
		if err := svcs.Catalog.DeleteShopItem(actor(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	// --- Collectibles ---

	admin.Get("/collectibles", func(c *fiber.Ctx) error {
		cols, err := svcs.Catalog.ListCollectibles(false)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "collectibles": cols})
	})

	admin.Post("/collectibles", func(c *fiber.Ctx) error {
		var input services.CollectibleInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		col, err := svcs.Catalog.CreateCollectible(actor(c), input)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "collectible": col})
	})

	admin.Put("/collectibles/:id", func(c *fiber.Ctx) error {
		var patch services.CollectiblePatch
		if err := c.BodyParser(&patch); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		col, err := svcs.Catalog.UpdateCollectible(actor(c), c.Params("id"), patch)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "collectible": col})
	})

	admin.Delete("/collectibles/:id", func(c *fiber.Ctx) error {
		if err := svcs.Catalog.DeleteCollectible(actor(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	// --- Notices ---

	admin.Get("/notices", func(c *fiber.Ctx) error {
		notices, err := svcs.Notices.ListNotices(false)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "notices": notices})
	})

	admin.Post("/notices", func(c *fiber.Ctx) error {
		var input services.NoticeInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		notice, err := svcs.Notices.CreateNotice(actor(c), input)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "notice": notice})
	})

	admin.Put("/notices/:id", func(c *fiber.Ctx) error {
		var input services.NoticeInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		notice, err := svcs.Notices.UpdateNotice(actor(c), c.Params("id"), input)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "notice": notice})
	})

	admin.Delete("/notices/:id", func(c *fiber.Ctx) error {
		if err := svcs.Notices.DeleteNotice(actor(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	// --- Users ---

	admin.Get("/users", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		users, err := svcs.Users.SearchUsers(c.Query("q", ""), limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "users": users})
	})

	admin.Post("/users/:id/claims", func(c *fiber.Ctx) error {
		var req struct {
			HuntItemID string `json:"hunt_item_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.HuntItemID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hunt_item_id is required"})
		}
		if err := svcs.Points.GrantHuntItem(actor(c), c.Params("id"), req.HuntItemID); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	admin.Post("/users/:id/points/redeem", func(c *fiber.Ctx) error {
		var req struct {
			Amount int `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		newBalance, err := svcs.Points.RedeemPoints(actor(c), c.Params("id"), req.Amount)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "new_balance": newBalance})
	})

	admin.Put("/users/:id/points", func(c *fiber.Ctx) error {
		var req struct {
			Points int `json:"points"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := svcs.Points.SetPoints(actor(c), c.Params("id"), req.Points); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	admin.Delete("/users/:id/claim-attempts", func(c *fiber.Ctx) error {
		removed, err := svcs.Points.ClearClaimAttempts(actor(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "attempts_removed": removed})
	})

	admin.Delete("/users/:id/prizes/:instanceId", func(c *fiber.Ctx) error {
		if err := svcs.Redemptions.RemoveShopPrizeInstance(actor(c), c.Params("id"), c.Params("instanceId")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	// --- Audit & analysis ---

	admin.Get("/audit-logs", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "50"))
		filter := services.AuditLogFilter{
			AdminEmail:      c.Query("admin_email"),
			TargetUserEmail: c.Query("target_user_email"),
			Action:          c.Query("action"),
			ResourceType:    c.Query("resource_type"),
		}
		logs, total, err := svcs.Audit.ListAuditLogs(filter, page, size)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "logs": logs, "total": total, "page": page})
	})

	admin.Get("/analysis/suspicious", func(c *fiber.Ctx) error {
		report, err := svcs.Analysis.AnalyzeClaims()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "report": report})
	})
}
