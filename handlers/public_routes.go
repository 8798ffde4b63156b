// handlers/public_routes.go
package handlers

import (
	"hunt-points-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPublicRoutes(app *fiber.App, leaderboardService *services.LeaderboardService, noticeService *services.NoticeService) {
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		entries, err := leaderboardService.GetLeaderboard()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "leaderboard": entries})
	})

	app.Get("/notices", func(c *fiber.Ctx) error {
		notices, err := noticeService.ListNotices(true)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "notices": notices})
	})
}
