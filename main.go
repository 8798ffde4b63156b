package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hunt-points-system/handlers"
	"hunt-points-system/middleware"
	"hunt-points-system/models"
	"hunt-points-system/services"
	"hunt-points-system/utils"
	"hunt-points-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // JSON-only API
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, X-User-Email, X-User-Name, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserClaim{},
		&models.HuntItem{},
		&models.ClaimAttempt{},
		&models.ShopItem{},
		&models.ShopPrizeInstance{},
		&models.Collectible{},
		&models.CollectibleInstance{},
		&models.AdminAuditLog{},
		&models.Notice{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	claimService := services.NewClaimService(db)
	redemptionService := services.NewRedemptionService(db, auditService)
	catalogService := services.NewCatalogService(db, auditService)
	pointsService := services.NewPointsService(db, auditService)
	noticeService := services.NewNoticeService(db, auditService)
	analysisService := services.NewAnalysisService(db)
	leaderboardService := services.NewLeaderboardService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Audit archive export to R2 — optional, skipped when unconfigured.
	switch err := utils.InitR2(); {
	case err == nil:
		archiveInterval := 1 * time.Hour
		if v := os.Getenv("AUDIT_ARCHIVE_INTERVAL"); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				archiveInterval = parsed
			}
		}
		archiveClient := workers.NewAuditArchiveClient(db)
		go workers.PollAuditArchive(ctx, archiveClient, archiveInterval)
		log.Printf("✅ Audit archive worker running (every %s)", archiveInterval)
	case errors.Is(err, utils.ErrR2NotConfigured):
		log.Println("⚠️  R2 credentials not configured — audit archiving disabled")
	default:
		log.Fatal("failed to initialize R2 client:", err)
	}

	analysisService.StartSuspiciousActivitySweep(6 * time.Hour)

	handlers.SetupHuntRoutes(app, claimService, userService)
	handlers.SetupShopRoutes(app, redemptionService, catalogService, userService)
	handlers.SetupPublicRoutes(app, leaderboardService, noticeService)
	handlers.SetupAdminRoutes(app, handlers.AdminServices{
		Users:       userService,
		Catalog:     catalogService,
		Points:      pointsService,
		Redemptions: redemptionService,
		Notices:     noticeService,
		Audit:       auditService,
		Analysis:    analysisService,
	})

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Suspicious-activity sweep scheduled (every 6h)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
