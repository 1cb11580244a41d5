package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SOULGPT/brandorb/cache"
	"github.com/SOULGPT/brandorb/handlers"
	"github.com/SOULGPT/brandorb/middleware"
	"github.com/SOULGPT/brandorb/models"
	"github.com/SOULGPT/brandorb/services"
	"github.com/SOULGPT/brandorb/utils"
	"github.com/SOULGPT/brandorb/workers"

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
		BodyLimit: 20 * 1024 * 1024, // creatives cap out well under 20MB
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
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
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Name, X-User-Roles, X-Service-Token, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.UserProfile{},
		&models.InventoryItem{},
		&models.XPGrant{},
		&models.MissionCompletion{},
		&models.UserLocation{},
		&models.AntiCheatEvent{},
		&models.BrandOrb{},
		&models.OrbCollection{},
		&models.Campaign{},
		&models.Clue{},
		&models.Reward{},
		&models.CampaignAnalytics{},
		&models.CampaignUser{},
		&models.HeatmapPoint{},
		&models.UserProgress{},
		&models.ClueCompletion{},
		&models.Mission{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	appCache := cache.NewFromEnv()

	movementService := services.NewMovementService(db)
	progressionService := services.NewProgressionService(db)
	orbService := services.NewOrbService(db, appCache)
	analyticsService := services.NewAnalyticsService(db, appCache)
	clueService := services.NewClueService(db)
	campaignService := services.NewCampaignService(db)
	missionService := services.NewMissionService(db)

	// --- CONFIGURE Profile Service Details ---
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	orbServiceToken := os.Getenv("ORB_SERVICE_TOKEN")
	if orbServiceToken == "" {
		log.Fatal("ORB_SERVICE_TOKEN environment variable not set")
	}
	// --- END CONFIG ---

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewProfileSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", orbServiceToken)
	syncWorker.Start(ctx)

	go workers.PollOrbExpiry(ctx, orbService, 30*time.Second)

	campaignService.StartCampaignScheduler()

	// ✅ Setup routes — enforced Gateway auth + consistent /s/ prefix
	handlers.SetupLocationRoutes(app, movementService, progressionService)
	handlers.SetupOrbRoutes(app, orbService, progressionService, analyticsService)
	handlers.SetupCampaignRoutes(app, campaignService, clueService, analyticsService, progressionService, orbService)
	handlers.SetupProgressionRoutes(app, progressionService, missionService)
	handlers.SetupAdminRoutes(app, movementService, progressionService, campaignService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Profile Sync Worker running")
	log.Println("✅ Orb expiry sweeper running (every 30s)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
