package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"game-match-service/config"
	"game-match-service/handlers"
	"game-match-service/middleware"
	"game-match-service/models"
	"game-match-service/services"
	"game-match-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to parse configuration: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}
	if cfg.GameServiceToken == "" {
		log.Fatal("GAME_SERVICE_TOKEN environment variable not set — service cannot authenticate Gateway")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.GameSession{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Explicit construction, injected into the gateway: no package-level
	// queue or registry singletons.
	sessionService := services.NewSessionService(db)
	registry := services.NewRoomRegistry()
	realtimeService := services.NewRealtimeService(cfg.Game, sessionService, registry)

	app := fiber.New()
	app.Use(middleware.GatewayAuthMiddleware(cfg.GameServiceToken))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-User-ID, X-User-Name, X-Service-Token",
		AllowCredentials: true,
	}))

	handlers.SetupRealtimeRoutes(app, realtimeService)
	handlers.SetupSystemRoutes(app, realtimeService)

	janitor, err := workers.StartQueueJanitor(realtimeService.Queue(), cfg.Game.QueueSweepInterval)
	if err != nil {
		log.Fatalf("failed to start queue janitor: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Match service running on http://localhost:%s", cfg.Port)
	log.Printf("✅ Simulation at %d Hz, win threshold %d", cfg.Game.TickRate, cfg.Game.WinThreshold)
	log.Printf("✅ Queue janitor running (every %s)", cfg.Game.QueueSweepInterval)

	<-ctx.Done()
	log.Println("Shutting down server...")

	_ = janitor.Shutdown()
	realtimeService.Shutdown()
	if err := app.Shutdown(); err != nil {
		log.Errorf("fiber shutdown: %v", err)
	}
}
