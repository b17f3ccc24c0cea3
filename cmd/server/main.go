package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/cache"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/config"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/database"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/routes"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/services"
	chatws "github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/websocket"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer func() {
			_ = redisClient.Close()
		}()
	} else {
		log.Println("REDIS_ADDR not set, rate limiting disabled")
	}

	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	hub, scheduledService := routes.RegisterRoutes(app, cfg, database.DB, redisClient)

	go runDispatcher(scheduledService, hub, cfg.DispatchInterval)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// runDispatcher delivers due scheduled messages on a fixed interval and fans
// the sent messages out over the websocket hub.
func runDispatcher(scheduledService *services.ScheduledMessageService, hub *chatws.Hub, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		deliveries, err := scheduledService.ProcessDue(ctx, time.Now().UTC())
		cancel()
		if err != nil {
			log.Printf("scheduled dispatch: %v", err)
			continue
		}
		for i := range deliveries {
			hub.BroadcastDelivery(&deliveries[i])
		}
	}
}
