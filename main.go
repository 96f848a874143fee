package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"musicquiz/api"
	"musicquiz/config"
	"musicquiz/handlers"
	"musicquiz/storage"
	"musicquiz/store"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := config.Load()
	cfg.Validate()

	ctx := context.Background()
	st, err := store.NewDynamo(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	media, err := storage.NewS3(ctx, cfg.AWSRegion, cfg.AudioBucket)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "musicquiz",
		ErrorHandler: api.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	h := handlers.New(st, media, cfg)
	handlers.RegisterRoutes(app, h)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
