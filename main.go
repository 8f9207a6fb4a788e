package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"badminton-score-system/handlers"
	"badminton-score-system/middleware"
	"badminton-score-system/models"
	"badminton-score-system/services"
	"badminton-score-system/utils"
	"badminton-score-system/workers"

	"github.com/glebarez/sqlite"
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
		AppName: "badminton-score-system",
	})

	// 🔐 GLOBAL: single-device tool, loopback callers only unless explicitly opened up
	app.Use(middleware.LocalOnlyMiddleware())

	// Load allowed origins from environment variable
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
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Cache-Control",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Postgres when DATABASE_URL is set, otherwise a local SQLite file.
	var db *gorm.DB
	var err error
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	} else {
		path := utils.Getenv("SQLITE_PATH", "scoreboard.db")
		log.Printf("⚠️  DATABASE_URL not set, using local SQLite file: %s", path)
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.StateSlot{},
		&models.PreferenceSlot{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	matchService := services.NewMatchService(db)
	prefService := services.NewPreferenceService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshotWorker := workers.NewSnapshotWorker(db, matchService, 30*time.Second)
	snapshotWorker.Start(ctx)

	matchService.StartAutosaveScheduler()

	handlers.SetupMatchRoutes(app, matchService)
	handlers.SetupPreferenceRoutes(app, prefService)

	port := utils.Getenv("PORT", "5300")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Snapshot Worker running (every 30s)")
	log.Println("✅ Autosave scheduler running (every 1m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	matchService.Flush()
}
