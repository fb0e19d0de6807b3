package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"upvote-club/config"
	"upvote-club/handlers"
	"upvote-club/middleware"
	"upvote-club/services"
	"upvote-club/store"
	"upvote-club/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	defer pool.Close()

	db, err := store.OpenGorm(pool)
	if err != nil {
		log.Fatal("failed to open gorm:", err)
	}

	engine, err := services.NewEngine(ctx, cfg, store.NewGormStore(db))
	if err != nil {
		log.Fatal("failed to build services:", err)
	}
	defer engine.Close()

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed, no exceptions
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOriginsString(),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupRoutes(app, engine)

	sched, err := services.StartSweepScheduler(ctx, engine.Sweeper, cfg)
	if err != nil {
		log.Fatal("failed to start sweep scheduler:", err)
	}

	workers.NewNotificationWorker(engine.Dispatcher, cfg.NotifyPollInterval).Start(ctx)

	if cfg.ProfileSyncURL != "" {
		workers.NewProfileSyncWorker(engine.Store, cfg.ProfileSyncURL, cfg.ServiceToken).Start(ctx)
	} else {
		log.Println("⚠️  PROFILE_SYNC_URL not set, profile activity sync disabled")
	}

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%d", cfg.Port)
	log.Printf("✅ Notifications via %s transport (max %d attempts)", cfg.NotifyTransport, cfg.NotifyMaxAttempts)
	log.Println("✅ GatewayAuthMiddleware enforced globally, all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", cfg.AllowedOriginsString())

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := sched.Shutdown(); err != nil {
		log.Printf("⚠️ Scheduler shutdown: %v", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
}
