package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unity-gaming/config"
	"unity-gaming/database"
	"unity-gaming/handlers"
	"unity-gaming/middleware"
	"unity-gaming/services"
	"unity-gaming/utils"
	"unity-gaming/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	db, err := database.Open(database.Options{
		Driver:   cfg.DatabaseDriver,
		DSN:      cfg.DatabaseURL,
		LogLevel: cfg.DBLogLevel,
	})
	if err != nil {
		log.Fatal(err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var blobs services.BlobStore
	if cfg.R2Enabled() {
		r2, err := utils.NewR2Store(ctx, utils.R2Options{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		blobs = r2
		log.Printf("☁️  Uploads go to R2 bucket %s", cfg.R2Bucket)
	} else {
		local, err := utils.NewLocalStore(cfg.UploadDir, "/uploads")
		if err != nil {
			log.Fatal("failed to ensure upload dir:", err)
		}
		blobs = local
		log.Printf("📁 Uploads go to local directory %s", cfg.UploadDir)
	}

	startingBalance, _ := cfg.StartingBalanceDecimal()
	ledger := services.NewLedgerStore(db)
	wallets := services.NewWalletService(db, ledger, startingBalance)
	tournaments := services.NewTournamentService(db)
	users := services.NewUserService(db)
	svc := handlers.Services{
		DB:            db,
		Wallets:       wallets,
		Tournaments:   tournaments,
		Registrations: services.NewRegistrationService(db, wallets, tournaments),
		Videos:        services.NewVideoService(db, blobs),
		Social:        services.NewSocialService(db),
		Matchmaking:   services.NewMatchmakingService(db, nil),
		Users:         users,
	}

	var verifiers []middleware.TokenVerifier
	if cfg.JWTSecret != "" {
		verifiers = append(verifiers, middleware.NewJWTVerifier(cfg.JWTSecret))
	}
	if cfg.AuthServiceURL != "" {
		verifiers = append(verifiers, &middleware.AuthServiceVerifier{
			Client: services.NewAuthServiceClient(cfg.AuthServiceURL, cfg.GatewayToken),
		})
	}

	if cfg.SeedSampleData {
		if err := services.SeedSampleUsers(ctx, db, wallets, time.Now()); err != nil {
			log.Printf("⚠️  Sample user seed failed: %v", err)
		}
	}

	scheduler, err := tournaments.StartLifecycleScheduler(ctx, cfg.TournamentStatusInterval)
	if err != nil {
		log.Fatal("failed to start tournament scheduler:", err)
	}
	go workers.PollLedger(ctx, workers.NewLedgerAuditor(ledger), cfg.LedgerAuditInterval)
	if cfg.ProfileSyncURL != "" {
		workers.NewProfileSyncWorker(db, users, cfg.ProfileSyncURL, cfg.ProfileSyncToken, cfg.ProfileSyncInterval).Start(ctx)
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.TrimmedOrigins(),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Service-Token, X-User-ID, X-User-Name, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	if !cfg.R2Enabled() {
		app.Static("/uploads", cfg.UploadDir)
	}
	handlers.Setup(app, svc, handlers.RouteOptions{
		Auth: middleware.AuthOptions{
			GatewayToken: cfg.GatewayToken,
			Verifiers:    verifiers,
		},
		SeedTournaments: cfg.SeedSampleData,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ CORS configured for origins: %s", cfg.TrimmedOrigins())

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("⚠️  Server shutdown: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("⚠️  Scheduler shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
