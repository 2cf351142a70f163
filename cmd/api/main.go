package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/regdocgpt/regdocgpt-api/internal/config"
	"github.com/regdocgpt/regdocgpt-api/internal/database"
	"github.com/regdocgpt/regdocgpt-api/internal/handler"
	"github.com/regdocgpt/regdocgpt-api/internal/middleware"
	"github.com/regdocgpt/regdocgpt-api/internal/models"
	"github.com/regdocgpt/regdocgpt-api/internal/repository"
	"github.com/regdocgpt/regdocgpt-api/internal/router"
	"github.com/regdocgpt/regdocgpt-api/internal/service"
	"github.com/regdocgpt/regdocgpt-api/pkg/password"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Admin{}, &models.AuditEntry{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, audit query caching disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	hasher := password.NewPBKDF2Hasher()

	auditService := service.NewAuditService(auditRepo, redisClient, cfg.AuditCacheTTL, validate, logger)
	authService := service.NewAuthService(userRepo, adminRepo, hasher, auditService, cfg.AdminInviteCode, validate, logger)
	profileService := service.NewProfileService(userRepo, adminRepo, hasher, auditService, validate, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	auditHandler := handler.NewAuditHandler(auditService, logger)
	profileHandler := handler.NewProfileHandler(profileService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:    authHandler,
		AuditHandler:   auditHandler,
		ProfileHandler: profileHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
