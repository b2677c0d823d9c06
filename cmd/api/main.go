package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/meetsync-team/meetsync/pkg/validator"

	"github.com/meetsync-team/meetsync/internal/adapter/handler"
	"github.com/meetsync-team/meetsync/internal/adapter/repository"
	"github.com/meetsync-team/meetsync/internal/infrastructure/cache"
	"github.com/meetsync-team/meetsync/internal/infrastructure/database"
	"github.com/meetsync-team/meetsync/internal/infrastructure/external/google"
	httpmw "github.com/meetsync-team/meetsync/internal/infrastructure/http/middleware"
	"github.com/meetsync-team/meetsync/internal/usecase/callback"
	"github.com/meetsync-team/meetsync/internal/usecase/crmsync"
	"github.com/meetsync-team/meetsync/internal/usecase/matcher"
	"github.com/meetsync-team/meetsync/internal/usecase/payload"
	"github.com/meetsync-team/meetsync/internal/usecase/relay"
	"github.com/meetsync-team/meetsync/pkg/config"
	"github.com/meetsync-team/meetsync/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(echomw.Recover())
	// Permissive CORS: webhook senders and browser dashboards call from
	// arbitrary origins. The middleware also answers OPTIONS preflights.
	e.Use(echomw.CORS())

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	log.Println("Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("Running migrations (development only)...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	log.Println("Connecting to Redis...")
	redisStore, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisStore.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	meetingTypeRepo := repository.NewMeetingTypeRepository(db)
	scenarioRepo := repository.NewScenarioRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)

	// Credential keystore backed by database-side encryption functions
	keystore := database.NewKeystore(db)

	// Google token refresh
	tokenManager := google.NewTokenManager(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		keystore,
		integrationRepo,
		logger,
	)

	// Usecases
	matcherService := matcher.NewService(scenarioRepo, meetingTypeRepo, logger)
	assembler := payload.NewService(
		meetingRepo,
		meetingTypeRepo,
		scenarioRepo,
		integrationRepo,
		userRepo,
		keystore,
		tokenManager,
		cfg.Relay.CallbackBaseURL,
		logger,
	)
	crmService := crmsync.NewService(integrationRepo, keystore, cfg.Pipedrive.BaseURL, logger)
	relayService := relay.NewService(
		webhookRepo,
		meetingRepo,
		matcherService,
		assembler,
		cfg.Relay.OrgForwardTimeout,
		logger,
	)
	callbackService := callback.NewService(meetingRepo, crmService, logger)

	// Auth middleware with cached session resolution
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)
	authMW := httpmw.NewAuthMiddleware(jwtManager, userRepo, redisStore, logger)

	// Handlers
	webhookHandler := handler.NewWebhookHandler(relayService, logger)
	callbackHandler := handler.NewCallbackHandler(callbackService, logger)
	crmHandler := handler.NewCrmHandler(crmService, logger)
	meetingHandler := handler.NewMeetingHandler(matcherService, assembler, logger)
	adminHandler := handler.NewAdminHandler(relayService, logger)

	router := handler.NewRouter(cfg, authMW, webhookHandler, callbackHandler, crmHandler, meetingHandler, adminHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		log.Printf("Environment: %s", cfg.Server.Environment)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
