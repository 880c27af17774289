package main

import (
	"log"
	"net/http"
	"os"

	_ "esecretary/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"esecretary/internal/auth"
	"esecretary/internal/cache"
	"esecretary/internal/config"
	"esecretary/internal/db"
	"esecretary/internal/handler"
	"esecretary/internal/model"
	"esecretary/internal/repository"
	"esecretary/internal/router"
	"esecretary/internal/service"
)

// @title E-Secretary API
// @version 1.0
// @description Meeting productivity API with Google Calendar integration, transcript ingestion, and automation webhooks.
// @host localhost:3001
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()

	gormDB, err := db.NewPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Meeting{},
			&model.Session{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Meeting{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	sessionRepo := repository.NewSessionRepository(gormDB)
	meetingRepo := repository.NewMeetingRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	sessionRegistry := auth.NewSessionRegistry(sessionRepo)

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionRegistry, jwtService, service.NewGoogleVerifier())
	oauthService := service.NewOAuthService(userRepo, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	calendarService := service.NewCalendarService(oauthService, meetingRepo, cacheClient)
	transcriptService := service.NewTranscriptService(cfg.FirefliesAPIKey, cacheClient)
	meetingService := service.NewMeetingService(meetingRepo)
	webhookService := service.NewWebhookService(meetingRepo, cfg.AutomationWebhookURL, cfg.BackendURL+"/api/webhook/callback")

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, oauthService, cfg.DashboardURL)
	meetingHandler := handler.NewMeetingHandler(meetingService)
	calendarHandler := handler.NewCalendarHandler(oauthService, calendarService)
	transcriptHandler := handler.NewTranscriptHandler(transcriptService)
	webhookHandler := handler.NewWebhookHandler(webhookService)

	// Register routes
	limiter := router.Register(
		e,
		cfg,
		authHandler,
		meetingHandler,
		calendarHandler,
		transcriptHandler,
		webhookHandler,
	)
	defer limiter.Stop()

	log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
