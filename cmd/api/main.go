package main

import (
	"fmt"
	"log"

	"campus-facilities-api/config"
	"campus-facilities-api/handlers"
	"campus-facilities-api/middleware"
	"campus-facilities-api/models"
	"campus-facilities-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get sql db handle: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.SensorReading{}); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	// Redis cache (degraded mode tolerated: list caching and live stream off)
	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, running without cache: %v", err)
	}

	// Auth
	authService := services.NewAuthService(cfg.JWT)

	// Regression model. A missing artifact is fatal to prediction and alert
	// evaluation only; raw ingestion keeps persisting readings.
	var predictor *services.ThresholdPredictor
	var alertService *services.AlertService
	model, err := services.LoadRidgeModel(cfg.Model.Path)
	if err != nil {
		log.Printf("Model load failed, predict/evaluate disabled: %v", err)
	} else {
		notifier, err := services.NewNotifier(cfg.Notify)
		if err != nil {
			log.Fatalf("Failed to initialize notifier: %v", err)
		}
		predictor = services.NewThresholdPredictor(model, cfg.Alert)
		alertService = services.NewAlertService(predictor, notifier, cfg.Alert.SustainSeconds)
	}

	readingService := services.NewReadingService(db, cache, predictor, alertService)
	ticketService := services.NewTicketService(services.NewServiceNowClient(cfg.ServiceNow))

	// Handlers
	authHandler := handlers.NewAuthHandler(db, authService)
	readingHandler := handlers.NewReadingHandler(readingService, cache)
	alertHandler := handlers.NewAlertHandler(readingService)
	ticketHandler := handlers.NewTicketHandler(ticketService)

	// Initialize Gin router
	router := gin.Default()
	router.Use(middleware.SetupCORS(cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":       "UP",
			"message":      "Campus Facilities API is running",
			"model_loaded": readingService.CanEvaluate(),
			"cache":        cache.Available(),
		})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(authService))
	{
		api.POST("/readings", readingHandler.CreateReading)
		api.GET("/readings", readingHandler.GetReadings)
		api.GET("/readings/:id", readingHandler.GetReading)

		api.POST("/predict", alertHandler.Predict)
		api.POST("/alerts/evaluate/:id", alertHandler.Evaluate)

		api.POST("/tickets", ticketHandler.CreateTicket)
		api.GET("/tickets", ticketHandler.GetTickets)
		api.GET("/tickets/:number", ticketHandler.GetTicketStatus)
	}

	router.GET("/ws/live", handlers.LiveWebSocket(cache, authService))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
