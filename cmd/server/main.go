package main

import (
	"log"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/api"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/config"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/database"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/payments"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/services"
	"github.com/lolinsolito-lab/VoxLux-sub002/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Initialize logging
	logging.InitLogging()

	// Initialize database
	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Redis is optional; the webhook replay guard degrades without it
	redisClient := database.InitRedis(cfg)

	// Wire dependencies explicitly; nothing lives as an ambient singleton
	store := database.NewStore(db)
	gateway := payments.NewClient(cfg)
	mailer := services.NewBrevoService(cfg)

	bonuses := services.NewBonusService(store)
	checkout := services.NewCheckoutService(store, gateway)
	fulfillment := services.NewFulfillmentService(store, bonuses, mailer, cfg.BonusWindowHours)
	activation := services.NewActivationService(store, gateway, bonuses, mailer, cfg.RecoveryLookback, cfg.BonusWindowHours)
	replay := services.NewReplayGuard(redisClient)

	handler := api.NewHandler(store, checkout, fulfillment, activation, bonuses, replay,
		cfg.StripeWebhookSecret, cfg.AdminAPIToken)

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	// Create Gin engine
	r := gin.Default()

	// Setup routes
	handler.SetupRoutes(r)

	// Start server
	logging.Infof("Starting server on port %s", cfg.Port)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
