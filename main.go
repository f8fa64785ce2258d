package main

import (
	"log"
	"net/http"
	"os"

	"staycal/config"
	"staycal/jobs"
	"staycal/models"
	"staycal/routes"
	"staycal/services"
	"staycal/services/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: không load được file .env, sử dụng biến môi trường có sẵn: %v", err)
	}

	router, m, c, err := config.InitApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if err := config.DB.AutoMigrate(&models.Property{}, &models.Unit{}, &models.AvailabilityEntry{}, &models.ExternalCalendarSource{}, &models.Booking{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ledgerService := services.NewLedgerService(config.DB, logger.NewDefaultLogger(logger.InfoLevel))
	syncService := services.NewSyncService(services.SyncServiceOptions{
		DB:     config.DB,
		Ledger: ledgerService,
		Melody: m,
		Cache:  &services.RedisCacheInvalidator{Ctx: config.Ctx, Client: config.RedisClient},
		Logger: logger.NewDefaultLogger(logger.InfoLevel),
	})

	jobs.SetCalendarSyncer(syncService)
	if err := jobs.InitCronJobs(c, config.DB); err != nil {
		log.Fatalf("Failed to initialize cron jobs: %v", err)
	}

	config.InitWebSocket(router, m)

	routes.SetupRoutes(router, config.DB, config.RedisClient, ledgerService, syncService, m)

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8083"
	}

	log.Println("Server starting on port " + port + "...")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
