package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/bakery-app/config"
	"github.com/yeremiapane/bakery-app/events"
	"github.com/yeremiapane/bakery-app/middlewares"
	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/router"
	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
	"gorm.io/gorm"
)

func main() {
	utils.InitLogger()

	cfg := config.Load()

	// Initialize DB
	db, err := cfg.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// Set gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Broadcast hub: heartbeat + (opsional) relay redis untuk
	// deployment multi-instance
	hub := events.NewHub()
	if cfg.RedisURL != "" {
		relay, err := events.NewRelay(cfg.RedisURL)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect relay: %v", err)
		}
		hub.SetRelay(relay)
		utils.InfoLogger.Println("Event relay connected (multi-instance mode)")
	}
	hub.Start()
	defer hub.Stop()

	// Setup rate limiter (50 requests per second per IP)
	rateLimiter := middlewares.NewRateLimiter(50, 1)

	// Payment gateway opsional; tanpa server key endpoint checkout
	// menolak dengan 503
	var gateway services.CheckoutGateway
	if cfg.MidtransServerKey != "" {
		gateway = services.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransProduction)
	}

	// Setup router
	r := router.SetupRouter(db, hub, gateway)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	// Tangkap SIGINT/SIGTERM supaya hub sempat menutup stream
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		utils.InfoLogger.Println("Shutting down...")
		hub.Stop()
		os.Exit(0)
	}()

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Order{},
		&models.OrderItem{},
		&models.FinancialTransaction{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
