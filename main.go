package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tablewise/reserve-app/config"
	"github.com/tablewise/reserve-app/database"
	"github.com/tablewise/reserve-app/middlewares"
	"github.com/tablewise/reserve-app/models"
	"github.com/tablewise/reserve-app/realtime"
	"github.com/tablewise/reserve-app/router"
	"github.com/tablewise/reserve-app/services"
	"github.com/tablewise/reserve-app/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InfoLogger = logrus.New()
	utils.ErrorLogger = logrus.New()

	utils.InfoLogger.SetOutput(os.Stdout)
	utils.ErrorLogger.SetOutput(os.Stderr)

	utils.InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	utils.ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	if err := database.SeedAdmin(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed admin user: %v", err)
	}

	// Aktifkan hub notifikasi sebelum server menerima request;
	// sebelum ini Publish hanya no-op
	realtime.Init()
	defer realtime.Shutdown()

	// Tandai deposit pending yang kedaluwarsa di background
	paymentMonitor := services.NewPaymentMonitor(db)
	paymentMonitor.Start()
	defer paymentMonitor.Stop()

	// Rate limiter global per IP
	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Reservation{},
		&models.Review{},
		&models.Payment{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
