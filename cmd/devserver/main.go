// Command devserver runs an in-memory verification backend for local
// development, so the client flow can be exercised end to end without the
// real platform API. Submitted sessions are auto-reviewed on a schedule to
// simulate admin turnaround.
package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"

	"github.com/ridelink/kycflow/internal/verifytest"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	gin.SetMode(gin.DebugMode)
	router := gin.Default()

	// Configure CORS for the local web frontend
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	server := verifytest.New()
	server.Register(router)

	// Auto-review submitted sessions so the awaiting-decision screen
	// resolves during local testing
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(15).Seconds().Do(func() {
		if reviewed := server.ReviewSweep(); reviewed > 0 {
			log.Printf("auto-reviewed %d session(s)", reviewed)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule review sweep: %v", err)
	}
	scheduler.StartAsync()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("verification dev server running on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
