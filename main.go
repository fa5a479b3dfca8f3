// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"visitcounter/api/config"
	"visitcounter/api/database"
	"visitcounter/api/handlers"
	"visitcounter/api/middleware"
	"visitcounter/api/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Initialize the Cosmos DB signed REST client (for counters) ---
	cosmosClient, err := database.NewCosmosClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Cosmos DB client: %v", err)
	}

	// --- Initialize ClickHouse (optional, for the visit event trail) ---
	// Assigned only when enabled so a disabled trail stays a nil interface.
	var visitTrail handlers.VisitTrail
	if cfg.TrackingEnabled() {
		chClient, err := database.NewClickHouseDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize ClickHouse database: %v", err)
		}
		defer chClient.Close()
		visitTrail = store.NewVisitStore(chClient)
	} else {
		log.Println("Visit event trail disabled (no CLICKHOUSE_HOST configured).")
	}

	// --- Initialize Stores ---
	counterStore := store.NewCounterStore(cosmosClient)
	totalStrategy, err := store.NewTotalStrategy(cfg.TotalStrategy, counterStore, cosmosClient)
	if err != nil {
		log.Fatalf("Failed to select total strategy: %v", err)
	}
	log.Printf("Total visitor count strategy: %s", cfg.TotalStrategy)

	// --- Initialize Handlers ---
	countHandlers := handlers.NewCountHandlers(counterStore, totalStrategy, visitTrail)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigin))
	r.Use(middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		// The counting endpoint is method-agnostic: the embedding page may
		// fire a GET beacon or a POST.
		api.GET("/count", countHandlers.CountVisit)
		api.POST("/count", countHandlers.CountVisit)

		api.GET("/stats/daily-visits", countHandlers.GetDailyVisits)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Visit counter API starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Visit counter API failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
