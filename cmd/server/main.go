package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tropicaldog17/coinwatch/internal/db"
	"github.com/tropicaldog17/coinwatch/internal/handlers"
	"github.com/tropicaldog17/coinwatch/internal/logger"
	"github.com/tropicaldog17/coinwatch/internal/models"
	"github.com/tropicaldog17/coinwatch/internal/repositories"
	"github.com/tropicaldog17/coinwatch/internal/scheduler"
	"github.com/tropicaldog17/coinwatch/internal/services"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	zlog, err := logger.New()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zlog.Sync()

	// Database connection
	config := db.NewConfig()
	database, err := db.Connect(config)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Test database connection
	if err := database.Health(); err != nil {
		zlog.Fatal("database health check failed", zap.Error(err))
	}
	zlog.Info("database connection established")

	if err := database.Migrate(&models.PriceRecord{}); err != nil {
		zlog.Fatal("schema migration failed", zap.Error(err))
	}

	// Ingestion configuration
	catalog := models.ParseCatalog(os.Getenv("COINS"))
	interval := getDurationEnv("INGEST_INTERVAL", 2*time.Hour)
	fetchTimeout := getDurationEnv("PRICE_FETCH_TIMEOUT", 10*time.Second)
	cycleTimeout := getDurationEnv("INGEST_CYCLE_TIMEOUT", time.Minute)
	zlog.Info("ingestion configured",
		zap.Strings("coins", catalog),
		zap.Duration("interval", interval))

	// Initialize services
	priceRepo := repositories.NewPriceRepository(database)
	provider := services.NewCoinGeckoProvider(fetchTimeout)
	ingestionService := services.NewIngestionService(provider, priceRepo, catalog, zlog)
	queryService := services.NewQueryService(priceRepo)

	// Background ingestion schedule
	sched := scheduler.New(interval, cycleTimeout, ingestionService.RunOnce, zlog)
	sched.Start()
	defer sched.Stop()

	// Initialize handlers
	marketHandler := handlers.NewMarketHandler(queryService)

	// Setup HTTP server
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "coinwatch",
		})
	}).Methods(http.MethodGet)

	// API endpoints
	router.HandleFunc("/stats", marketHandler.HandleStats).Methods(http.MethodGet)
	router.HandleFunc("/deviation", marketHandler.HandleDeviation).Methods(http.MethodGet)

	// CORS middleware
	corsHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}

	// Get port from environment
	port := getEnv("SERVER_PORT", "8080")

	// Start server
	zlog.Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, corsHandler(router)); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid %s %q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
