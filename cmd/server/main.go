package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doorcraft/backend/docs"
	"github.com/doorcraft/backend/internal/config"
	"github.com/doorcraft/backend/internal/database"
	"github.com/doorcraft/backend/internal/handlers"
	"github.com/doorcraft/backend/internal/messaging"
	"github.com/doorcraft/backend/internal/metrics"
	mW "github.com/doorcraft/backend/internal/middleware"
	"github.com/doorcraft/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Dealer Order Placement API
// @version 1.0
// @description Prepaid wallet order placement for door and window dealers
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")
	viper.BindEnv("database.auto_migrate", "DATABASE_AUTO_MIGRATE")

	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	if viper.GetString("jwt.secret_key") == "" {
		log.Fatal("JWT_SECRET_KEY must be set")
	}

	docs.SwaggerInfo.Host = viper.GetString("swagger.host")
	if docs.SwaggerInfo.Host == "" {
		docs.SwaggerInfo.Host = "localhost:8080"
	}

	placementConfig := config.LoadPlacementConfig()

	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	placementMetrics := metrics.NewPlacementMetrics(prometheus.DefaultRegisterer)

	// Notification channels, all best effort
	var channels []services.NotificationChannel
	if redisClient != nil {
		channels = append(channels, services.NewRedisQueueChannel(redisClient, placementConfig.NotificationQueue))
	}
	if placementConfig.NotificationWebhookURL != "" {
		channels = append(channels, services.NewWebhookChannel(placementConfig.NotificationWebhookURL, nil))
	}
	kafkaClient := messaging.NewKafkaClient(placementConfig.KafkaBrokers)
	if kafkaClient.Enabled() {
		writer := kafkaClient.NewWriter(placementConfig.KafkaTopic)
		defer writer.Close()
		channels = append(channels, services.NewKafkaChannel(writer))
		log.Printf("Publishing placed orders to Kafka topic %s", placementConfig.KafkaTopic)
	}
	dispatcher := services.NewNotificationDispatcher(placementConfig.NotificationTimeout, placementMetrics, channels...)

	settingsService := services.NewSettingsService(db, redisClient, placementConfig.SettingsCacheTTL, placementConfig.DefaultResetDay)
	orderService := services.NewOrderService(db, settingsService, dispatcher, placementConfig, placementMetrics)
	orderHandler := handlers.NewOrderHandler(orderService, services.NewLabelService(256))

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.IdempotencyHeader},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			status = "database unavailable"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Post("/orders", orderHandler.PlaceOrder)
			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{orderNumber}", orderHandler.GetOrder)
			r.Get("/orders/{orderNumber}/label", orderHandler.OrderLabel)

			r.Get("/wallet", orderHandler.WalletBalance)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	// Placements that committed before shutdown still get their notification
	dispatcher.Wait()

	log.Println("Server stopped")
}
