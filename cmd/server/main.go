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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/platebite/backend/docs"
	"github.com/platebite/backend/internal/cache"
	"github.com/platebite/backend/internal/database"
	"github.com/platebite/backend/internal/handlers"
	"github.com/platebite/backend/internal/loyalty"
	mW "github.com/platebite/backend/internal/middleware"
	"github.com/platebite/backend/internal/services"
	"github.com/platebite/backend/internal/store"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title PlateBite Loyalty API
// @version 1.0
// @description Loyalty points ledger and tier engine for the PlateBite food-ordering platform
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.SetEnvPrefix("")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.BindEnv("loyalty.recent_limit", "LOYALTY_RECENT_LIMIT")
	viper.BindEnv("loyalty.silver_threshold", "LOYALTY_SILVER_THRESHOLD")
	viper.BindEnv("loyalty.gold_threshold", "LOYALTY_GOLD_THRESHOLD")
	viper.BindEnv("loyalty.platinum_threshold", "LOYALTY_PLATINUM_THRESHOLD")

	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)

	viper.SetDefault("loyalty.recent_limit", loyalty.DefaultRecentLimit)
	viper.SetDefault("loyalty.silver_threshold", loyalty.SilverThreshold)
	viper.SetDefault("loyalty.gold_threshold", loyalty.GoldThreshold)
	viper.SetDefault("loyalty.platinum_threshold", loyalty.PlatinumThreshold)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "PlateBite Loyalty API"
	docs.SwaggerInfo.Description = "Loyalty points ledger and tier engine for the PlateBite food-ordering platform"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Initialize services
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	ledgerStore := store.NewPostgresStore(db)
	tierPolicy := loyalty.NewTierPolicy(
		viper.GetInt64("loyalty.silver_threshold"),
		viper.GetInt64("loyalty.gold_threshold"),
		viper.GetInt64("loyalty.platinum_threshold"),
	)
	accountService := loyalty.NewAccountService(ledgerStore, tierPolicy, viper.GetInt("loyalty.recent_limit"))

	balanceCache := cache.NewBalanceCache(redisClient)
	eventPublisher := services.NewEventPublisher(redisClient)
	voucherService := services.NewVoucherService(accountService, redisClient)
	authService := services.NewAuthService(db, redisClient, accountService)

	loyaltyHandler := handlers.NewLoyaltyHandler(accountService, balanceCache, eventPublisher)
	voucherHandler := handlers.NewVoucherHandler(voucherService)

	// Initialize auth middleware with Redis
	mW.InitAuthMiddleware(redisClient)

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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Route("/loyalty", func(r chi.Router) {
				r.Post("/accounts", loyaltyHandler.CreateAccount)
				r.Get("/accounts", loyaltyHandler.ListAccounts)
				r.Get("/accounts/active", loyaltyHandler.ListActiveAccounts)
				r.Get("/accounts/tier/{tier}", loyaltyHandler.ListAccountsByTier)
				r.Get("/accounts/{id}", loyaltyHandler.GetAccountByID)
				r.Delete("/accounts/{id}", loyaltyHandler.DeleteAccount)
				r.Put("/accounts/{id}/deactivate", loyaltyHandler.DeactivateAccount)
				r.Put("/accounts/{id}/reinstate", loyaltyHandler.ReinstateAccount)

				r.Get("/users/{userId}/account", loyaltyHandler.GetAccount)
				r.Get("/users/{userId}/balance", loyaltyHandler.GetBalance)
				r.Get("/users/{userId}/details", loyaltyHandler.GetAccountDetails)

				r.Post("/add-points", loyaltyHandler.AddPoints)
				r.Post("/redeem-points", loyaltyHandler.RedeemPoints)

				r.Get("/redemptions/{id}/voucher", voucherHandler.IssueVoucher)
				r.Post("/vouchers/claim", voucherHandler.ClaimVoucher)
			})
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
		WriteTimeout: 15 * time.Second,
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

	log.Println("Server stopped")
}
