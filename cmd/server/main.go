package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mompick/backend/internal/auth"
	"github.com/mompick/backend/internal/cache"
	"github.com/mompick/backend/internal/database"
	"github.com/mompick/backend/internal/detailcache"
	"github.com/mompick/backend/internal/facility"
	"github.com/mompick/backend/internal/handlers"
	"github.com/mompick/backend/internal/logger"
	"github.com/mompick/backend/internal/middleware"
	"github.com/mompick/backend/internal/notify"
	"github.com/mompick/backend/internal/push"
	"github.com/mompick/backend/internal/storage"
	"github.com/mompick/backend/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Structured logging
	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	log.Println("=== MomPick backend starting ===")

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize auth service
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Fatalf("JWT_SECRET environment variable is required")
	}
	authService := auth.NewService(jwtSecret)

	// Optional request tracing, exported over OTLP HTTP
	sampleRate := 1.0
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			sampleRate = f
		}
	}
	tracerProvider, err := telemetry.Initialize(telemetry.Config{
		ServiceName:  "mompick-backend",
		Environment:  os.Getenv("ENVIRONMENT"),
		OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),
		Enabled:      os.Getenv("OTLP_ENDPOINT") != "",
		SampleRate:   sampleRate,
	})
	if err != nil {
		log.Printf("Warning: tracing not available: %v", err)
	}

	// Initialize blob storage for review images and the facility detail cache
	blobs, err := storage.NewS3Store(
		os.Getenv("AWS_REGION"),
		os.Getenv("AWS_BUCKET"),
		os.Getenv("CDN_BASE_URL"),
	)
	if err != nil {
		log.Fatalf("Failed to initialize S3 storage: %v", err)
	}

	// Check S3 access (skip for development)
	if err := blobs.CheckBucketAccess(context.Background()); err != nil {
		log.Printf("Warning: S3 bucket access failed: %v", err)
		log.Println("Continuing without S3 - image uploads and the detail cache will fail")
	}

	// Optional Redis for review-stat aggregates
	var redisClient *cache.RedisClient
	if host := os.Getenv("REDIS_HOST"); host != "" {
		redisClient, err = cache.NewRedisClient(host, os.Getenv("REDIS_PORT"), os.Getenv("REDIS_PASSWORD"))
		if err != nil {
			log.Printf("Warning: Redis not available: %v", err)
			log.Println("Continuing without Redis - stats are computed per request")
		}
	}

	// Optional Firebase push delivery
	var sender *push.Sender
	if creds := os.Getenv("FIREBASE_CREDENTIALS"); creds != "" {
		sender, err = push.NewSender(context.Background(), creds)
		if err != nil {
			log.Printf("Warning: Firebase not available: %v", err)
			log.Println("Continuing without push delivery")
		}
	}

	// Facility detail pipeline: upstream client, S3-backed cache, dedup fetcher
	detailClient := facility.NewHTTPClient(
		os.Getenv("FACILITY_API_URL"),
		os.Getenv("FACILITY_API_KEY"),
	)
	fetcher := facility.NewFetcher(detailClient, detailcache.NewManager(blobs))

	notifier := notify.NewNotifier(sender)

	// Initialize handlers
	h := handlers.NewHandlers(blobs, fetcher, notifier)
	h.SetRedisClient(redisClient)
	authHandlers := handlers.NewAuthHandlers(authService)

	// Setup Gin router
	r := gin.Default()

	// CORS middleware
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"} // Configure properly for production
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if tracerProvider != nil {
		r.Use(middleware.TracingMiddleware("mompick-backend"))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		httpStatus := http.StatusOK
		if err := database.Health(); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "mompick-backend",
		})
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api/v1")
	{
		// Authentication routes (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandlers.Register)
			authGroup.POST("/login", authHandlers.Login)
			authGroup.GET("/me", middleware.RequireAuth(authService), authHandlers.Me)
		}

		// Facility routes. Listing and detail are public; anonymous callers
		// simply get unfiltered review pages.
		facilities := api.Group("/facilities")
		{
			facilities.Use(middleware.OptionalAuth(authService))
			facilities.GET("/:type/:code/detail", h.FacilityDetail)
			facilities.GET("/:type/:code/reviews", h.ListReviews)
			facilities.GET("/:type/:code/reviews/stats", h.ReviewStats)
			facilities.GET("/:type/reviews/ratings", h.BulkRatings)
			facilities.POST("/:type/:code/reviews", middleware.RequireAuth(authService), h.CreateReview)
			facilities.GET("/:type/:code/reviews/mine", middleware.RequireAuth(authService), h.MyReview)
		}

		// Review routes
		reviews := api.Group("/reviews")
		{
			reviews.Use(middleware.RequireAuth(authService))
			reviews.DELETE("/:id", h.DeleteOwnReview)
			reviews.POST("/:id/helpful", h.ToggleHelpful)
			reviews.POST("/:id/delete-requests", h.CreateDeleteRequest)
		}

		// Favorite routes
		favorites := api.Group("/favorites")
		{
			favorites.Use(middleware.RequireAuth(authService))
			favorites.POST("", h.AddFavorite)
			favorites.DELETE("", h.RemoveFavorite)
			favorites.GET("", h.ListFavorites)
			favorites.GET("/check", h.CheckFavorite)
		}

		// User block routes
		users := api.Group("/users")
		{
			users.Use(middleware.RequireAuth(authService))
			users.POST("/:id/block", h.BlockUser)
			users.DELETE("/:id/block", h.UnblockUser)
			users.GET("/me/blocked", h.GetBlockedUsers)
		}

		// Notification routes
		notifications := api.Group("/notifications")
		{
			notifications.Use(middleware.RequireAuth(authService))
			notifications.GET("", h.ListNotifications)
			notifications.POST("/:id/read", h.MarkNotificationRead)
			notifications.POST("/read-all", h.MarkAllNotificationsRead)
			notifications.DELETE("/:id", h.DeleteNotification)
			notifications.GET("/settings", h.GetNotificationSettings)
			notifications.PUT("/settings", h.UpdateNotificationSettings)
		}

		// Push token routes
		pushGroup := api.Group("/push")
		{
			pushGroup.Use(middleware.RequireAuth(authService))
			pushGroup.PUT("/tokens", h.RegisterToken)
			pushGroup.DELETE("/tokens", h.DeleteTokens)
		}

		// Admin routes
		admin := api.Group("/admin")
		{
			admin.Use(middleware.RequireAuth(authService), middleware.RequireAdmin())
			admin.GET("/reviews", h.AdminListReviews)
			admin.PATCH("/reviews/:id/hidden", h.SetReviewHidden)
			admin.GET("/delete-requests", h.ListDeleteRequests)
			admin.PATCH("/delete-requests/:id", h.UpdateDeleteRequest)
			admin.DELETE("/delete-requests/:id", h.DeleteDeleteRequest)
		}
	}

	// Server configuration
	port := os.Getenv("PORT")
	if port == "" {
		port = "8787"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("MomPick backend starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Failed to flush tracer: %v", err)
		}
	}
	if redisClient != nil {
		redisClient.Close()
	}
	database.Close()

	log.Println("Server exited")
}
