package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hostelhub/service-booking/internal/allocation"
	"github.com/hostelhub/service-booking/internal/application"
	"github.com/hostelhub/service-booking/internal/auth"
	"github.com/hostelhub/service-booking/internal/config"
	"github.com/hostelhub/service-booking/internal/database"
	bookingEvents "github.com/hostelhub/service-booking/internal/events"
	"github.com/hostelhub/service-booking/internal/handler"
	"github.com/hostelhub/service-booking/internal/health"
	"github.com/hostelhub/service-booking/internal/kafka"
	"github.com/hostelhub/service-booking/internal/logger"
	"github.com/hostelhub/service-booking/internal/metrics"
	"github.com/hostelhub/service-booking/internal/middleware"
	"github.com/hostelhub/service-booking/internal/payment"
	"github.com/hostelhub/service-booking/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.HostelModel{},
			&repository.RoomModel{},
			&repository.BedModel{},
			&repository.BookingModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(database.DatabaseURL(cfg.DB), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Connect to redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Register prometheus collectors
	metrics.Register()

	// Initialize repositories and caches
	bookingRepo := repository.NewGormBookingRepository(db)
	inventoryRepo := repository.NewGormInventoryRepository(db)
	availabilityCache := repository.NewRedisAvailabilityCache(redisClient, 30*time.Second, log)

	// Initialize the allocation engine
	engine := allocation.NewEngine(inventoryRepo, allocation.NewPreferredTypePolicy(), log)

	// Initialize the payment status checker with a redis cache in front
	paymentChecker := payment.NewCachedChecker(
		payment.NewHTTPClient(cfg.Payment.BaseURL, cfg.Payment.Timeout),
		redisClient,
		cfg.Payment.CacheTTL,
		log,
	)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		inventoryRepo,
		engine,
		paymentChecker,
		kafkaProducer,
		availabilityCache,
		log,
	)
	inventoryService := application.NewInventoryService(inventoryRepo, availabilityCache, log)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "booking-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.Kafka.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	hostelHandler := handler.NewHostelHandler(inventoryService)
	adminHandler := handler.NewAdminHandler(bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check and metrics routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	hostelHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
