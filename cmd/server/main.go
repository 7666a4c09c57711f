package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holidaze/service-booking/internal/application"
	"github.com/holidaze/service-booking/internal/cache"
	"github.com/holidaze/service-booking/internal/common/auth"
	"github.com/holidaze/service-booking/internal/common/database"
	"github.com/holidaze/service-booking/internal/common/health"
	"github.com/holidaze/service-booking/internal/common/kafka"
	"github.com/holidaze/service-booking/internal/common/logger"
	"github.com/holidaze/service-booking/internal/common/middleware"
	"github.com/holidaze/service-booking/internal/config"
	"github.com/holidaze/service-booking/internal/domain/availability"
	bookingDomain "github.com/holidaze/service-booking/internal/domain/booking"
	bookingEvents "github.com/holidaze/service-booking/internal/events"
	"github.com/holidaze/service-booking/internal/handler"
	"github.com/holidaze/service-booking/internal/repository"
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
		zap.String("timezone", cfg.Availability.Location.String()),
		zap.Int("max_span_days", cfg.Availability.MaxSpanDays),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations. Auto-migrate does not create the overlap
	// exclusion constraint; the row lock in the repository still applies.
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.VenueModel{}, &repository.BookingModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTTL,
		cfg.JWTConfig.RefreshTTL,
	)

	// Availability engine
	engine := availability.NewEngine(
		availability.WithLocation(cfg.Availability.Location),
		availability.WithMaxSpanDays(cfg.Availability.MaxSpanDays),
		availability.WithLogger(log.Named("availability")),
	)

	healthHandler := health.NewHandler(db, "service-booking")

	// Snapshot cache. The service runs without it when Redis is unreachable.
	var snapshotCache application.SnapshotCache
	redisClient, err := cache.NewClient(ctx, cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB, log)
	if err != nil {
		log.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
	} else {
		defer func() { _ = redisClient.Close() }()
		redisCache := cache.NewSnapshotCache(redisClient, cfg.RedisConfig.TTL, log)
		snapshotCache = redisCache
		healthHandler.AddChecker("redis", redisCache.Ping)
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db, engine)
	venueRepo := repository.NewGormVenueRepository(db)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		venueRepo,
		engine,
		bookingDomain.NewNightlyPricingStrategy(),
		application.NewSnapshotRegistry(),
		snapshotCache,
		kafkaProducer,
		log,
	)
	venueService := application.NewVenueService(venueRepo, log)

	// Every replica holds its own snapshots, so each one joins a group of its
	// own and sees every booking event. The host name keeps the group stable
	// across restarts of the same replica.
	instanceID, err := os.Hostname()
	if err != nil || instanceID == "" {
		instanceID = uuid.NewString()[:8]
	}
	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service-" + instanceID
	bookingConsumer := bookingEvents.NewBookingEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = bookingConsumer.Close() }()

	go func() {
		log.Info("starting booking event consumer", zap.String("group_id", groupID))
		if err := bookingConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("booking event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	venueHandler := handler.NewVenueHandler(venueService, bookingService)
	adminBookingHandler := handler.NewAdminBookingHandler(bookingService)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, log))

	// Register routes
	healthHandler.RegisterRoutes(router)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	venueHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminBookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Stop the consumer first so no invalidation races the shutdown.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
