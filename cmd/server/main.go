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
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gymclass/service-booking/internal/application"
	"github.com/gymclass/service-booking/internal/config"
	bookingDomain "github.com/gymclass/service-booking/internal/domain/booking"
	"github.com/gymclass/service-booking/internal/domain/gymclass"
	bookingEvents "github.com/gymclass/service-booking/internal/events"
	"github.com/gymclass/service-booking/internal/handler"
	"github.com/gymclass/service-booking/internal/platform/auth"
	"github.com/gymclass/service-booking/internal/platform/database"
	"github.com/gymclass/service-booking/internal/platform/kafka"
	"github.com/gymclass/service-booking/internal/platform/logger"
	"github.com/gymclass/service-booking/internal/platform/middleware"
	"github.com/gymclass/service-booking/internal/repository"
	"github.com/gymclass/service-booking/internal/repository/memory"
	"github.com/gymclass/service-booking/migrations"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("store", cfg.Store),
		zap.String("timezone", cfg.Location.String()),
	)

	// Initialize storage
	var (
		store   bookingDomain.Store
		classes gymclass.Availability
		pinger  handler.Pinger
	)
	switch cfg.Store {
	case "memory":
		memStore := memory.NewStore()
		memClasses := memory.NewClassRepository()
		seedDemoData(memStore, memClasses, cfg.Location, log)
		store, classes = memStore, memClasses
	default:
		db, err := database.Connect(cfg.DBConfig.DSN(), log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		migrateSchema(cfg, db, log)

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("failed to access database handle", zap.Error(err))
		}
		defer func() { _ = sqlDB.Close() }()

		store = repository.NewGormBookingStore(db)
		classes = repository.NewGormClassRepository(db)
		pinger = sqlDB
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, 15*time.Minute)

	// Initialize event publisher
	var publisher application.EventPublisher = bookingEvents.NopPublisher{}
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = bookingEvents.NewKafkaPublisher(kafkaProducer, cfg.KafkaConfig.Topic, log)
	} else {
		log.Warn("no kafka brokers configured, booking events will not be published")
	}

	// Initialize application service
	bookingService := application.NewBookingService(
		store,
		classes,
		publisher,
		cfg.Location,
		log,
	)

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	adminBookingHandler := handler.NewAdminBookingHandler(bookingService)
	healthHandler := handler.NewHealthHandler(pinger, serviceName)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register routes
	healthHandler.RegisterRoutes(router)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminBookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}

// migrateSchema auto-migrates in development and applies the versioned SQL
// migrations everywhere else.
func migrateSchema(cfg *config.ServiceConfig, db *gorm.DB, log *zap.Logger) {
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.UserModel{}, &repository.GymClassModel{}, &repository.BookingModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
		return
	}

	if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), migrations.FS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
}
