package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vavepl/marketplace-backend/internal/di"
	"github.com/vavepl/marketplace-backend/internal/metrics"
	"github.com/vavepl/marketplace-backend/internal/notification"
	"github.com/vavepl/marketplace-backend/pkg/config"
	"github.com/vavepl/marketplace-backend/pkg/database"
	"github.com/vavepl/marketplace-backend/pkg/kafka"
	"github.com/vavepl/marketplace-backend/pkg/logger"
	"github.com/vavepl/marketplace-backend/pkg/middleware"
	"github.com/vavepl/marketplace-backend/pkg/redis"
	"github.com/vavepl/marketplace-backend/pkg/telemetry"
)

const serviceName = "marketplace-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting marketplace API...")

	ctx := context.Background()

	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}

	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
		ServiceName:     serviceName,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Redis is optional; caching is disabled when the connection fails
	redisCfg := &redis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
	redisClient, err := redis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed (caching disabled): %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (%s)", redisCfg.Addr()))
	}

	// Kafka is optional; notifications fall back to a no-op publisher
	var notifier notification.Publisher
	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Kafka.Brokers,
		ClientID:      cfg.Kafka.ClientID,
		MaxRetries:    3,
		RetryInterval: time.Second,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed (notifications disabled): %v", err))
		notifier = notification.NewNoOpPublisher()
	} else {
		notifier = notification.NewKafkaPublisher(producer, "")
		defer notifier.Close()
		appLog.Info(fmt.Sprintf("Kafka connected (%v)", cfg.Kafka.Brokers))
	}

	container := di.NewContainer(&di.ContainerConfig{
		DB:       db,
		Redis:    redisClient,
		Notifier: notifier,
		Refund:   cfg.Refund,
		Worker:   cfg.Worker,
	})

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(serviceName))
	}
	router.Use(middleware.RequestIdentity())
	if redisClient != nil {
		router.Use(middleware.Idempotency(middleware.DefaultIdempotencyConfig(redisClient)))
	}

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		events := v1.Group("/events")
		{
			events.GET("", container.EventHandler.Search)
			events.GET("/:id", container.EventHandler.Get)
			events.POST("", container.EventHandler.Create)
			events.PUT("/:id", container.EventHandler.Update)
			events.POST("/:id/cancel", container.EventHandler.Cancel)
			events.POST("/:id/files", container.EventHandler.AddFile)
			events.DELETE("/:id/files/:fileId", container.EventHandler.RemoveFile)
		}

		bookings := v1.Group("/bookings")
		{
			bookings.GET("", container.BookingHandler.ListMine)
			bookings.GET("/:id", container.BookingHandler.Get)
			bookings.POST("", container.BookingHandler.Create)
			bookings.POST("/:id/status", container.BookingHandler.Transition)
		}

		companies := v1.Group("/companies")
		{
			companies.POST("", container.CompanyHandler.Create)
			companies.GET("/:id", container.CompanyHandler.Get)
			companies.GET("/:id/employees", container.CompanyHandler.ListEmployees)
			companies.GET("/:id/events", container.EventHandler.ListByCompany)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", container.CategoryHandler.Tree)
			categories.GET("/:id/children", container.CategoryHandler.Children)
			categories.POST("", container.CategoryHandler.Create)
		}

		users := v1.Group("/users")
		{
			users.GET("", container.UserHandler.Search)
			users.GET("/:id", container.UserHandler.Get)
			users.POST("", container.UserHandler.Create)
		}
	}

	// The close sweep runs in-process alongside the API; the standalone
	// worker binary covers deployments that split it out.
	if err := container.CloseWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start close worker: %v", err))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Marketplace API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	container.CloseWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
