package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vavepl/marketplace-backend/internal/metrics"
	"github.com/vavepl/marketplace-backend/internal/notification"
	"github.com/vavepl/marketplace-backend/internal/repository"
	"github.com/vavepl/marketplace-backend/internal/worker"
	"github.com/vavepl/marketplace-backend/pkg/config"
	"github.com/vavepl/marketplace-backend/pkg/database"
	"github.com/vavepl/marketplace-backend/pkg/kafka"
	"github.com/vavepl/marketplace-backend/pkg/logger"
)

// Standalone close sweep for deployments that run it outside the API
// process. Closing is idempotent, so running both is harmless.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: "event-close-worker",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting event close worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}

	dbCfg := &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      5,
		MinConns:      1,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	var notifier notification.Publisher
	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Kafka.Brokers,
		ClientID:      "event-close-worker",
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed (notifications disabled): %v", err))
		notifier = notification.NewNoOpPublisher()
	} else {
		notifier = notification.NewKafkaPublisher(producer, "")
		defer notifier.Close()
		appLog.Info("Kafka connected")
	}

	eventRepo := repository.NewPostgresEventRepository(db.Pool())

	closeWorker := worker.NewEventCloseWorker(eventRepo, notifier, &worker.EventCloseWorkerConfig{
		ScanInterval: cfg.Worker.CloseScanInterval,
		BatchSize:    cfg.Worker.CloseBatchSize,
	})

	if err := closeWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start worker: %v", err))
	}
	appLog.Info("Event close worker started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down worker...")
	closeWorker.Stop()
	cancel()

	appLog.Info("Worker exited gracefully")
}
