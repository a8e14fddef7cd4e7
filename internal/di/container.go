package di

import (
	"github.com/vavepl/marketplace-backend/internal/handler"
	"github.com/vavepl/marketplace-backend/internal/notification"
	"github.com/vavepl/marketplace-backend/internal/repository"
	"github.com/vavepl/marketplace-backend/internal/service"
	"github.com/vavepl/marketplace-backend/internal/worker"
	"github.com/vavepl/marketplace-backend/pkg/config"
	"github.com/vavepl/marketplace-backend/pkg/database"
	"github.com/vavepl/marketplace-backend/pkg/redis"
)

// Container holds all dependencies for the marketplace service
type Container struct {
	// Infrastructure
	DB       *database.PostgresDB
	Redis    *redis.Client
	Notifier notification.Publisher

	// Repositories
	EventRepo    repository.EventRepository
	BookingRepo  repository.BookingRepository
	CompanyRepo  repository.CompanyRepository
	CategoryRepo repository.CategoryRepository
	UserRepo     repository.UserRepository

	// Services
	EventService    service.EventService
	BookingService  service.BookingService
	CompanyService  service.CompanyService
	CategoryService service.CategoryService
	UserService     service.UserService

	// Workers
	CloseWorker *worker.EventCloseWorker

	// Handlers
	HealthHandler   *handler.HealthHandler
	EventHandler    *handler.EventHandler
	BookingHandler  *handler.BookingHandler
	CompanyHandler  *handler.CompanyHandler
	CategoryHandler *handler.CategoryHandler
	UserHandler     *handler.UserHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB       *database.PostgresDB
	Redis    *redis.Client
	Notifier notification.Publisher
	Refund   config.RefundConfig
	Worker   config.WorkerConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:       cfg.DB,
		Redis:    cfg.Redis,
		Notifier: cfg.Notifier,
	}

	if c.Notifier == nil {
		c.Notifier = notification.NewNoOpPublisher()
	}

	// Repositories
	pgEventRepo := repository.NewPostgresEventRepository(c.DB.Pool())
	if c.Redis != nil {
		c.EventRepo = repository.NewCachedEventRepository(pgEventRepo, c.Redis)
	} else {
		c.EventRepo = pgEventRepo
	}
	c.BookingRepo = repository.NewPostgresBookingRepository(c.DB.Pool())
	c.CompanyRepo = repository.NewPostgresCompanyRepository(c.DB.Pool())
	c.CategoryRepo = repository.NewPostgresCategoryRepository(c.DB.Pool())
	c.UserRepo = repository.NewPostgresUserRepository(c.DB.Pool())

	// Services
	refundPolicy := service.NewRefundPolicy(service.RefundConfig{
		NoticeHours:       cfg.Refund.NoticeHours,
		CommissionPercent: cfg.Refund.CommissionPercent,
	})
	c.EventService = service.NewEventService(c.EventRepo, c.CompanyRepo, c.CategoryRepo, c.Notifier)
	c.BookingService = service.NewBookingService(c.BookingRepo, c.EventRepo, refundPolicy, c.Notifier)
	c.CompanyService = service.NewCompanyService(c.CompanyRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.UserService = service.NewUserService(c.UserRepo)

	// Workers
	c.CloseWorker = worker.NewEventCloseWorker(c.EventRepo, c.Notifier, &worker.EventCloseWorkerConfig{
		ScanInterval: cfg.Worker.CloseScanInterval,
		BatchSize:    cfg.Worker.CloseBatchSize,
	})

	// Handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.CompanyHandler = handler.NewCompanyHandler(c.CompanyService)
	c.CategoryHandler = handler.NewCategoryHandler(c.CategoryService)
	c.UserHandler = handler.NewUserHandler(c.UserService)

	return c
}
