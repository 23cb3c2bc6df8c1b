package provider

import (
	"github.com/lonqui-express/internal/cache"
	"github.com/lonqui-express/internal/config"
	"github.com/lonqui-express/internal/logger"
	"github.com/lonqui-express/internal/models"
	"github.com/lonqui-express/internal/queue"
	"github.com/lonqui-express/internal/repository"
	"github.com/lonqui-express/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo          repository.UserRepository
	ShipmentRepo      repository.ShipmentRepository
	TrackingEventRepo repository.TrackingEventRepository
	AuditLogRepo      repository.AuditLogRepository
	NotificationRepo  repository.NotificationRepository

	// Services
	AuthService          *service.AuthService
	EmailService         *service.EmailService
	AuditService         *service.AuditService
	NotificationService  *service.NotificationService
	ShipmentService      *service.ShipmentService
	ShipmentQueryService *service.ShipmentQueryService
	TrackingService      *service.TrackingService
	UserService          *service.UserService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.ShipmentRepo = repository.NewShipmentRepository(db)
	c.TrackingEventRepo = repository.NewTrackingEventRepository(db)
	c.AuditLogRepo = repository.NewAuditLogRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config)
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.AuditService = service.NewAuditService(c.AuditLogRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.ShipmentService = service.NewShipmentService(
		c.ShipmentRepo,
		c.TrackingEventRepo,
		c.UserRepo,
		c.AuditService,
		c.NotificationService,
		c.QueueClient,
		c.Config.Shipment.CodePrefix,
		c.Config.Shipment.CodeRetryAttempts,
		c.Config.Shipment.StoreTimeoutMillis,
	)
	c.ShipmentQueryService = service.NewShipmentQueryService(c.ShipmentRepo)
	c.UserService = service.NewUserService(c.UserRepo)
	c.TrackingService = service.NewTrackingService(c.ShipmentRepo, c.TrackingEventRepo, c.Config.Shipment.SnapshotTTLSeconds)
}
