package router

import (
	"fmt"
	"strings"

	"github.com/lonqui-express/internal/cache"
	"github.com/lonqui-express/internal/config"
	"github.com/lonqui-express/internal/constants"
	opshandlers "github.com/lonqui-express/internal/http/handlers/ops"
	publichandlers "github.com/lonqui-express/internal/http/handlers/public"
	"github.com/lonqui-express/internal/logger"
	"github.com/lonqui-express/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/鉴权分组）
	publicHandler := publichandlers.New(c)
	opsHandler := opshandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "lq"
	}
	redisClient := cache.Client()
	trackRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:track", redisPrefix),
		WindowSeconds: cfg.Security.TrackRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.TrackRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口：按追踪码查询，无需鉴权
		public := apiV1.Group("/public")
		{
			public.GET("/tracking/:code", RateLimitMiddleware(redisClient, trackRule, KeyByIP), publicHandler.TrackShipment)
		}

		// 鉴权接口（操作员 / 司机 / 管理员）
		authorized := apiV1.Group("")
		authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			// 运单生命周期
			authorized.POST("/shipments", opsHandler.CreateShipment)
			authorized.GET("/shipments", opsHandler.ListShipments)
			authorized.GET("/shipments/stats", opsHandler.GetShipmentStats)
			authorized.GET("/shipments/:ref", opsHandler.GetShipment)
			authorized.GET("/shipments/:ref/history", opsHandler.GetShipmentHistory)
			authorized.POST("/shipments/:ref/assign", opsHandler.AssignDriver)
			authorized.POST("/shipments/:ref/transit", opsHandler.MarkInTransit)
			authorized.POST("/shipments/:ref/deliver", opsHandler.MarkDelivered)
			authorized.POST("/shipments/:ref/not-delivered", opsHandler.MarkNotDelivered)
			authorized.POST("/shipments/:ref/cancel", opsHandler.CancelShipment)

			// 指派时的司机目录
			authorized.GET("/drivers", opsHandler.ListDrivers)

			// 当前用户的通知
			authorized.GET("/notifications", opsHandler.ListNotifications)
			authorized.POST("/notifications/:id/read", opsHandler.MarkNotificationRead)

			// 审计日志（仅管理员）
			authorized.GET("/audit-logs", RequireRoles(constants.RoleAdmin), opsHandler.ListAuditLogs)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
