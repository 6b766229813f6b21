package api

import (
	"net/http"
	"time"

	moderationHandlers "backend/api/handlers/moderation"
	"backend/internal/auth"
	"backend/internal/config"
	"backend/internal/identity"
	"backend/internal/infra"
	"backend/internal/moderation"
	"backend/internal/notification"
	"backend/internal/versioning"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AppContainer 应用容器，集中管理所有服务依赖
type AppContainer struct {
	// 基础设施
	DB          *gorm.DB
	Config      *config.Config
	RedisClient redis.UniversalClient

	// 认证
	JWTService *auth.JWTService

	// 核心服务
	IdentityService   *identity.Service
	VersioningService *versioning.Service
	Resolver          *moderation.StoreEligibilityResolver
	ModerationService *moderation.Service
	Registry          *moderation.ContentTypeRegistry
	Notifier          *notification.CollectionNotifier
}

// BuildContainer 按依赖顺序组装服务
func BuildContainer(db *gorm.DB, cfg *config.Config, redisClient redis.UniversalClient) *AppContainer {
	c := &AppContainer{
		DB:          db,
		Config:      cfg,
		RedisClient: redisClient,
	}

	c.JWTService = auth.NewJWTService(
		cfg.Auth.JWTSecret,
		"modflow",
		time.Duration(cfg.Auth.TokenExpireHr)*time.Hour,
		redisClient,
	)

	c.IdentityService = identity.NewService(db)
	c.VersioningService = versioning.NewService(db)
	c.Resolver = moderation.NewStoreEligibilityResolver(c.IdentityService, redisClient)

	// 通知通道：SMTP 未配置时邮件通道自动禁用
	var emailCfg *notification.EmailConfig
	if cfg.Notification.Email.SMTPHost != "" {
		emailCfg = &notification.EmailConfig{
			SMTPHost:     cfg.Notification.Email.SMTPHost,
			SMTPPort:     cfg.Notification.Email.SMTPPort,
			Username:     cfg.Notification.Email.Username,
			Password:     cfg.Notification.Email.Password,
			From:         cfg.Notification.Email.From,
			FromName:     cfg.Notification.Email.FromName,
			TemplatePath: cfg.Notification.Email.TemplatePath,
		}
	}
	multi := notification.NewMultiNotifier(emailCfg, &notification.WebhookConfig{
		DefaultURL: cfg.Notification.Webhook.DefaultURL,
		Timeout:    time.Duration(cfg.Notification.Webhook.TimeoutSeconds) * time.Second,
		Headers:    cfg.Notification.Webhook.Headers,
	})

	c.ModerationService = moderation.NewService(db, c.Resolver,
		moderation.WithVersionStore(c.VersioningService),
	)

	// 通知编排器通过审批服务查角色，装配完成后回填
	c.Notifier = notification.NewCollectionNotifier(
		c.IdentityService, c.Resolver, c.ModerationService, multi, cfg.Server.BaseURL,
	)
	c.ModerationService.SetNotifier(c.Notifier)

	c.Registry = moderation.NewContentTypeRegistry()
	c.Registry.RegisterVersionable("content_version")
	c.Registry.RegisterModerated("content_version")

	return c
}

// AutoMigrate 迁移全部业务表
func (c *AppContainer) AutoMigrate() error {
	if err := c.IdentityService.AutoMigrate(); err != nil {
		return err
	}
	if err := c.VersioningService.AutoMigrate(); err != nil {
		return err
	}
	return c.ModerationService.AutoMigrate()
}

// SetupRouter 设置并返回 Gin 路由
func SetupRouter(c *AppContainer) *gin.Engine {
	switch c.Config.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), CORS())

	// 健康检查与指标
	router.GET("/health", func(ctx *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := infra.HealthCheck(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else if err := infra.HealthCheckRedis(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		ctx.JSON(code, gin.H{"status": status})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(router, c)
	return router
}

// RegisterRoutes 注册所有 API 路由
func RegisterRoutes(router *gin.Engine, c *AppContainer) {
	h := moderationHandlers.NewHandler(c.ModerationService)

	api := router.Group("/api/moderation")
	api.Use(auth.AuthMiddleware(c.JWTService))
	{
		api.POST("/roles", h.CreateRole)
		api.POST("/workflows", h.CreateWorkflow)
		api.GET("/workflows/:id", h.GetWorkflow)

		api.POST("/collections", h.CreateCollection)
		api.GET("/collections", h.ListCollections)
		api.GET("/collections/:id", h.GetCollection)
		api.POST("/collections/:id/versions", h.AddVersion)
		api.POST("/collections/:id/cancel", h.CancelCollection)
		api.POST("/collections/:id/bulk", h.BulkAction)
		api.DELETE("/collections/:id", h.DeleteCollection)

		api.GET("/requests/:id", h.GetRequest)
		api.POST("/requests/:id/actions", h.ActOnRequest)
	}
}
