// Package api HTTP 路由装配
package api

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/storefront/docs"
	"github.com/d60-Lab/storefront/internal/api/handler"
	"github.com/d60-Lab/storefront/internal/api/middleware"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/pkg/logger"
)

// RouterConfig 路由依赖；Gatherer 与 Live 为 nil 时不挂载对应端点
type RouterConfig struct {
	Mode           string
	ServiceName    string
	AllowedOrigins []string
	Tracing        bool
	Sentry         bool
	Swagger        bool
	Tokens         middleware.TokenParser
	Gatherer       prometheus.Gatherer
	Live           http.Handler
}

func NewRouter(cfg RouterConfig, h *handler.Handler) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(cfg.Sentry)...)
	r.Use(logger.GinLogger())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws", "/metrics"})))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	if cfg.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if cfg.Live != nil {
		r.GET("/ws", gin.WrapH(cfg.Live))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/push-subscription/public-key", h.VAPIDPublicKey)

	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(cfg.Tokens))

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/preferences", h.GetPreferences)
		notifications.PUT("/preferences", h.UpdatePreference)
		notifications.PUT("/read-all", h.MarkAllNotificationsRead)
		notifications.GET("/:id", h.GetNotification)
		notifications.PUT("/:id/read", h.MarkNotificationRead)
		notifications.POST("/admin-message", middleware.RequireRole(string(model.RoleAdmin)), h.SendAdminMessage)
	}

	recent := authed.Group("/recent")
	{
		recent.GET("", h.ListRecent)
		recent.PUT("/read-all", h.MarkAllNotificationsRead)
		recent.PUT("/:id/read", h.MarkNotificationRead)
		recent.POST("/clear", h.ClearRecent)
	}

	orders := authed.Group("/orders")
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id/status", middleware.RequireRole(string(model.RoleSeller), string(model.RoleAdmin)), h.UpdateOrderStatus)
		orders.POST("/:id/cancel", h.CancelOrder)
	}

	products := authed.Group("/products")
	products.Use(middleware.RequireRole(string(model.RoleSeller), string(model.RoleAdmin)))
	{
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
	}

	push := authed.Group("/push-subscription")
	{
		push.POST("", h.RegisterPushSubscription)
		push.DELETE("", h.UnregisterPushSubscription)
	}
	return r
}
