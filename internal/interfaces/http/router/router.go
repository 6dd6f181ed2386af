// Package router 提供 HTTP 路由配置
package router

import (
	"repair-guide-api/internal/config"
	"repair-guide-api/internal/interfaces/http/handler"
	"repair-guide-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Health     *handler.HealthHandler
	Guide      *handler.GuideHandler
	User       *handler.UserHandler
	ImageProxy *handler.ImageProxyHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.Server.HTTP.MaxUploadBytes

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.cfg.Observability.Metrics.Path))
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	h := r.handlers

	// 系统端点
	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 取图代理不需要身份，前端与配图链路都会直接访问
	api := r.engine.Group("/api")
	api.GET("/fetch-image", h.ImageProxy.FetchImage)

	v1 := r.engine.Group("/v1")
	v1.Use(middleware.RequireIdentity(r.cfg.Identity.Configured()))
	v1.Use(middleware.Auth(middleware.AuthConfig{
		Secret:   r.cfg.Identity.Secret,
		Issuer:   r.cfg.Identity.Issuer,
		Audience: r.cfg.Identity.Audience,
	}))

	RegisterV1Routes(v1, h.Guide, h.User)
}
