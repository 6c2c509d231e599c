package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"csa-reg/config"
	"csa-reg/internal/api/handler"
	"csa-reg/internal/api/middleware"
	"csa-reg/internal/service"
	"csa-reg/pkg/jwt"
	"csa-reg/pkg/metrics"
	"csa-reg/pkg/redis"
)

// Pinger 健康检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// Setup 初始化并返回 Gin 路由引擎；rdb 为 nil 时关闭 Token 黑名单与限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db Pinger, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// 避免 *redis.Client(nil) 被装进非 nil 接口
	var checker middleware.TokenChecker
	var limiter middleware.RateLimiter
	if rdb != nil {
		checker = rdb
		limiter = rdb
	}

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "db": "ok", "redis": "disabled"}
		code := http.StatusOK
		if err := db.Ping(ctx); err != nil {
			logger.Warn("数据库健康检查失败", zap.Error(err))
			status["status"], status["db"] = "unavailable", "down"
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			status["redis"] = "ok"
			// Redis 不可用时服务降级但仍可用
			if err := rdb.Ping(ctx); err != nil {
				status["redis"] = "down"
			}
		}
		c.JSON(code, status)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	limited := middleware.RateLimit(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", h.Auth.Login)
		v1.GET("/admins", h.Auth.ListAdmins)

		// 公开报名
		activities := v1.Group("/activities")
		{
			activities.GET("", h.Activity.ListOpen)
			activities.GET("/:id", h.Activity.GetOpen)
			activities.POST("/:id/applicants", limited, h.Applicant.Submit)
		}

		// CSP 免费申请（学生端）
		csp := v1.Group("/csp")
		{
			csp.GET("/audit/status", h.Csp.GateStatus)
			csp.GET("/free/:school_id", h.Csp.Quota)
			csp.POST("/audit", limited, h.Csp.Submit)
			csp.GET("/audit/:school_id", h.Csp.StudentAudits)
		}

		// 需要管理员认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, checker))
		authorized.POST("/auth/logout", h.Auth.Logout)

		admin := authorized.Group("/admin")
		admin.Use(middleware.RoleAuth(service.RoleAdmin))
		{
			// 报名活动
			act := admin.Group("/activities")
			{
				act.POST("", h.Activity.Create)
				act.GET("", h.Activity.List)
				act.GET("/:id", h.Activity.Get)
				act.PUT("/:id", h.Activity.AlterStructure)
				act.PUT("/:id/status", h.Activity.SetStatus)
				act.DELETE("/:id", h.Activity.Delete)
				act.GET("/:id/applicants", h.Applicant.List)
				act.DELETE("/:id/applicants/:number", h.Applicant.Delete)
				act.GET("/:id/export", h.Export.ExportApplicants)
			}

			// CSP 审核
			audit := admin.Group("/csp/audit")
			{
				audit.PUT("", h.Csp.SetGate)
				audit.GET("/list/:page", h.Csp.List)
				audit.PUT("/:id", h.Csp.Review)
			}
		}
	}

	return r
}
