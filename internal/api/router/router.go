package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medrhouma/Projet-d-integration-sub000/config"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/api/handler"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/api/middleware"
	"github.com/medrhouma/Projet-d-integration-sub000/pkg/jwt"
	"github.com/medrhouma/Projet-d-integration-sub000/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	// Redis 为可选依赖，不可用时仍返回 200，仅在 redis 字段中体现
	r.GET("/health", func(c *gin.Context) {
		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "ok"
			if err := rdb.Ping(c.Request.Context()); err != nil {
				redisStatus = "unavailable"
			}
		}
		c.JSON(200, gin.H{"status": "ok", "redis": redisStatus})
	})

	writeLimit := middleware.RateLimit(rdb, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window, logger)

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 标准时段网格
		v1.GET("/time-slots", h.TimeSlot.ListTimeSlots)

		// 课程安排模块
		sessions := v1.Group("/sessions")
		{
			sessions.GET("", h.Session.ListSessions)
			sessions.GET("/week", h.Session.GetWeekGrid)
			sessions.GET("/:id", h.Session.GetSession)
			sessions.POST("", middleware.RoleAuth(middleware.RoleAdmin), writeLimit, h.Session.CreateSession)
			sessions.DELETE("/:id", middleware.RoleAuth(middleware.RoleAdmin), writeLimit, h.Session.DeleteSession)
			sessions.POST("/bulk-delete", middleware.RoleAuth(middleware.RoleAdmin), writeLimit, h.Session.BulkDeleteSessions)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/week.xlsx", middleware.RoleAuth(middleware.RoleAdmin, middleware.RoleTeacher), h.Export.ExportWeekGrid)
			export.GET("/sessions.ics", h.Export.ExportICS)
		}
	}

	return r
}
