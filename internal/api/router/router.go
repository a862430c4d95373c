package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VijayVPatil13/Digital-Lab-Records/config"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/api/handler"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/api/middleware"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/jwt"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/metrics"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/redis"
)

const (
	student = model.RoleStudent
	faculty = model.RoleFaculty
	admin   = model.RoleAdmin
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时黑名单与限流均降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidators()

	// 显式传 nil 接口，避免 typed nil 指针绕过降级判断
	var (
		blacklist middleware.TokenChecker
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitKB << 10))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	enrollLimit := middleware.RateLimit(limiter, cfg.RateLimit.EnrollLimit, cfg.RateLimit.Window, logger)
	submitLimit := middleware.RateLimit(limiter, cfg.RateLimit.SubmitLimit, cfg.RateLimit.Window, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			authorized.GET("/courses/:code/:section", h.Course.Lookup)

			// 选课模块
			authorized.POST("/enroll", middleware.RoleAuth(student), enrollLimit, h.Enrollment.Request)
			enrollment := authorized.Group("/enrollment", middleware.RoleAuth(faculty))
			{
				enrollment.GET("/pending", h.Enrollment.ListPending)
				enrollment.POST("/approve-all", h.Enrollment.ApproveAll)
				enrollment.PUT("/:id", h.Enrollment.SetStatus)
			}

			// 实验课模块
			sessions := authorized.Group("/sessions")
			{
				sessions.POST("", middleware.RoleAuth(faculty), h.Session.Create)
				sessions.GET("/course/:code/:section", middleware.RoleAuth(faculty, admin), h.Session.ListByCourse)
			}

			// 提交与评分模块
			submissions := authorized.Group("/submissions")
			{
				submissions.POST("", middleware.RoleAuth(student), submitLimit, h.Submission.Submit)
				submissions.GET("/id/:id", middleware.RoleAuth(faculty), h.Submission.GetByID)
				submissions.PUT("/grade/:id", middleware.RoleAuth(faculty), h.Submission.Grade)
			}

			// 教师视图
			fac := authorized.Group("/faculty", middleware.RoleAuth(faculty))
			{
				fac.GET("/courses", h.Course.ListOwned)
				fac.POST("/courses", h.Course.Create)
				fac.GET("/courses/:code/:section/students", h.Submission.StudentStats)
				fac.GET("/courses/:code/:section/students/export", h.Export.ExportStudentStats)
				fac.GET("/review/:sessionId", h.Submission.ReviewList)
				fac.PUT("/sessions/:id/attendance", h.Session.MarkAttendance)
			}

			// 学生视图
			stu := authorized.Group("/student", middleware.RoleAuth(student))
			{
				stu.GET("/courses", h.Course.ListEnrolled)
				stu.GET("/courses/:code/:section/sessions", h.Session.ListForStudent)
				stu.GET("/submissions", h.Submission.ListMine)
				stu.GET("/sessions/calendar.ics", h.Export.StudentCalendar)
			}

			// 管理员
			adm := authorized.Group("/admin", middleware.RoleAuth(admin))
			{
				adm.POST("/users", h.Auth.Register)
				adm.POST("/courses", h.Admin.CreateCourse)
				adm.POST("/roster/repair", h.Admin.RepairRoster)
			}
		}
	}

	return r
}
