package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/config"
	"github.com/stemsi/attendance-backend/internal/handler"
	"github.com/stemsi/attendance-backend/internal/metrics"
	"github.com/stemsi/attendance-backend/internal/middleware"
	"github.com/stemsi/attendance-backend/internal/repository"
	"github.com/stemsi/attendance-backend/internal/response"
	"github.com/stemsi/attendance-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Teacher    *handler.TeacherHandler
	Student    *handler.StudentHandler
	Attendance *handler.AttendanceHandler
	Media      *handler.MediaHandler
	System     *handler.SystemHandler
}

// Deps carries what the route-level middlewares need.
type Deps struct {
	Tokens       *service.TokenService
	Teachers     repository.TeacherRepository
	LoginLimiter *middleware.RateLimiter
	Log          zerolog.Logger
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(deps Deps, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	// Client IPs feed the login limiter; only listed proxies may rewrite them.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		deps.Log.Error().Err(err).Strs("trusted_proxies", cfg.TrustedProxies).Msg("Invalid TRUSTED_PROXIES, trusting none")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.AccessLog(deps.Log))

	// Serve locally stored media. Names are random, so cache for a year.
	if cfg.MediaBackend == config.MediaLocal {
		uploadsGroup := router.Group("/uploads")
		uploadsGroup.Use(middleware.StaticCache(365 * 24 * time.Hour))
		{
			uploadsGroup.Static("/", cfg.UploadDir)
		}
	}

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	api := router.Group(cfg.APIPrefix)

	// ─── 1. Public (administrative add-operations, login) ──────────────
	{
		api.POST("/addTeacher", handlers.Teacher.AddTeacher)
		api.POST("/addStudent", handlers.Student.AddStudent)
		api.POST("/loginTeacher", deps.LoginLimiter.Middleware(), handlers.Teacher.LoginTeacher)
	}

	// ─── 2. Teacher (Bearer token) ─────────────────────────────────────
	teacherAPI := api.Group("")
	teacherAPI.Use(middleware.RequireTeacher(deps.Tokens, deps.Teachers))
	{
		teacherAPI.POST("/getCurrentTeacher", handlers.Teacher.GetCurrentTeacher)
		teacherAPI.POST("/saveIp", handlers.Teacher.SaveIP)
		teacherAPI.POST("/markTeacherAttendence", handlers.Attendance.MarkTeacherAttendance)
		teacherAPI.POST("/teacher/mark-attendance", handlers.Attendance.MarkTeacherAttendanceWithFace)
		teacherAPI.POST("/retriveStudents", handlers.Student.RetrieveStudents)
		teacherAPI.POST("/markStuAttendence", handlers.Attendance.MarkStudentAttendance)
		teacherAPI.POST("/upload-photo", handlers.Media.UploadPhoto)
	}

	return router
}
