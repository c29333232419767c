// Package routes wires repositories, services and handlers into the gin engine.
package routes

import (
	"fmt"

	"course-management-backend/apierr"
	"course-management-backend/auth"
	"course-management-backend/events"
	"course-management-backend/handlers"
	"course-management-backend/logger"
	"course-management-backend/middleware"
	"course-management-backend/repository"
	"course-management-backend/response"
	"course-management-backend/services"
	"course-management-backend/tracing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	Log         *logger.Logger
	DB          *gorm.DB
	Tokens      *auth.TokenManager
	Events      events.Publisher
	CORSOrigins []string
	Tracing     bool
	ServiceName string
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Events == nil {
		d.Events = events.NopPublisher{}
	}

	userRepo := repository.NewUserRepo(d.DB, d.Log)
	courseRepo := repository.NewCourseRepo(d.DB, d.Log)
	lessonRepo := repository.NewLessonRepo(d.DB, d.Log)
	enrollmentRepo := repository.NewEnrollmentRepo(d.DB, d.Log)

	authH := handlers.NewAuthHandler(services.NewAuthService(d.Log, userRepo, d.Tokens, d.Events))
	userH := handlers.NewUserHandler(services.NewUserService(d.Log, userRepo, d.Events))
	courseH := handlers.NewCourseHandler(services.NewCourseService(d.Log, courseRepo, d.Events))
	lessonH := handlers.NewLessonHandler(services.NewLessonService(d.Log, lessonRepo, courseRepo))
	enrollmentH := handlers.NewEnrollmentHandler(services.NewEnrollmentService(d.Log, enrollmentRepo, userRepo, courseRepo, d.Events))

	r := gin.New()
	r.Use(middleware.RequestID())
	if d.Tracing {
		r.Use(tracing.Middleware(d.ServiceName))
	}
	r.Use(middleware.RequestLogger(d.Log.With("component", "http")))
	r.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		response.Error(c, fmt.Errorf("panic: %v", rec))
	}))
	if len(d.CORSOrigins) > 0 {
		r.Use(middleware.CORS(d.CORSOrigins))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apierr.NotFound("route %s %s not found", c.Request.Method, c.Request.URL.Path))
	})
	r.GET("/health", handlers.Health(d.DB))

	api := r.Group("/api")

	// Public routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/register", authH.Register)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(d.Tokens, userRepo))
	{
		protected.POST("/course", courseH.Create)
		protected.GET("/course", courseH.List)
		protected.GET("/course/:id", courseH.Get)
		protected.PUT("/course/:id", courseH.Update)
		protected.DELETE("/course/:id", courseH.Delete)

		protected.POST("/lesson", lessonH.Create)
		protected.GET("/lesson", lessonH.List)
		protected.GET("/lesson/course/:courseId", lessonH.ListByCourse)
		protected.GET("/lesson/:id", lessonH.Get)
		protected.PUT("/lesson/:id", lessonH.Update)
		protected.DELETE("/lesson/:id", lessonH.Delete)

		protected.POST("/user", userH.Create)
		protected.GET("/user", userH.List)
		protected.GET("/user/:id", userH.Get)
		protected.PUT("/user/:id", userH.Update)
		protected.DELETE("/user/:id", userH.Delete)

		protected.POST("/enrollment", enrollmentH.Create)
		protected.GET("/enrollment", enrollmentH.List)
		protected.GET("/enrollment/user/:userId", enrollmentH.ListByUser)
		protected.GET("/enrollment/:id", enrollmentH.Get)
		protected.DELETE("/enrollment/:id", enrollmentH.Cancel)
	}

	return r
}
