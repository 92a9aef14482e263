package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/schoolpay/backend/internal/infrastructure/auth"
	"github.com/schoolpay/backend/internal/infrastructure/config"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
	"github.com/schoolpay/backend/internal/interfaces/http/handler"
	"github.com/schoolpay/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	System       *handler.SystemHandler
	School       *handler.SchoolHandler
	AcademicYear *handler.AcademicYearHandler
	Class        *handler.ClassHandler
	Student      *handler.StudentHandler
	PaymentType  *handler.PaymentTypeHandler
	Payment      *handler.PaymentHandler
	Audit        *handler.AuditHandler
}

// Options holds everything needed to assemble the HTTP engine
type Options struct {
	Config         *config.Config
	Logger         *zap.Logger
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist
	Handlers       Handlers
}

// New assembles the gin engine: middleware chain, liveness endpoint,
// platform routes and the school-scoped API.
func New(opts Options) (*gin.Engine, error) {
	if opts.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.Config.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(opts.Logger))
	engine.Use(logger.Recovery(opts.Logger))
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = opts.Config.HTTP.CORSAllowOrigins
	if len(opts.Config.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = opts.Config.HTTP.CORSAllowMethods
	}
	if len(opts.Config.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = opts.Config.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(opts.Config.HTTP.MaxBodySize))

	jwtCfg := middleware.DefaultJWTConfig(opts.JWTService)
	jwtCfg.TokenBlacklist = opts.TokenBlacklist
	jwtCfg.Logger = opts.Logger
	engine.Use(middleware.JWTAuthWithConfig(jwtCfg))

	engine.GET("/health", opts.Handlers.System.Health)

	api := engine.Group("/api/v1")

	// Platform-level school administration. No SchoolScope here: the
	// service itself restricts these to the platform role, and suspend and
	// reactivate must keep working for schools the guard would reject.
	schools := api.Group("/schools")
	schools.POST("", opts.Handlers.School.Create)
	schools.GET("", opts.Handlers.School.List)
	schools.POST("/:schoolId/suspend", opts.Handlers.School.Suspend)
	schools.POST("/:schoolId/reactivate", opts.Handlers.School.Reactivate)

	// Everything below runs inside one school's scope
	scoped := schools.Group("/:schoolId")
	scoped.Use(middleware.SchoolScope())

	scoped.POST("/academic-years", opts.Handlers.AcademicYear.Create)
	scoped.GET("/academic-years", opts.Handlers.AcademicYear.List)

	scoped.POST("/payment-types", opts.Handlers.PaymentType.Create)
	scoped.GET("/payment-types", opts.Handlers.PaymentType.List)
	scoped.PATCH("/payment-types/:typeId", opts.Handlers.PaymentType.Toggle)

	scoped.GET("/audit-logs", opts.Handlers.Audit.List)

	// Create endpoints that carry the school in the request body skip the
	// path guard; the services authorize the actor against that school
	api.POST("/classes", opts.Handlers.Class.Create)
	api.POST("/payments", opts.Handlers.Payment.Create)

	classes := api.Group("/classes/schools/:schoolId", middleware.SchoolScope())
	classes.GET("", opts.Handlers.Class.List)

	students := api.Group("/students/schools/:schoolId", middleware.SchoolScope())
	students.POST("/import", opts.Handlers.Student.Import)
	students.GET("/import-history", opts.Handlers.Student.ImportHistory)
	students.GET("", opts.Handlers.Student.List)

	payments := api.Group("/payments/schools/:schoolId", middleware.SchoolScope())
	payments.GET("", opts.Handlers.Payment.List)
	payments.DELETE("/:paymentId", opts.Handlers.Payment.Delete)
	payments.GET("/:paymentId/receipt", opts.Handlers.Payment.Receipt)

	return engine, nil
}
