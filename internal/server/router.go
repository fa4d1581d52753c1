package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/tap-api/internal/handler"
	"github.com/noah-isme/tap-api/internal/middleware"
	"github.com/noah-isme/tap-api/internal/models"
	"github.com/noah-isme/tap-api/pkg/config"
	"github.com/noah-isme/tap-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tap-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tap-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Instructors *handler.InstructorHandler
	Students    *handler.StudentHandler
	Payments    *handler.PaymentHandler
	Courses     *handler.CourseHandler
	Bookings    *handler.BookingHandler
	Enrollments *handler.EnrollmentHandler
	Metrics     *handler.MetricsHandler
}

// Dependencies is everything NewRouter needs. Audit and Observer may be nil.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Handlers Handlers
	Tokens   middleware.TokenValidator
	Audit    middleware.AuditRecorder
	Observer middleware.RequestObserver
}

const metricsPath = "/metrics"

// NewRouter builds the gin engine with ops routes and the API group.
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := deps.Handlers

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if deps.Observer != nil {
		r.Use(middleware.Metrics(deps.Observer, metricsPath))
	}
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET(metricsPath, h.Metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	rt := routes{deps: deps, log: log}
	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", middleware.JWT(deps.Tokens), h.Auth.Me)

	api.GET("/skills", h.Courses.Skills)
	api.GET("/levels", h.Courses.Levels)

	instructors := api.Group("/instructors")
	instructors.GET("", h.Instructors.List)
	instructors.POST("", rt.audit(models.AuditActionCreate, "instructor"), h.Instructors.Create)
	instructors.GET("/:id", h.Instructors.Get)
	instructors.PUT("/:id", with(rt.owner(), rt.audit(models.AuditActionUpdate, "instructor"), h.Instructors.Update)...)
	instructors.POST("/:id/resume", with(rt.owner(), rt.audit(models.AuditActionUpload, "instructor_resume"), h.Instructors.UploadResume)...)
	instructors.PUT("/:id/resume", with(rt.owner(), rt.audit(models.AuditActionUpload, "instructor_resume"), h.Instructors.ReplaceResume)...)
	instructors.GET("/:id/resume", h.Instructors.GetResume)
	instructors.GET("/:id/resume/download", h.Instructors.DownloadResume)
	instructors.GET("/:id/courses", h.Instructors.Courses)
	instructors.POST("/:id/slots", with(rt.owner(), rt.audit(models.AuditActionCreate, "time_slot"), h.Instructors.CreateSlot)...)
	instructors.GET("/:id/slots", h.Instructors.ListSlots)

	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", rt.audit(models.AuditActionCreate, "student"), h.Students.Create)
	students.GET("/payments/:paymentId", with(rt.authenticated(), h.Payments.Get)...)
	students.GET("/payments/:paymentId/receipt", with(rt.authenticated(), h.Payments.Receipt)...)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", with(rt.owner(), rt.audit(models.AuditActionUpdate, "student"), h.Students.Update)...)
	students.POST("/:id/preferences", with(rt.owner(), rt.audit(models.AuditActionUpdate, "student_preference"), h.Students.SavePreference)...)
	students.GET("/:id/preferences", h.Students.GetPreference)
	students.POST("/:id/bankDetails", with(rt.owner(), rt.audit(models.AuditActionUpdate, "student_bank_details"), h.Students.SaveBankDetails)...)
	students.GET("/:id/bankDetails", with(rt.owner(), h.Students.GetBankDetails)...)
	students.DELETE("/:id/bankDetails", with(rt.owner(), rt.audit(models.AuditActionDelete, "student_bank_details"), h.Students.DeleteBankDetails)...)
	students.POST("/:id/payments", with(rt.owner(), rt.audit(models.AuditActionCreate, "student_payment"), h.Payments.Create)...)
	students.GET("/:id/payments", with(rt.owner(), h.Payments.List)...)
	students.GET("/:id/payments/export", with(rt.owner(), h.Payments.Export)...)
	students.POST("/:id/bookings", with(rt.owner(), rt.audit(models.AuditActionCreate, "booking"), h.Bookings.Create)...)
	students.GET("/:id/bookings", with(rt.owner(), h.Bookings.ListByStudent)...)
	students.POST("/:id/enrollments", with(rt.owner(), rt.audit(models.AuditActionCreate, "enrollment"), h.Enrollments.Enroll)...)
	students.GET("/:id/enrollments", with(rt.owner(), h.Enrollments.ListByStudent)...)

	bookings := api.Group("/bookings")
	bookings.GET("/:id", with(rt.authenticated(), h.Bookings.Get)...)
	bookings.PATCH("/:id/status", with(rt.roles(models.RoleAdmin, models.RoleInstructor, models.RoleStudent), rt.audit(models.AuditActionUpdate, "booking"), h.Bookings.UpdateStatus)...)

	enrollments := api.Group("/enrollments")
	enrollments.GET("/:id", with(rt.authenticated(), h.Enrollments.Get)...)
	enrollments.PATCH("/:id", with(rt.roles(models.RoleAdmin, models.RoleStudent), rt.audit(models.AuditActionUpdate, "enrollment"), h.Enrollments.Update)...)

	courses := api.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.GET("/:id", h.Courses.Get)
	courses.POST("", with(rt.roles(models.RoleAdmin, models.RoleInstructor), rt.audit(models.AuditActionCreate, "course"), h.Courses.Create)...)
	courses.PUT("/:id", with(rt.roles(models.RoleAdmin, models.RoleInstructor), rt.audit(models.AuditActionUpdate, "course"), h.Courses.Update)...)
	courses.PATCH("/:id/publish", with(rt.roles(models.RoleAdmin, models.RoleInstructor), rt.audit(models.AuditActionUpdate, "course"), h.Courses.Publish)...)

	return r
}

// routes builds the optional middleware chains. Guards are empty unless AUTH_REQUIRED is set.
type routes struct {
	deps Dependencies
	log  *zap.Logger
}

func (rt routes) required() bool {
	return rt.deps.Config.Auth.Required && rt.deps.Tokens != nil
}

func (rt routes) authenticated() []gin.HandlerFunc {
	if !rt.required() {
		return nil
	}
	return []gin.HandlerFunc{middleware.JWT(rt.deps.Tokens)}
}

// owner lets through admins and the user whose id is the :id param.
func (rt routes) owner() []gin.HandlerFunc {
	if !rt.required() {
		return nil
	}
	return []gin.HandlerFunc{middleware.JWT(rt.deps.Tokens), middleware.RBAC(string(models.RoleAdmin), middleware.RoleSelf)}
}

func (rt routes) roles(roles ...models.UserRole) []gin.HandlerFunc {
	if !rt.required() {
		return nil
	}
	return []gin.HandlerFunc{middleware.JWT(rt.deps.Tokens), middleware.RequireRoles(roles...)}
}

func (rt routes) audit(action, resource string) gin.HandlerFunc {
	if rt.deps.Audit == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.Audit(rt.deps.Audit, rt.log, action, resource)
}

// with prepends guards to the route handlers.
func with(guards []gin.HandlerFunc, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	return append(guards, handlers...)
}
