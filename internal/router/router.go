package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// PublicHandler also serves routes that need no token.
type PublicHandler interface {
	handler.Routes
	RegisterPublicRoutes(*gin.RouterGroup)
}

// Handlers are the route owners mounted under /api/v1. Metrics may be nil.
type Handlers struct {
	Auth         PublicHandler
	Appointment  handler.Routes
	HomeVisit    handler.Routes
	Patient      handler.Routes
	Doctor       handler.Routes
	Guardian     handler.Routes
	Medication   handler.Routes
	Prescription handler.Routes
	Emergency    handler.Routes
	Audit        handler.Routes
	Health       handler.Routes
	Metrics      handler.Routes
}

type RouterConfig struct {
	Mode             string
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	Timeout          time.Duration
	MaxBodyBytes     int64
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, m *metrics.Metrics, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.Timeout <= 0 {
		config.Timeout = middleware.DefaultTimeoutConfig().Duration
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.Metrics(m),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)
	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}
	engine.Use(
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
		middleware.SizeLimit(config.MaxBodyBytes),
	)

	return &Router{engine: engine, auth: auth, handlers: handlers}
}

func (r *Router) Setup() {
	h := r.handlers

	h.Health.RegisterRoutes(r.engine.Group(""))
	if h.Metrics != nil {
		h.Metrics.RegisterRoutes(r.engine.Group(""))
	}

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	h.Auth.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	h.Auth.RegisterRoutes(protected)
	h.Appointment.RegisterRoutes(protected)
	h.HomeVisit.RegisterRoutes(protected)
	h.Patient.RegisterRoutes(protected)
	h.Doctor.RegisterRoutes(protected)
	h.Guardian.RegisterRoutes(protected)
	h.Medication.RegisterRoutes(protected)
	h.Prescription.RegisterRoutes(protected)
	h.Emergency.RegisterRoutes(protected)

	admin := protected.Group("")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	h.Audit.RegisterRoutes(admin)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
