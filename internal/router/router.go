package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/NicoLa5Tor/MQTTArisma/internal/handler"
	"github.com/NicoLa5Tor/MQTTArisma/internal/middleware"
)

// Handler registers a group of routes.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

type Router struct {
	engine  *gin.Engine
	base    *handler.Handler
	verifyH Handler
	alertsH Handler
	hwauthH Handler
	adminH  Handler
	config  Config
}

func NewRouter(base *handler.Handler, verifyH, alertsH, hwauthH, adminH Handler, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)

	return &Router{
		engine:  gin.New(),
		base:    base,
		verifyH: verifyH,
		alertsH: alertsH,
		hwauthH: hwauthH,
		adminH:  adminH,
		config:  config,
	}
}

func (r *Router) Setup() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.Recovery())

	if r.config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  r.config.RateLimit,
			Burst: r.config.RateBurst,
		})
		r.engine.Use(limiter.RateLimit())
	}

	r.engine.GET("/health/live", r.base.LivenessCheck)
	r.engine.GET("/health/ready", r.base.ReadinessCheck)
	r.engine.GET("/metrics", r.base.MetricsHandler)

	// The verification API lives at the root, matching the paths the
	// field tooling already calls.
	root := r.engine.Group("")
	r.verifyH.RegisterRoutes(root)
	r.alertsH.RegisterRoutes(root)
	r.hwauthH.RegisterRoutes(root)

	// Provisioning is operator tooling, kept off the device-facing root.
	r.adminH.RegisterRoutes(r.engine.Group("/admin"))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
