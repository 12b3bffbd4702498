package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webnyman/three-legged-Oauth/config"
	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/handlers"
	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/middleware"
	"github.com/webnyman/three-legged-Oauth/pkg/logger"
	"github.com/webnyman/three-legged-Oauth/pkg/registry"
)

// Component names resolved from the registry when wiring routes.
const (
	ComponentSessionManager = "session_manager"
	ComponentUserHandler    = "user_handler"
	ComponentHomeHandler    = "home_handler"
	ComponentHealthHandler  = "health_handler"
)

// Router wraps the Gin engine with application dependencies.
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// NewRouter creates and configures the HTTP router. Handlers are resolved
// from the registry, so a missing or cyclic registration fails here, at
// startup, not on the first request.
func NewRouter(cfg *config.Config, reg *registry.Registry, log logger.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	sessions := reg.MustResolve(ComponentSessionManager).(*middleware.SessionManager)
	userHandler := reg.MustResolve(ComponentUserHandler).(*handlers.UserHandler)
	homeHandler := reg.MustResolve(ComponentHomeHandler).(*handlers.HomeHandler)
	healthHandler := reg.MustResolve(ComponentHealthHandler).(*handlers.HealthHandler)

	// Operational endpoints sit outside the session and logging chain.
	engine.GET("/health", healthHandler.Health)
	engine.GET("/live", healthHandler.Live)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.Use(middleware.Metrics())

	var loginLimiter *middleware.LoginRateLimiter
	if cfg.Security.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)
		engine.Use(limiter.Middleware())
		loginLimiter = middleware.NewLoginRateLimiter()
	}

	requestLogger := middleware.NewRequestLoggerMiddleware(log)
	engine.Use(requestLogger.Handler())
	engine.Use(sessions.Handler())

	engine.GET("/", homeHandler.Index)

	user := engine.Group("/user")
	{
		oauth := user.Group("")
		if loginLimiter != nil {
			oauth.Use(loginLimiter.Middleware())
		}
		{
			oauth.GET("/login", userHandler.Login)
			oauth.GET("/callback", userHandler.Callback)
		}

		protected := user.Group("")
		protected.Use(userHandler.RenewAccessToken())
		{
			protected.GET("/profile", userHandler.Profile)
			protected.GET("/activities", userHandler.Activities)
			protected.GET("/groupprojects", userHandler.GroupProjects)
		}

		user.GET("/logout", userHandler.Logout)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "the requested page does not exist",
		})
	})

	return &Router{
		engine: engine,
		cfg:    cfg,
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
