package routes

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Iapetus-11/link-shortener/internal/infra/config"
	"github.com/Iapetus-11/link-shortener/internal/transport/http/handlers"
	"github.com/Iapetus-11/link-shortener/internal/transport/http/middleware"
	"github.com/Iapetus-11/link-shortener/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Platforms         *usecase.PlatformService
	DashboardSessions *usecase.DashboardSessionService
	Links             *usecase.LinkService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Metrics     *middleware.HTTPMetrics
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin")
	admin.Use(sessions.Sessions("shortener_admin", sessionStore(deps.Config)))
	{
		platformAuth := middleware.RequirePlatform(deps.Services.Platforms, deps.Metrics)
		dashboardAuth := middleware.RequireDashboard(deps.Services.DashboardSessions, deps.Metrics)

		linksHandler := handlers.NewLinksHandler(deps.Services.Links, deps.Logger)
		admin.POST("/api/links/", platformAuth, linksHandler.Create)

		loginHandler := handlers.NewLoginHandler(deps.Services.DashboardSessions, deps.Logger)

		loginPost := make([]gin.HandlerFunc, 0, 2)
		if deps.RateLimiter != nil {
			loginPost = append(loginPost, deps.RateLimiter.Limit(
				"login",
				deps.Config.RateLimit.LoginMaxAttempts,
				deps.Config.RateLimit.WindowDuration,
			))
		}
		loginPost = append(loginPost, loginHandler.Submit)

		dashboard := admin.Group("/dashboard")
		dashboard.GET("/login/", loginHandler.Form)
		dashboard.POST("/login/", loginPost...)
		dashboard.POST("/logout/", loginHandler.Logout)

		platformsHandler := handlers.NewPlatformsHandler(deps.Services.Platforms, deps.Logger)
		dashboard.GET("/", dashboardAuth, platformsHandler.Dashboard)
		dashboard.POST("/platforms/", dashboardAuth, platformsHandler.Create)
		dashboard.POST("/platforms/:id/reset-key/", dashboardAuth, platformsHandler.ResetKey)
		dashboard.DELETE("/platforms/:id/", dashboardAuth, platformsHandler.Delete)
	}

	redirectHandler := handlers.NewRedirectHandler(deps.Services.Links, deps.Logger)
	r.GET("/:slug/", redirectHandler.Redirect)

	return r
}

// sessionStore builds the cookie store backing dashboard sessions. The
// cookie is scoped to /admin and lives exactly as long as a login token.
func sessionStore(cfg *config.AppConfig) sessions.Store {
	store := cookie.NewStore([]byte(cfg.Admin.CookieSecret))
	store.Options(sessions.Options{
		Path:     "/admin",
		MaxAge:   cfg.Admin.LoginExpiresAfterSeconds,
		HttpOnly: true,
		Secure:   cfg.App.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	return store
}
