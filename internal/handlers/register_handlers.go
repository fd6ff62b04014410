package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/explit/cmd/docs"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/middleware"
	"github.com/SscSPs/explit/internal/platform/config"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteOptions carries the optional collaborators of the routes.
type RouteOptions struct {
	// LoginLimiter throttles login attempts when set.
	LoginLimiter *limiter.Limiter
	Posthog      *utils.PosthogClientWrapper
	// Metrics is served on /metrics when set.
	Metrics http.Handler
}

// SessionCookieFromConfig describes the session cookie configured in cfg.
func SessionCookieFromConfig(cfg *config.Config) middleware.SessionCookie {
	return middleware.SessionCookie{
		Name:   cfg.SessionCookieName,
		MaxAge: cfg.SessionMaxAge,
		Secure: cfg.IsProduction,
	}
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	registerValidators()
	// Engine level so preflight requests, which match no route, are answered too.
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.APIKeyHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.SetHTMLTemplate(newTemplates(cfg.DateFilterLocation))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/resources/manifest.json", getManifest)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	cookie := SessionCookieFromConfig(cfg)
	session := middleware.SessionMiddleware(cookie, services.Session, services.User)

	setupWebRoutes(r, cfg, services, cookie, session, opts)
	setupAPIV1Routes(r, cfg, services, session, opts)
	setupSwaggerRoutes(r, cfg)
}

// setupWebRoutes configures the server rendered pages.
func setupWebRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	cookie middleware.SessionCookie,
	session gin.HandlerFunc,
	opts RouteOptions,
) {
	web := r.Group("", session, middleware.PosthogMiddleware(opts.Posthog))
	web.GET("/", getIndex)

	registerAuthRoutes(web, services, cookie, opts.LoginLimiter, opts.Posthog)
	registerGoogleOAuthRoutes(web, services, cookie, opts.Posthog)

	protected := web.Group("", middleware.RequireUser())
	registerExpenseRoutes(protected, services, cfg.DateFilterLocation, opts.Posthog)
	registerTeamRoutes(protected, services.Team, opts.Posthog)
	registerStatisticsRoutes(protected, services.Reporting, cfg.DateFilterLocation)
	registerAccountRoutes(protected, services.User, cookie, opts.Posthog)
	registerAPITokenRoutes(protected, services.APIToken, opts.Posthog)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	session gin.HandlerFunc,
	opts RouteOptions,
) {
	v1 := r.Group("/api/v1",
		session,
		middleware.APITokenAuth(services.APIToken),
		middleware.RequireAPIUser(),
		middleware.PosthogMiddleware(opts.Posthog),
	)
	registerAPIRoutes(v1, services, cfg.DateFilterLocation, opts.Posthog)
	registerAPITokenAPIRoutes(v1, services.APIToken, opts.Posthog)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
