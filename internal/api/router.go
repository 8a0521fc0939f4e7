package api

import (
	"net"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/rabucejojr/digial-logbook/docs"
	"github.com/rabucejojr/digial-logbook/internal/api/handler"
	"github.com/rabucejojr/digial-logbook/internal/api/metrics"
	"github.com/rabucejojr/digial-logbook/internal/api/middleware"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

// Dependencies carries everything the router needs to build the API.
type Dependencies struct {
	AuthService      ports.AuthService
	ClientService    ports.ClientService
	UserService      ports.UserService
	DashboardService ports.DashboardService

	Health    *handler.HealthHandler
	RateLimit middleware.RateLimitConfig

	// TrustedProxies are the ranges allowed to set X-Forwarded-For. With
	// none, rate limiting keys on the socket peer address.
	TrustedProxies []*net.IPNet

	FrontendURL string
	BodyLimit   string // e.g. "10M"
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.IPExtractor = ipExtractor(deps.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.Secure())
	e.Use(middleware.CORS(deps.FrontendURL))
	e.Use(echomiddleware.Gzip())
	if deps.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(deps.BodyLimit))
	}
	e.Use(metrics.Middleware())

	// --- Operational endpoints (no auth, no rate limit) ---
	e.GET("/", deps.Health.Banner)
	e.GET("/health", deps.Health.Liveness)
	e.GET("/health/ready", deps.Health.Readiness)
	e.GET("/metrics", metrics.Handler())
	e.GET("/api-docs/*", echoSwagger.WrapHandler)

	api := e.Group("/api", middleware.RateLimit(deps.RateLimit))
	requireAuth := middleware.Auth(deps.AuthService)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, requireAuth)
	auth.PUT("/me", authHandler.UpdateMe, requireAuth)
	auth.POST("/change-password", authHandler.ChangePassword, requireAuth)
	auth.POST("/logout", authHandler.Logout, requireAuth)

	// --- Clients ---
	clientHandler := handler.NewClientHandler(deps.ClientService)
	clients := api.Group("/clients", requireAuth)
	clients.GET("", clientHandler.List)
	clients.POST("", clientHandler.Create)
	clients.GET("/stats/overview", clientHandler.Stats)
	clients.GET("/:id", clientHandler.Get)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete)

	// --- Users (admin only) ---
	userHandler := handler.NewUserHandler(deps.UserService)
	users := api.Group("/users", requireAuth, middleware.RequireAdmin())
	users.GET("", userHandler.List)
	users.GET("/stats/overview", userHandler.Stats)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Dashboard ---
	dashboardHandler := handler.NewDashboardHandler(deps.DashboardService)
	dashboard := api.Group("/dashboard", requireAuth)
	dashboard.GET("/overview", dashboardHandler.Overview)
	dashboard.GET("/trends", dashboardHandler.Trends)
	dashboard.GET("/performance", dashboardHandler.Performance)
	dashboard.GET("/alerts", dashboardHandler.Alerts)

	return e
}

// ipExtractor reads the client address from the connection unless trusted
// proxies are configured, in which case only their X-Forwarded-For hops count.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
