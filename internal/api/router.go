package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskify/taskify-api/docs"
	"github.com/taskify/taskify-api/internal/api/handler"
	"github.com/taskify/taskify-api/internal/api/middleware"
	"github.com/taskify/taskify-api/internal/core/domain"
	"github.com/taskify/taskify-api/internal/core/ports"
)

// Deps are the collaborators the router mounts.
type Deps struct {
	Auth  ports.AuthService
	Users ports.UserService
	Tasks ports.TaskService

	// Throttle is optional; nil disables failed-login counting.
	Throttle ports.LoginThrottle

	// Readiness maps dependency names to their ping functions.
	Readiness map[string]handler.Pinger

	Log zerolog.Logger

	// Registry receives the HTTP metrics. Nil uses the default Prometheus
	// registry, which only one router per process may do.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(metricsMiddleware(d.Registry))

	authHandler := handler.NewAuthHandler(d.Auth, d.Throttle, d.Log)
	userHandler := handler.NewUserHandler(d.Users, d.Auth)
	taskHandler := handler.NewTaskHandler(d.Tasks)
	managerHandler := handler.NewManagerHandler(d.Tasks)

	// --- Public ---
	e.POST("/auth", authHandler.Register)
	e.POST("/auth/token", authHandler.Login)

	// --- Authenticated ---
	authn := middleware.Authenticate(d.Auth)

	users := e.Group("/users", authn)
	users.GET("/me", userHandler.Me)
	users.PUT("/password", userHandler.ChangePassword)
	users.PUT("/phone-number", userHandler.UpdatePhoneNumber)

	tasks := e.Group("/tasks", authn)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	manager := e.Group("/manager", authn, middleware.RequireRole(domain.RoleManager))
	manager.GET("/tasks", managerHandler.ListTasks)
	manager.DELETE("/tasks/:id", managerHandler.DeleteTask)

	// --- Operational ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Readiness).Readiness)
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
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
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

func metricsMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "taskify_http",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
