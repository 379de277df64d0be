package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"bookstagram/internal/config"
	"bookstagram/internal/httpapi/handlers"
	"bookstagram/internal/httpapi/middlewares"
	"bookstagram/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type API struct {
	cfg     config.Config
	logger  *slog.Logger
	handler *handlers.Handler
}

func New(cfg config.Config, svc *service.Service, logger *slog.Logger) *API {
	return &API{
		cfg:     cfg,
		logger:  logger,
		handler: handlers.New(svc, logger),
	}
}

func (a *API) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(bodyLimit(a.cfg.MaxUploadBytes)))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
				a.logger.Error("request", attrs...)
				return nil
			}
			a.logger.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: a.cfg.CORSAllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderAccept,
			echo.HeaderContentType,
		},
		ExposeHeaders: []string{
			"RateLimit-Limit",
			"RateLimit-Remaining",
			"RateLimit-Reset",
			"Retry-After",
		},
		MaxAge: 600,
	}))
	e.Use(middlewares.NewRateLimitMiddleware())

	a.registerRoutes(e)
	return e
}

// bodyLimit renders the configured byte ceiling in the "<n>M" form echo's
// body limit middleware expects, rounding up so small ceilings still apply.
func bodyLimit(maxBytes int64) string {
	mb := maxBytes / (1 << 20)
	if maxBytes%(1<<20) != 0 || mb == 0 {
		mb++
	}
	return fmt.Sprintf("%dM", mb)
}
