// internal/api/router.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scheme-assist/internal/common/config"
	"scheme-assist/internal/common/logger"
)

// maxBodySize bounds request bodies. Profiles are a handful of fields.
const maxBodySize = "64K"

// NewRouter builds the echo instance with global middleware and every route.
func NewRouter(cfg config.ServerConfig, h *Handler, log logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.BodyLimit(maxBodySize))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(requestLogger(log))

	SetupRoutes(e, h)
	return e
}

func SetupRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/recommend", h.Recommend)
	api.POST("/recommend/markdown", h.RecommendMarkdown)
	api.GET("/categories", h.GetCategories)
	api.GET("/states", h.GetStates)
	api.GET("/schemes", h.GetSchemes)
	api.GET("/stats", h.GetStats)
}

func requestLogger(log logger.Logger) echo.MiddlewareFunc {
	l := log.WithFields(map[string]interface{}{"component": "http"})
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			l.Info("request", map[string]interface{}{
				"method":    v.Method,
				"uri":       v.URI,
				"status":    v.Status,
				"latency":   v.Latency.String(),
				"requestId": v.RequestID,
			})
			return nil
		},
	})
}
