package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"wardcore/internal/adapters/exports"
	"wardcore/internal/core"
)

// APIPrefix is the path every API route is mounted under.
const APIPrefix = "/api/v1"

// ServerOptions wires the HTTP server.
type ServerOptions struct {
	Service *core.Service
	// Exports enables /api/v1/exports when set.
	Exports exports.Scheduler
	Logger  zerolog.Logger
	// Gatherer backs /metrics; nil leaves the endpoint unregistered.
	Gatherer prometheus.Gatherer
}

// NewServer builds the echo instance serving the API, /healthz and /metrics.
func NewServer(opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	e.Use(RequestID())
	e.Use(Logger(opts.Logger))
	e.Use(Recovery(opts.Logger))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok", "version": opts.Service.Version()})
	})
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	NewHandler(opts.Service, opts.Exports).RegisterRoutes(e.Group(APIPrefix))
	return e
}
