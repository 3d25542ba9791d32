package rest

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/orderdemo/internal/infra/metrics"
	"github.com/totegamma/orderdemo/internal/present/rest/presenter"
)

// Handler serves the endpoints every service exposes.
type Handler struct {
	service string
	started time.Time
	metrics *metrics.Metrics
}

func NewHandler(service string, m *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		started: time.Now(),
		metrics: m,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	if h.metrics != nil {
		e.GET("/metrics", h.metrics.Handler())
	}
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{
		"status":    "UP",
		"service":   h.service,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HTTPErrorHandler renders echo's own errors (unknown routes, bad
// methods) in the service error shape.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	switch code {
	case http.StatusNotFound:
		_ = presenter.NotFound(c, msg)
	case http.StatusInternalServerError:
		_ = presenter.InternalError(c, err)
	default:
		_ = c.JSON(code, echo.Map{"error": msg})
	}
}
