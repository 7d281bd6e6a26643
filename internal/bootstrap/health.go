package bootstrap

import (
	"github.com/eleven-am/aura-studio/internal/description"
	"github.com/eleven-am/aura-studio/internal/health"
	"github.com/eleven-am/aura-studio/internal/session"
	"github.com/eleven-am/aura-studio/internal/verification"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const version = "1.0.0"

func ProvideHealthHandler(
	store session.Store,
	describer description.Describer,
	responder *verification.Responder,
) *health.Handler {
	return health.NewHandler(store, describer, responder, version)
}

func metricsMiddleware(h *health.Handler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h.IncrementRequests()
			h.IncrementConnections()
			defer h.DecrementConnections()
			return next(c)
		}
	}
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	e.Use(metricsMiddleware(h))
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
