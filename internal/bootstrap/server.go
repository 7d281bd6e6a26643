package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"github.com/eleven-am/aura-studio/internal/studio"
	"github.com/eleven-am/aura-studio/internal/verification"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

func NewEchoServer(renderer *studio.Renderer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	return e
}

// StartServer starts the page server. The verification responder must already
// be listening.
func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *Config, responder *verification.Responder) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if responder.State() != verification.StateListening {
				return errors.New("verification responder is not listening")
			}
			go func() {
				if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

var ServerModule = fx.Options(
	fx.Provide(NewEchoServer),
	fx.Invoke(StartServer),
)

// Module is the whole application minus the *Config provider. The
// verification module comes before the server so its start hook runs first.
var Module = fx.Options(
	fx.Invoke(ValidateConfig),
	InfrastructureModule,
	VerificationModule,
	ServerModule,
	HandlersModule,
	HealthModule,
)

func Run() {
	fx.New(
		fx.Provide(LoadConfig),
		Module,
	).Run()
}

func ValidateConfig(cfg *Config) error {
	return cfg.Validate()
}
