package bootstrap

import (
	"log/slog"
	"os"

	"github.com/eleven-am/aura-studio/internal/aura"
	"github.com/eleven-am/aura-studio/internal/description"
	"github.com/eleven-am/aura-studio/internal/session"
	"github.com/eleven-am/aura-studio/internal/studio"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideDescriber(cfg *Config) description.Describer {
	return description.NewClient(description.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.DescriptionModel,
		Timeout: cfg.RemoteTimeout,
	})
}

func ProvideGenerator(cfg *Config) aura.Generator {
	return aura.NewClient(aura.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.ImageModel,
		Timeout: cfg.RemoteTimeout,
	})
}

func ProvideStudioService(cfg *Config, describer description.Describer, generator aura.Generator, store session.Store, logger *slog.Logger) *studio.Service {
	return studio.NewService(
		studio.Config{TempDir: cfg.TempDir},
		describer,
		generator,
		store,
		logger.With("handler", "studio"),
	)
}

func ProvideStudioHandler(cfg *Config, service *studio.Service, sessions *session.Manager, renderer *studio.Renderer, logger *slog.Logger) *studio.Handler {
	return studio.NewHandler(service, sessions, renderer, cfg.MaxUploadBytes, logger.With("handler", "page"))
}

func RegisterRoutes(e *echo.Echo, h *studio.Handler) {
	h.RegisterRoutes(e)
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideDescriber,
		ProvideGenerator,
		studio.NewRenderer,
		ProvideStudioService,
		ProvideStudioHandler,
	),
	fx.Invoke(RegisterRoutes),
)
