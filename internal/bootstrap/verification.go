package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/aura-studio/internal/verification"
	"go.uber.org/fx"
)

func ProvideVerificationResponder(cfg *Config, logger *slog.Logger) *verification.Responder {
	return verification.NewResponder(verification.Config{
		Addr:     cfg.VerificationAddr,
		FilePath: cfg.VerificationFile,
		Path:     cfg.VerificationPath,
	}, logger.With("component", "verification"))
}

// StartVerificationResponder is invoked before the page server so the
// responder is listening before the first interactive request.
func StartVerificationResponder(lc fx.Lifecycle, r *verification.Responder) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return r.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return r.Stop(ctx)
		},
	})
}

var VerificationModule = fx.Options(
	fx.Provide(ProvideVerificationResponder),
	fx.Invoke(StartVerificationResponder),
)
