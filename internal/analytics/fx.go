package analytics

import (
	"github.com/talentsift/talentsift/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Provide(cfg config.Config, log *zap.Logger) Emitter {
	if cfg.AnalyticsWebhookURL == "" {
		return NoOpEmitter{}
	}
	return NewWebhookEmitter(cfg.AnalyticsWebhookURL, log)
}

var Module = fx.Module("analytics",
	fx.Provide(Provide),
)
