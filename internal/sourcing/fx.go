package sourcing

import (
	"github.com/talentsift/talentsift/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideDiscovery(cfg config.Config) DiscoveryProvider {
	return NewDiscoveryClient(cfg.DiscoveryBaseURL, cfg.DiscoveryAPIKey, cfg.Sourcing.RequestTimeout)
}

func ProvideEnrichment(cfg config.Config) EnrichmentProvider {
	return NewEnrichmentClient(cfg.EnrichBaseURL, cfg.EnrichAPIKey, cfg.Sourcing.RequestTimeout)
}

func ProvideCoordinator(discovery DiscoveryProvider, enrichment EnrichmentProvider, cfg config.Config, log *zap.Logger) *Coordinator {
	return NewCoordinator(discovery, enrichment, cfg.Sourcing, log)
}

var Module = fx.Module("sourcing",
	fx.Provide(ProvideDiscovery),
	fx.Provide(ProvideEnrichment),
	fx.Provide(ProvideCoordinator),
)
