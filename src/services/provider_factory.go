package services

import (
	"fmt"

	"github.com/username/divtracker/backend/src/config"
	"github.com/username/divtracker/backend/src/logger"
)

// NewProviderFromConfig builds the provider named by cfg.DividendProvider,
// wrapped in a response cache when cfg.ProviderCacheExpiration is positive.
func NewProviderFromConfig(cfg *config.AppConfig) (DividendProvider, error) {
	var provider DividendProvider
	switch cfg.DividendProvider {
	case "backend":
		provider = NewBackendProvider(cfg.DividendBackendURL, cfg.ProviderTimeout, cfg.ProviderRatePerSecond)
	case "yahoo":
		provider = NewYahooProvider(cfg.ProviderTimeout, cfg.ProviderRatePerSecond)
	default:
		return nil, fmt.Errorf("unknown dividend provider %q", cfg.DividendProvider)
	}
	logger.L.Info("Dividend provider configured", "provider", cfg.DividendProvider, "cacheExpiration", cfg.ProviderCacheExpiration.String())

	if cfg.ProviderCacheExpiration > 0 {
		provider = NewCachedProvider(provider, cfg.ProviderCacheExpiration)
	}
	return provider, nil
}
