package articles

import (
	"fmt"
	"path/filepath"
	"strings"

	"sitecontent/internal/config"
	"sitecontent/internal/fallback"
	"sitecontent/internal/logger"
	"sitecontent/internal/microcms"
	"sitecontent/internal/provider"
)

// SelectProvider picks the source for the process lifetime: the CMS when
// both its service domain and API key are configured, the local fallback
// otherwise. A failing CMS never switches to the fallback later.
func SelectProvider(cfg *config.Config, log *logger.Logger) (provider.Provider, error) {
	if log == nil {
		log = logger.Discard()
	}

	if cfg.RemoteEnabled() {
		client, err := microcms.NewClient(cfg.CMS, cfg.Retry, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create CMS client: %w", err)
		}

		log.Info("using remote content", "domain", cfg.CMS.ServiceDomain, "endpoint", cfg.CMS.Endpoint)

		return client, nil
	}

	path := cfg.Fallback.Path
	log.Info("CMS not configured, using fallback content", "path", path)

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return fallback.NewJSONSource(path), nil
	}

	return fallback.NewCollectionSource(path, log), nil
}

// NewFromConfig selects the provider and builds a fetcher around it.
func NewFromConfig(cfg *config.Config, log *logger.Logger) (*Fetcher, error) {
	p, err := SelectProvider(cfg, log)
	if err != nil {
		return nil, err
	}

	return New(p, Options{
		Endpoint: cfg.CMS.Endpoint,
		PageSize: cfg.Fetch.PageSize,
		MaxPages: cfg.Fetch.MaxPages,
		Logger:   log,
	}), nil
}
