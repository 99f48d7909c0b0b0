package config

import (
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Options are the environment variables and flags shared by every command.
// Empty values leave the file or default setting untouched.
type Options struct {
	ConfigFile string `long:"config" env:"CONTENT_CONFIG" description:"Optional YAML configuration file"`

	ServiceDomain string `long:"service-domain" env:"MICROCMS_SERVICE_DOMAIN" description:"microCMS service domain"`
	APIKey        string `long:"api-key" env:"MICROCMS_API_KEY" description:"microCMS API key"`
	Endpoint      string `long:"endpoint" env:"MICROCMS_ENDPOINT" description:"microCMS content API name (default: articles)"`
	BaseURL       string `long:"base-url" env:"MICROCMS_BASE_URL" description:"Override the microCMS API root URL"`

	// Static-site builds often expose the same settings with a PUBLIC_ prefix.
	PublicServiceDomain string `long:"public-service-domain" env:"PUBLIC_MICROCMS_SERVICE_DOMAIN" hidden:"true"`
	PublicAPIKey        string `long:"public-api-key" env:"PUBLIC_MICROCMS_API_KEY" hidden:"true"`

	FallbackPath string `long:"fallback" env:"CONTENT_FALLBACK_PATH" description:"Local fallback content (JSON file or Markdown directory)"`
	PageSize     int    `long:"page-size" env:"CONTENT_PAGE_SIZE" description:"Records requested per page (1-100)"`
	MaxPages     int    `long:"max-pages" env:"CONTENT_MAX_PAGES" description:"Hard limit on page requests per full fetch"`

	LogLevel  string `long:"log-level" env:"LOG_LEVEL" description:"Log level: debug, info, warn, error"`
	LogFormat string `long:"log-format" env:"LOG_FORMAT" description:"Log format: text or json"`
}

// Load parses args and the environment into a validated Config.
// It returns (nil, nil) when help was requested.
func Load(args []string) (*Config, error) {
	var opts Options

	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		if IsHelp(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return FromOptions(opts)
}

// FromOptions builds a validated Config from already-parsed options.
func FromOptions(opts Options) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		fileCfg, err := LoadFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}

		cfg = *fileCfg
	}

	opts.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// IsHelp reports whether err is go-flags' help request.
func IsHelp(err error) bool {
	var flagsErr *flags.Error
	return errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp
}

func (o Options) apply(cfg *Config) {
	setString(&cfg.CMS.ServiceDomain, o.PublicServiceDomain)
	setString(&cfg.CMS.ServiceDomain, o.ServiceDomain)
	setString(&cfg.CMS.APIKey, o.PublicAPIKey)
	setString(&cfg.CMS.APIKey, o.APIKey)
	setString(&cfg.CMS.Endpoint, o.Endpoint)
	setString(&cfg.CMS.BaseURL, o.BaseURL)
	setString(&cfg.Fallback.Path, o.FallbackPath)
	setString(&cfg.Logging.Level, o.LogLevel)
	setString(&cfg.Logging.Format, o.LogFormat)

	if o.PageSize != 0 {
		cfg.Fetch.PageSize = o.PageSize
	}

	if o.MaxPages != 0 {
		cfg.Fetch.MaxPages = o.MaxPages
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
