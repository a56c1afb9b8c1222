package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile       = ".env"
	defaultPort          = "8080"
	defaultReadTimeout   = 15 * time.Second
	defaultWriteTimeout  = 30 * time.Second
	defaultIdleTimeout   = 120 * time.Second
	defaultSiteName      = "Sullivan Steele"
	defaultBaseURL       = "https://steeleworks.org"
	defaultAssetsDir     = "assets"
	defaultContentDir    = "content"
	defaultTemplatesDir  = "templates"
	defaultPublicDir     = "public"
	defaultCatalogTTL    = 5 * time.Minute
	defaultBackgroundTTL = 24 * time.Hour
	defaultCurrency      = "USD"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server     ServerConfig
	Site       SiteConfig
	Content    ContentConfig
	Checkout   CheckoutConfig
	Background BackgroundConfig
	Analytics  AnalyticsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Dev          bool
}

// SiteConfig carries site identity used across page metadata.
type SiteConfig struct {
	Name    string
	BaseURL string
}

// ContentConfig points at the on-disk content the site serves.
type ContentConfig struct {
	AssetsDir    string
	ContentDir   string
	TemplatesDir string
	PublicDir    string
	CatalogTTL   time.Duration
}

// CheckoutConfig collects payment provider settings.
type CheckoutConfig struct {
	StripeAPIKey string
	Currency     string
	// PaymentLink is shown when no provider is configured.
	PaymentLink string
	SuccessURL  string
	CancelURL   string
}

// BackgroundConfig controls the daily background image sources.
type BackgroundConfig struct {
	TTL          time.Duration
	NASAAPIKey   string
	PexelsAPIKey string
}

// AnalyticsConfig configures client-side instrumentation.
type AnalyticsConfig struct {
	GA4MeasurementID string
	Debug            bool
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file consulted during loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap injects explicit values, taking precedence over the environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv disables reading the process environment (tests).
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load builds a Config from the environment, an optional .env file, and defaults.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	fileValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if v, ok := options.envMap[key]; ok {
				return v, true
			}
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		if v, ok := fileValues[key]; ok {
			return v, true
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			Dev:          boolWithDefault(lookup, "DEV", false),
		},
		Site: SiteConfig{
			Name:    stringWithDefault(lookup, "SITE_NAME", defaultSiteName),
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "SITE_BASE_URL", defaultBaseURL), "/"),
		},
		Content: ContentConfig{
			AssetsDir:    stringWithDefault(lookup, "ASSETS_DIR", defaultAssetsDir),
			ContentDir:   stringWithDefault(lookup, "CONTENT_DIR", defaultContentDir),
			TemplatesDir: stringWithDefault(lookup, "TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:    stringWithDefault(lookup, "PUBLIC_DIR", defaultPublicDir),
			CatalogTTL:   durationWithDefault(lookup, "CATALOG_TTL", defaultCatalogTTL),
		},
		Checkout: CheckoutConfig{
			StripeAPIKey: stringWithDefault(lookup, "STRIPE_API_KEY", ""),
			Currency:     strings.ToUpper(stringWithDefault(lookup, "CHECKOUT_CURRENCY", defaultCurrency)),
			PaymentLink:  stringWithDefault(lookup, "CHECKOUT_PAYMENT_LINK", ""),
			SuccessURL:   stringWithDefault(lookup, "CHECKOUT_SUCCESS_URL", "/cart/confirm?order_id={CHECKOUT_SESSION_ID}"),
			CancelURL:    stringWithDefault(lookup, "CHECKOUT_CANCEL_URL", "/cart"),
		},
		Background: BackgroundConfig{
			TTL:          durationWithDefault(lookup, "BACKGROUND_TTL", defaultBackgroundTTL),
			NASAAPIKey:   stringWithDefault(lookup, "NASA_API_KEY", ""),
			PexelsAPIKey: stringWithDefault(lookup, "PEXELS_API_KEY", ""),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: stringWithDefault(lookup, "GA_MEASUREMENT_ID", ""),
			Debug:            boolWithDefault(lookup, "ANALYTICS_DEBUG", false),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string
	if strings.TrimSpace(cfg.Server.Port) == "" {
		missing = append(missing, "PORT")
	}
	if _, err := strconv.Atoi(strings.TrimPrefix(cfg.Server.Port, ":")); err != nil {
		missing = append(missing, "PORT")
	}
	if strings.TrimSpace(cfg.Site.BaseURL) == "" {
		missing = append(missing, "SITE_BASE_URL")
	}
	if len(cfg.Checkout.Currency) != 3 {
		missing = append(missing, "CHECKOUT_CURRENCY")
	}
	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

// loadDotEnv parses KEY=VALUE lines; a missing file is not an error.
func loadDotEnv(path string) (map[string]string, error) {
	values := map[string]string{}
	if strings.TrimSpace(path) == "" {
		return values, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		val = strings.Trim(val, `"'`)
		if key != "" {
			values[key] = val
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if v, ok := lookup(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if v, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}
