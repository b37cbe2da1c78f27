package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config is the complete server configuration, loadable from environment
// variables (GYMKART_ prefix), flags, or YAML files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (GYMKART_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL string `default:"" usage:"Base URL prepended to product image paths" flag:"image-base-url"`
	APIKeyPepper string `usage:"HMAC pepper for API key hashing (GYMKART_API_KEY_PEPPER)" flag:"api-key-pepper"`
	Identity     IdentityConfig
	Shipping     ShippingConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// IdentityConfig points at the external identity provider used to seed new
// customer profiles. Profile lookups are disabled when SecretKey is empty.
type IdentityConfig struct {
	BaseURL   string `default:"https://api.clerk.com" usage:"Identity provider API base URL" flag:"identity-base-url"`
	SecretKey string `usage:"Identity provider secret key (GYMKART_IDENTITY_SECRET_KEY)" flag:"identity-secret-key"`
}

// ShippingConfig overrides the standard delivery fee table. Zero values
// keep the defaults (60 inside Dhaka, 120 elsewhere, free from 10000).
type ShippingConfig struct {
	DhakaRate   int `default:"0" usage:"Delivery fee inside Dhaka division" flag:"shipping-dhaka-rate"`
	DefaultRate int `default:"0" usage:"Delivery fee outside Dhaka division" flag:"shipping-default-rate"`
	FreeOver    int `default:"0" usage:"Subtotal from which delivery is free" flag:"shipping-free-over"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "GYMKART",
		Files:     []string{"config.yaml", "/etc/gymkart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set GYMKART_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps hosting-platform environment variables that
// use standard names (DATABASE_URL, PORT) onto the GYMKART_-prefixed
// configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
