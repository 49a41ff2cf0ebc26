package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (ARUM_ prefix), flags, or YAML config files.
type Config struct {
	Addr           string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL    string        `usage:"PostgreSQL connection URL (ARUM_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisAddr      string        `default:"localhost:6379" usage:"Redis address for the session cart store" flag:"redis-addr"`
	CartTTL        time.Duration `default:"168h" usage:"Idle TTL for session carts" flag:"cart-ttl"`
	PaymentDueDays int           `default:"3" usage:"Days after order date before payment is overdue" flag:"payment-due-days"`
	RajaOngkir     RajaOngkirConfig
	Midtrans       MidtransConfig
	RateLimit      RateLimitConfig
	CORS           CORSConfig
	Graceful       GracefulConfig
}

// RajaOngkirConfig configures the carrier rate provider.
type RajaOngkirConfig struct {
	BaseURL  string        `default:"https://api.rajaongkir.com/starter" usage:"Rate provider base URL" flag:"rajaongkir-base-url"`
	APIKey   string        `usage:"Rate provider API key (ARUM_RAJAONGKIR_APIKEY)" flag:"rajaongkir-api-key"`
	Origin   string        `usage:"Origin city ID shipments leave from" flag:"shipping-origin"`
	Couriers []string      `default:"jne,pos,tiki" usage:"Couriers to quote, in display order"`
	Timeout  time.Duration `default:"5s" usage:"Per-carrier quote timeout" flag:"rajaongkir-timeout"`
}

// MidtransConfig configures the Snap payment provider.
type MidtransConfig struct {
	BaseURL        string   `default:"https://app.sandbox.midtrans.com" usage:"Snap API base URL" flag:"midtrans-base-url"`
	ServerKey      string   `usage:"Snap server key (ARUM_MIDTRANS_SERVERKEY)" flag:"midtrans-server-key"`
	ExpiryDuration int      `default:"1" usage:"Payment page expiry duration" flag:"midtrans-expiry-duration"`
	ExpiryUnit     string   `default:"day" usage:"Payment page expiry unit" flag:"midtrans-expiry-unit"`
	Channels       []string `usage:"Enabled payment channels (empty enables all)"`
}

// RateLimitConfig controls the per-client fixed window rate limiter.
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

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ARUM",
		Files:     []string{"config.yaml", "/etc/arum/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set ARUM_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL, REDIS_URL, and PORT
// to the application's ARUM_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" && c.RedisAddr == "localhost:6379" {
		c.RedisAddr = v
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
