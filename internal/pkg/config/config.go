package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Map       MapConfig       `mapstructure:"map"`
	Warmer    WarmerConfig    `mapstructure:"warmer"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

// BackendConfig points at the rental REST backend.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Timeout        int    `mapstructure:"timeout"`
	CacheTTL       int    `mapstructure:"cache_ttl"`
	MaxUploadBytes int    `mapstructure:"max_upload_bytes"`
}

// MapConfig tunes marker rendering.
type MapConfig struct {
	DebounceMs        int     `mapstructure:"debounce_ms"`
	UniversityMinZoom float64 `mapstructure:"university_min_zoom"`
	NearbyRadiusKm    float64 `mapstructure:"nearby_radius_km"`
}

// WarmerConfig drives the catalog warmer.
type WarmerConfig struct {
	Interval int `mapstructure:"interval"` // seconds
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:4200")
	v.SetDefault("backend.base_url", "http://localhost:3000")
	v.SetDefault("backend.timeout", 10)
	v.SetDefault("backend.cache_ttl", 300)
	v.SetDefault("backend.max_upload_bytes", 1024*1024)
	v.SetDefault("map.debounce_ms", 200)
	v.SetDefault("map.university_min_zoom", 13.0)
	v.SetDefault("map.nearby_radius_km", 2.0)
	v.SetDefault("warmer.interval", 60)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: UNIRENTA_BACKEND_BASE_URL → backend.base_url
	v.SetEnvPrefix("UNIRENTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, "backend.timeout must be positive")
	}
	if c.Backend.CacheTTL < 0 {
		errs = append(errs, "backend.cache_ttl must not be negative")
	}
	if c.Backend.MaxUploadBytes <= 0 {
		errs = append(errs, "backend.max_upload_bytes must be positive")
	}
	if c.Map.DebounceMs <= 0 {
		errs = append(errs, "map.debounce_ms must be positive")
	}
	if c.Map.UniversityMinZoom < 0 || c.Map.UniversityMinZoom > 22 {
		errs = append(errs, fmt.Sprintf("map.university_min_zoom must be 0-22, got %v", c.Map.UniversityMinZoom))
	}
	if c.Map.NearbyRadiusKm <= 0 {
		errs = append(errs, "map.nearby_radius_km must be positive")
	}
	if c.Warmer.Interval <= 0 {
		errs = append(errs, "warmer.interval must be positive")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
