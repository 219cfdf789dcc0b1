package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nurpe/oil-tenders/internal/unit"
)

type HTTPConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type OffersConfig struct {
	APIBase         string
	DesiredTotal    int
	PageSize        int
	Timeout         time.Duration
	RateLimitPerSec float64
	MaxRetries      int
	RefreshInterval time.Duration
}

type DashboardConfig struct {
	SourceUnit unit.Unit
}

type LocalConfig struct {
	StorePath string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Offers      OffersConfig
	Dashboard   DashboardConfig
	Local       LocalConfig
}

// Load reads app.env and the environment. An optional .env file is loaded
// into the environment first; variables already set are not overridden.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLocal is Load without the server-only requirements, for the CLI.
func LoadLocal() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := validateCommon(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("OFFERS_API_BASE", "https://oil-tenders-api.up.railway.app")
	v.SetDefault("OFFERS_DESIRED_TOTAL", 1000)
	v.SetDefault("OFFERS_PAGE_SIZE", 500)
	v.SetDefault("OFFERS_TIMEOUT", "30s")
	v.SetDefault("OFFERS_RATE_LIMIT_PER_SEC", 5)
	v.SetDefault("OFFERS_MAX_RETRIES", 3)
	v.SetDefault("OFFERS_REFRESH_INTERVAL", "0s")
	v.SetDefault("DASHBOARD_SOURCE_UNIT", "m3")
	v.SetDefault("LOCAL_STORE_PATH", "oil-tenders.db")

	_ = v.ReadInConfig()

	sourceUnit, err := unit.Parse(v.GetString("DASHBOARD_SOURCE_UNIT"))
	if err != nil {
		return nil, fmt.Errorf("DASHBOARD_SOURCE_UNIT: %w", err)
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:               v.GetString("HTTP_HOST"),
			Port:               v.GetInt("HTTP_PORT"),
			CORSAllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Offers: OffersConfig{
			APIBase:         strings.TrimRight(v.GetString("OFFERS_API_BASE"), "/"),
			DesiredTotal:    v.GetInt("OFFERS_DESIRED_TOTAL"),
			PageSize:        v.GetInt("OFFERS_PAGE_SIZE"),
			Timeout:         v.GetDuration("OFFERS_TIMEOUT"),
			RateLimitPerSec: v.GetFloat64("OFFERS_RATE_LIMIT_PER_SEC"),
			MaxRetries:      v.GetInt("OFFERS_MAX_RETRIES"),
			RefreshInterval: v.GetDuration("OFFERS_REFRESH_INTERVAL"),
		},
		Dashboard: DashboardConfig{
			SourceUnit: sourceUnit,
		},
		Local: LocalConfig{
			StorePath: v.GetString("LOCAL_STORE_PATH"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.HTTP.CORSAllowedOrigins) == 0 {
		cfg.HTTP.CORSAllowedOrigins = []string{"*"}
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.DB.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(cfg.DB.ConnMaxLifetime); err != nil {
			return fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err)
		}
	}
	return validateCommon(cfg)
}

func validateCommon(cfg *Config) error {
	if cfg.Offers.APIBase == "" {
		return fmt.Errorf("OFFERS_API_BASE is required")
	}
	if cfg.Offers.DesiredTotal <= 0 {
		return fmt.Errorf("OFFERS_DESIRED_TOTAL must be positive")
	}
	if cfg.Offers.PageSize <= 0 || cfg.Offers.PageSize > 500 {
		return fmt.Errorf("OFFERS_PAGE_SIZE must be between 1 and 500")
	}
	if cfg.Offers.RefreshInterval < 0 {
		return fmt.Errorf("OFFERS_REFRESH_INTERVAL must not be negative")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
