package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultSiteOrigin  = "https://www.agentskill.work"
	DefaultPublicAPI   = "/api"
	DefaultInternalAPI = "http://localhost:8000"
)

// Cache backends understood by CACHE_BACKEND.
const (
	CacheMemory   = "memory"
	CachePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	PublicAPIURL   string
	InternalAPIURL string
	SiteOrigin     string
	Port           string
	LogLevel       string

	GoogleVerification string
	BingVerification   string
	BaiduVerification  string

	UmamiScriptURL string
	UmamiWebsiteID string

	CacheBackend string
	Postgres     PostgresConfig
}

// PostgresConfig configures the shared response cache.
type PostgresConfig struct {
	User            string
	Password        string
	Database        string
	Host            string
	Port            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders a lib/pq key/value connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s port=%s host=%s sslmode=disable",
		p.User, p.Password, p.Database, p.Port, p.Host,
	)
}

// NewConfig creates a new Config instance
func NewConfig() *Config {
	return &Config{}
}

// Load loads configuration from the optional .env file and environment variables
func (c *Config) Load() error {
	v := viper.GetViper()
	v.SetDefault("CONFIG_FILE", ".env")
	v.SetDefault("API_URL", DefaultPublicAPI)
	v.SetDefault("SITE_ORIGIN", DefaultSiteOrigin)
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CACHE_BACKEND", CacheMemory)
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.AutomaticEnv()

	v.SetConfigFile(v.GetString("CONFIG_FILE"))
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return c.fromViper(v)
}

func (c *Config) fromViper(v *viper.Viper) error {
	c.PublicAPIURL = strings.TrimSpace(v.GetString("API_URL"))
	c.InternalAPIURL = strings.TrimSpace(v.GetString("INTERNAL_API_URL"))
	c.Port = v.GetString("PORT")
	c.LogLevel = strings.ToLower(v.GetString("LOG_LEVEL"))

	origin, err := normalizeOrigin(v.GetString("SITE_ORIGIN"))
	if err != nil {
		return err
	}
	c.SiteOrigin = origin

	c.GoogleVerification = v.GetString("GOOGLE_SITE_VERIFICATION")
	c.BingVerification = v.GetString("BING_SITE_VERIFICATION")
	c.BaiduVerification = v.GetString("BAIDU_SITE_VERIFICATION")
	c.UmamiScriptURL = v.GetString("UMAMI_SCRIPT_URL")
	c.UmamiWebsiteID = v.GetString("UMAMI_WEBSITE_ID")

	c.CacheBackend = strings.ToLower(v.GetString("CACHE_BACKEND"))
	switch c.CacheBackend {
	case CacheMemory:
	case CachePostgres:
		c.Postgres = PostgresConfig{
			User:            v.GetString("POSTGRES_USER"),
			Password:        v.GetString("POSTGRES_PASSWORD"),
			Database:        v.GetString("POSTGRES_DB"),
			Host:            v.GetString("POSTGRES_HOST"),
			Port:            v.GetString("POSTGRES_PORT"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("POSTGRES_DB is required when CACHE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q", c.CacheBackend)
	}

	return nil
}

// ServerAPIBase is the upstream base URL used from the server side. The internal
// URL avoids a public round-trip; a relative public URL is only meaningful to
// browsers, so the server falls back to the local API.
func (c *Config) ServerAPIBase() string {
	if c.InternalAPIURL != "" {
		return strings.TrimSuffix(c.InternalAPIURL, "/")
	}
	if strings.HasPrefix(c.PublicAPIURL, "http") {
		return strings.TrimSuffix(c.PublicAPIURL, "/")
	}
	return DefaultInternalAPI
}

func normalizeOrigin(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultSiteOrigin
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid SITE_ORIGIN %q", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
