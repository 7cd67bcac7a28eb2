// Package config loads application configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Cache drivers
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Env  string
	Port int

	API   APIConfig
	Cache CacheConfig
	Redis RedisConfig
	Admin AdminConfig
	Log   LogConfig

	// DatabaseURL selects the Postgres preference store; empty keeps
	// preferences in memory.
	DatabaseURL string

	// Timezone is the IANA zone used to compute today and the Sundays.
	Timezone string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CacheConfig struct {
	Driver      string
	CalendarTTL time.Duration
	ListTTL     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AdminConfig struct {
	User         string
	PasswordHash string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		Env:         v.GetString("ENV"),
		Port:        v.GetInt("PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		Timezone:    v.GetString("TIMEZONE"),
	}

	cfg.API = APIConfig{
		BaseURL: v.GetString("API_BASE_URL"),
		Timeout: parseDuration(v.GetString("API_TIMEOUT"), 15*time.Second),
	}

	cfg.Cache = CacheConfig{
		Driver:      strings.ToLower(v.GetString("CACHE_DRIVER")),
		CalendarTTL: parseDuration(v.GetString("CALENDAR_CACHE_TTL"), time.Hour),
		ListTTL:     parseDuration(v.GetString("LIST_CACHE_TTL"), 24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Addr:     v.GetString("REDIS_ADDR"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Admin = AdminConfig{
		User:         v.GetString("ADMIN_USER"),
		PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("TIMEZONE", "America/Sao_Paulo")

	v.SetDefault("API_BASE_URL", "https://api.caminhoanglicano.com.br/api/v1/")
	v.SetDefault("API_TIMEOUT", "15s")

	v.SetDefault("CACHE_DRIVER", CacheMemory)
	v.SetDefault("CALENDAR_CACHE_TTL", "1h")
	v.SetDefault("LIST_CACHE_TTL", "24h")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, production; got %q", c.Env))
	}

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API_BASE_URL is required"))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE %q is not a valid IANA zone: %w", c.Timezone, err))
	}

	switch c.Cache.Driver {
	case CacheMemory:
	case CacheRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when CACHE_DRIVER=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_DRIVER must be one of: memory, redis; got %q", c.Cache.Driver))
	}

	if c.Env == EnvProduction && c.Admin.PasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH is required in production"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.Log.Level))
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, console; got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Location returns the configured timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AdminOpen reports whether the admin endpoints run without authentication,
// which is only allowed in development with no password configured.
func (c *Config) AdminOpen() bool {
	return c.IsDevelopment() && c.Admin.PasswordHash == ""
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}

	return d
}
