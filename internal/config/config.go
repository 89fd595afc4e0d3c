package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Session  SessionConfig
	Export   ExportConfig
	Anomaly  AnomalyConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration. An empty Secret turns authentication off.
type JWTConfig struct {
	Secret           string
	APIKeyHash       string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// SessionConfig controls snapshot persistence. Store is "none" or "postgres".
type SessionConfig struct {
	Store            string
	AutosaveInterval time.Duration
}

type ExportConfig struct {
	BasePath    string
	ProductName string
}

type AnomalyConfig struct {
	DonutCell     int
	MinPopulation int
}

// Load reads configuration from the environment. A .env file is optional.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "ninebox"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "ninebox"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("API_TOKEN_SECRET", ""),
		APIKeyHash:       getEnv("API_KEY_HASH", ""),
		AccessExpiration: getEnv("API_TOKEN_EXPIRATION_TIME", "12h"),
	}

	// Session configuration
	autosave, err := time.ParseDuration(getEnv("AUTOSAVE_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTOSAVE_INTERVAL: %w", err)
	}

	config.Session = SessionConfig{
		Store:            strings.ToLower(getEnv("SESSION_STORE", "none")),
		AutosaveInterval: autosave,
	}

	config.Export = ExportConfig{
		BasePath:    getEnv("EXPORT_BASE_PATH", ""),
		ProductName: getEnv("PRODUCT_NAME", "9Boxer"),
	}

	donutCell, err := strconv.Atoi(getEnv("DONUT_CELL", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DONUT_CELL: %w", err)
	}
	minPopulation, err := strconv.Atoi(getEnv("ANOMALY_MIN_POPULATION", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANOMALY_MIN_POPULATION: %w", err)
	}

	config.Anomaly = AnomalyConfig{
		DonutCell:     donutCell,
		MinPopulation: minPopulation,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Session.Store {
	case "none":
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when SESSION_STORE=postgres")
		}
		if c.Session.AutosaveInterval <= 0 {
			return fmt.Errorf("AUTOSAVE_INTERVAL must be positive")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be none or postgres, got %q", c.Session.Store)
	}

	if c.JWT.Secret != "" && c.JWT.APIKeyHash == "" {
		return fmt.Errorf("API_KEY_HASH is required when API_TOKEN_SECRET is set")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid API_TOKEN_EXPIRATION_TIME: %w", err)
	}

	if c.Anomaly.DonutCell < 1 || c.Anomaly.DonutCell > 9 {
		return fmt.Errorf("DONUT_CELL must be between 1 and 9")
	}
	if c.Anomaly.MinPopulation < 1 {
		return fmt.Errorf("ANOMALY_MIN_POPULATION must be at least 1")
	}
	return nil
}

// AuthEnabled reports whether bearer tokens are required.
func (c *Config) AuthEnabled() bool {
	return c.JWT.Secret != ""
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog. Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
