package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the bot process.
type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	HTTP     HTTPConfig
	Logging  LoggingConfig
	Plugins  PluginConfig
}

// TelegramConfig holds bot transport configuration.
type TelegramConfig struct {
	BotToken string
	AdminIDs []int64
}

// DatabaseConfig holds the sqlite store location.
type DatabaseConfig struct {
	Path string
}

// HTTPConfig holds the admin API configuration.
type HTTPConfig struct {
	Addr          string
	JWTSecret     string
	DashboardUser string
	DashboardPass string
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string
}

// PluginConfig holds plugin activation and credentials.
type PluginConfig struct {
	Active        []string
	WeatherAPIKey string
	GeminiAPIKey  string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	adminIDs, err := parseAdminIDs(getEnv("ADMIN_IDS", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			AdminIDs: adminIDs,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "rolebot.db"),
		},
		HTTP: HTTPConfig{
			Addr:          getEnv("HTTP_ADDR", "0.0.0.0:8080"),
			JWTSecret:     getEnv("JWT_SECRET", ""),
			DashboardUser: getEnv("DASHBOARD_USER", "root"),
			DashboardPass: getEnv("DASHBOARD_PASS", "root"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Plugins: PluginConfig{
			Active:        splitList(getEnv("ACTIVE_PLUGINS", "")),
			WeatherAPIKey: getEnv("WEATHER_API_KEY", ""),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.HTTP.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func parseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_IDS contains invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv gets environment variable with default value.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
