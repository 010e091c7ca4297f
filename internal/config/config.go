package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
)

var (
	ErrMissingTelegramChat = errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	ErrInvalidLogFormat    = errors.New("LOG_FORMAT must be console or json")
)

type Config struct {
	Review        ReviewConfig
	Log           LogConfig
	Database      DatabaseConfig
	Metrics       MetricsConfig
	Telegram      TelegramConfig
	MaxIterations int
}

type ReviewConfig struct {
	Command []string
	Timeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// DatabaseConfig - пустой URL выключает историю запусков
type DatabaseConfig struct {
	URL string
}

type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

func (t TelegramConfig) Enabled() bool {
	return t.Token != ""
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present; real env vars win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		Review: ReviewConfig{
			Command: strings.Fields(getEnvOrDefault("REVIEW_COMMAND", "tessl skill review")),
			Timeout: time.Duration(getEnvIntOrDefault("REVIEW_TIMEOUT_SEC", 60)) * time.Second,
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "console"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
			Job:            getEnvOrDefault("PUSHGATEWAY_JOB", "skill_optimizer"),
		},
		Telegram: TelegramConfig{
			Token:  os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID: getEnvInt64OrDefault("TELEGRAM_CHAT_ID", 0),
		},
		MaxIterations: getEnvIntOrDefault("MAX_ITERATIONS", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Review.Command) == 0 {
		return domain.ErrEmptyReviewCommand
	}
	if c.Review.Timeout <= 0 {
		return domain.ErrInvalidTimeout
	}
	if c.MaxIterations <= 0 {
		return domain.ErrInvalidMaxIterations
	}
	if c.Telegram.Enabled() && c.Telegram.ChatID == 0 {
		return ErrMissingTelegramChat
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return ErrInvalidLogFormat
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}
