package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vladimiradmaev/health-helper/internal/domain"
	"github.com/vladimiradmaev/health-helper/internal/logger"
)

type Config struct {
	TelegramToken string `validate:"required"`
	AI            AIConfig
	DB            DBConfig
	Redis         RedisConfig
	Storage       StorageConfig
	Logger        LoggerConfig
}

// AIConfig holds provider settings and the defaults given to new users.
// GeminiAPIKey and OpenAIAPIKey are operator keys; see AIService.
type AIConfig struct {
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string        `validate:"omitempty,url"`
	DefaultTier   string        `validate:"oneof=free lite pro"`
	DefaultModel  string        `validate:"required"`
	Timeout       time.Duration `validate:"gt=0"`
	LoadingDelay  time.Duration `validate:"gte=0"`
}

// KeyFor returns the operator key for provider, if configured.
func (c AIConfig) KeyFor(provider domain.Provider) string {
	switch provider {
	case domain.ProviderGemini:
		return c.GeminiAPIKey
	case domain.ProviderOpenAI:
		return c.OpenAIAPIKey
	default:
		return ""
	}
}

type DBConfig struct {
	Driver   string `validate:"oneof=postgres sqlite"`
	Host     string `validate:"required_if=Driver postgres"`
	Port     string `validate:"required_if=Driver postgres"`
	User     string
	Password string
	DBName   string `validate:"required_if=Driver postgres"`
	Path     string `validate:"required_if=Driver sqlite"`
}

type RedisConfig struct {
	Host       string
	Port       string
	Password   string
	DB         int           `validate:"gte=0"`
	SessionTTL time.Duration `validate:"gte=0"`
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type StorageConfig struct {
	Backend string `validate:"oneof=memory redis sql"`
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string `validate:"oneof=json text"`
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func Load() (*Config, error) {
	timeout, err := getEnvDuration("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	delay, err := getEnvDuration("AI_LOADING_DELAY", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getEnvDuration("REDIS_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AI: AIConfig{
			GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
			OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
			DefaultTier:   getEnvOrDefault("AI_DEFAULT_TIER", string(domain.TierFree)),
			DefaultModel:  getEnvOrDefault("AI_DEFAULT_MODEL", string(domain.DefaultModel().ID)),
			Timeout:       timeout,
			LoadingDelay:  delay,
		},
		DB: DBConfig{
			Driver:   getEnvOrDefault("DB_DRIVER", "postgres"),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "health_helper"),
			Path:     getEnvOrDefault("DB_PATH", "data/health_helper.db"),
		},
		Redis: RedisConfig{
			Host:       getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:       getEnvOrDefault("REDIS_PORT", "6379"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         redisDB,
			SessionTTL: sessionTTL,
		},
		Storage: StorageConfig{
			Backend: getEnvOrDefault("STORAGE_BACKEND", "memory"),
		},
		Logger: LoggerConfig{
			Level:      logger.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "logs/app.log"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}, nil
}

// Validate checks struct constraints and that the default model is in the catalog.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, ok := domain.LookupModel(domain.ModelID(c.AI.DefaultModel)); !ok {
		return fmt.Errorf("invalid configuration: unknown AI_DEFAULT_MODEL %q", c.AI.DefaultModel)
	}
	return nil
}

// DefaultSettings are the AI settings a new user starts with.
func (c *Config) DefaultSettings() domain.Settings {
	tier, _ := domain.ParseTier(c.AI.DefaultTier)
	model := domain.ModelID(c.AI.DefaultModel)
	s := domain.Settings{Tier: tier, Model: model}
	if m, ok := domain.LookupModel(model); ok {
		s.APIKey = c.AI.KeyFor(m.Provider)
	}
	return s
}
