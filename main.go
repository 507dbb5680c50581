package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/vladimiradmaev/health-helper/internal/bot"
	"github.com/vladimiradmaev/health-helper/internal/bot/handlers"
	"github.com/vladimiradmaev/health-helper/internal/bot/state"
	"github.com/vladimiradmaev/health-helper/internal/config"
	"github.com/vladimiradmaev/health-helper/internal/database"
	apperrors "github.com/vladimiradmaev/health-helper/internal/errors"
	"github.com/vladimiradmaev/health-helper/internal/logger"
	"github.com/vladimiradmaev/health-helper/internal/recommend"
	"github.com/vladimiradmaev/health-helper/internal/services"
	"github.com/vladimiradmaev/health-helper/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("Starting Health Helper Bot", "storage", cfg.Storage.Backend, "db_driver", cfg.DB.Driver)

	db, err := database.Open(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	var redisClient *redis.Client
	if cfg.Storage.Backend == "redis" {
		redisClient, err = storage.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
	}

	stores := newStores(cfg, db, redisClient)

	var stateManager state.StateManager = state.NewManager()
	if redisClient != nil {
		stateManager = state.NewRedisManager(redisClient, cfg.Redis.SessionTTL)
	}

	aiService := services.NewAIService(cfg.AI)
	userService := services.NewUserService(db)
	sessionService := services.NewSessionService(stores, aiService, cfg.DefaultSettings(),
		recommend.WithLoadingDelay(cfg.AI.LoadingDelay))
	defer sessionService.Close()
	logger.Info("Services initialized successfully")

	telegramBot, err := bot.NewBot(cfg.TelegramToken, handlers.Dependencies{
		UserService:    userService,
		SessionService: sessionService,
		Errors:         apperrors.NewHandler(logger.GetLogger()),
	}, stateManager)
	if err != nil {
		logger.Fatal("Failed to create bot", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Bot is running. Press Ctrl+C to stop.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot stopped with error", "error", err)
	}
}

// newStores picks the storage backends. Session data expires with the redis
// TTL; durable data never expires.
func newStores(cfg *config.Config, db *gorm.DB, client *redis.Client) storage.Stores {
	switch cfg.Storage.Backend {
	case "redis":
		return storage.Stores{
			Durable: storage.NewRedisStore(client, 0),
			Session: storage.NewRedisStore(client, cfg.Redis.SessionTTL),
		}
	case "sql":
		return storage.Stores{
			Durable: storage.NewSQLStore(db),
			Session: storage.NewMemoryStore(),
		}
	default:
		return storage.Stores{
			Durable: storage.NewMemoryStore(),
			Session: storage.NewMemoryStore(),
		}
	}
}
