package main

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kakaalameda/telegram-rolebot/internal/bot"
	"github.com/kakaalameda/telegram-rolebot/internal/completion"
	"github.com/kakaalameda/telegram-rolebot/internal/engine"
	"github.com/kakaalameda/telegram-rolebot/internal/models"
	"github.com/kakaalameda/telegram-rolebot/internal/storage"
	"github.com/kakaalameda/telegram-rolebot/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}
	if cfg.Telegram.Token == "" {
		logger.Fatal("Telegram token is not configured (set TELEGRAM_TOKEN)")
	}
	if cfg.OpenAI.APIKey == "" {
		logger.Fatal("OpenAI API key is not configured (set OPENAI_API_KEY)")
	}

	// Initialize storage
	var store storage.Store
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory conversation storage")
		store = storage.NewMemoryStorage(cfg.Bot.MemoryCap)
	} else {
		logger.Info("Using PostgreSQL conversation storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig, cfg.Bot.MemoryCap, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Connect to Telegram first so the engine knows the bot's own identity
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal("Failed to create Telegram client", zap.Error(err))
	}

	// Initialize the completion invoker
	invoker := completion.NewInvoker(completion.Config{
		APIKey:        cfg.OpenAI.APIKey,
		StandardModel: cfg.OpenAI.StandardModel,
		ElevatedModel: cfg.OpenAI.ElevatedModel,
		MaxTokens:     cfg.OpenAI.MaxTokens,
		Temperature:   cfg.OpenAI.Temperature,
	}, logger)

	// Initialize the routing engine
	admins := make([]models.SenderID, 0, len(cfg.Bot.AdminIDs))
	for _, id := range cfg.Bot.AdminIDs {
		admins = append(admins, models.SenderID(id))
	}
	eng := engine.New(engine.Config{
		RestrictedChat:     models.ConversationID(cfg.Bot.RestrictedChatID),
		BotID:              models.SenderID(api.Self.ID),
		CommandMarker:      cfg.Bot.CommandMarker,
		WakeKeyword:        cfg.Bot.WakeKeyword,
		TranslateViKeyword: cfg.Bot.TranslateViKeyword,
		TranslateEnKeyword: cfg.Bot.TranslateEnKeyword,
		StandardPersona:    cfg.Bot.StandardPersona,
		ElevatedPersona:    cfg.Bot.ElevatedPersona,
	}, engine.NewAdminSet(admins), store, invoker, logger)

	// Start the bot
	b := bot.New(api, eng, logger)
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
