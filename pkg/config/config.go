package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Bot      BotConfig      `mapstructure:"bot"`
	Database DatabaseConfig `mapstructure:"database"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type OpenAIConfig struct {
	APIKey        string  `mapstructure:"api_key"`
	StandardModel string  `mapstructure:"standard_model"`
	ElevatedModel string  `mapstructure:"elevated_model"`
	MaxTokens     int     `mapstructure:"max_tokens"`
	Temperature   float64 `mapstructure:"temperature"`
}

type BotConfig struct {
	RestrictedChatID   int64   `mapstructure:"restricted_chat_id"`
	AdminIDs           []int64 `mapstructure:"admin_ids"`
	WakeKeyword        string  `mapstructure:"wake_keyword"`
	CommandMarker      string  `mapstructure:"command_marker"`
	TranslateViKeyword string  `mapstructure:"translate_vi_keyword"`
	TranslateEnKeyword string  `mapstructure:"translate_en_keyword"`
	MemoryCap          int     `mapstructure:"memory_cap"`
	StandardPersona    string  `mapstructure:"standard_persona"`
	ElevatedPersona    string  `mapstructure:"elevated_persona"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("openai.standard_model", "gpt-3.5-turbo")
	v.SetDefault("openai.elevated_model", "gpt-4")
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("bot.wake_keyword", "keng")
	v.SetDefault("bot.command_marker", "/ask")
	v.SetDefault("bot.translate_vi_keyword", "keng dịch")
	v.SetDefault("bot.translate_en_keyword", "keng translate")
	v.SetDefault("bot.memory_cap", 4)
	v.SetDefault("bot.standard_persona",
		"Bạn là một trợ lý thân thiện. Trả lời ngắn gọn, rõ ràng bằng tiếng Việt.")
	v.SetDefault("bot.elevated_persona",
		"Bạn là một trợ lý cao cấp, trả lời chi tiết và chính xác. Ưu tiên tiếng Việt trừ khi được yêu cầu khác.")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", true)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		dbConfig.UseInMemory = false
		config.Database = dbConfig
	}

	// Get other environment variables
	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	return &config, nil
}
