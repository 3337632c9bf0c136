package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API      APIConfig
	DB       DBConfig
	Telegram TelegramConfig
	RabbitMQ RabbitMQConfig

	// CredentialStore is "postgres" (default) or "memory".
	CredentialStore string
	// AutoMigrate applies the embedded migrations at startup (postgres store only).
	AutoMigrate bool
}

// APIConfig points at the remote café backend.
type APIConfig struct {
	BaseURL      string
	ImageBaseURL string // menu images are served relative to this
	MakerID      string // sent as the makerID header on every request
	Timeout      time.Duration
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type TelegramConfig struct {
	Token         string
	KitchenChatID int64 // receives a short card for every placed order; 0 disables
}

type RabbitMQConfig struct {
	URL   string // empty disables order events
	Queue string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	baseURL := strings.TrimRight(getEnv("CAFE_API_URL", "https://ukkcafe.smktelkom-mlg.sch.id/api"), "/")

	return &Config{
		API: APIConfig{
			BaseURL:      baseURL,
			ImageBaseURL: strings.TrimRight(getEnv("CAFE_IMAGE_URL", strings.TrimSuffix(baseURL, "/api")), "/"),
			MakerID:      getEnv("CAFE_MAKER_ID", "47"),
			Timeout:      getEnvDuration("CAFE_API_TIMEOUT", 15*time.Second),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "cafe_pos"),
		},
		Telegram: TelegramConfig{
			Token:         getEnv("TOKEN", ""),
			KitchenChatID: int64(getEnvInt("KITCHEN_CHAT_ID", 0)),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("RABBITMQ_QUEUE", "cafe_orders"),
		},
		CredentialStore: strings.ToLower(getEnv("CREDENTIAL_STORE", "postgres")),
		AutoMigrate:     getEnvBool("AUTO_MIGRATE"),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getEnvBool is true for "1" or "true" in any case.
func getEnvBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true")
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
