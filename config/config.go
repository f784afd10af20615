package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Cloudflare R2 — хранилище скриншотов чеков.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string

	// Resend — доставка напоминаний. Пустой ключ переключает на
	// noop-нотификатор.
	ResendAPIKey    string
	ResendFromEmail string

	ReminderInterval  time.Duration
	ReminderBatchSize int
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080" // Порт по умолчанию
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	reminderInterval := time.Minute
	if intervalStr := os.Getenv("REMINDER_INTERVAL"); intervalStr != "" {
		reminderInterval, err = time.ParseDuration(intervalStr)
		if err != nil || reminderInterval <= 0 {
			return nil, fmt.Errorf("invalid REMINDER_INTERVAL environment variable: %q", intervalStr)
		}
	}

	reminderBatchSize := 50
	if batchStr := os.Getenv("REMINDER_BATCH_SIZE"); batchStr != "" {
		reminderBatchSize, err = strconv.Atoi(batchStr)
		if err != nil || reminderBatchSize <= 0 {
			return nil, fmt.Errorf("invalid REMINDER_BATCH_SIZE environment variable: %q", batchStr)
		}
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),

		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		ResendFromEmail: os.Getenv("RESEND_FROM_EMAIL"),

		ReminderInterval:  reminderInterval,
		ReminderBatchSize: reminderBatchSize,
	}

	return cfg, nil
}

// R2Configured reports whether all R2 settings are present.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2BucketName != ""
}
