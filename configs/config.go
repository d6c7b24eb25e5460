package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/maheshrc27/postbridge/internal/models"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	LinkTTL    time.Duration
}

type Config struct {
	Accounts        []models.Account
	CaptionFile     string
	Timezone        string
	ThreadsAPIBase  string
	DropboxTokenURL string
	HTTPTimeout     time.Duration
	Schedule        string
	StatusAddr      string
	StatusAPIKey    string
	LogFormat       string
	LogLevel        string
	R2              R2
}

func LoadConfig() *Config {
	return &Config{
		Accounts:        loadAccounts(),
		CaptionFile:     getEnv("CAPTION_FILE", "caption/config.json"),
		Timezone:        getEnv("TIMEZONE", "Asia/Kolkata"),
		ThreadsAPIBase:  strings.TrimRight(getEnv("THREADS_API_BASE", "https://graph.threads.net/v1.0"), "/"),
		DropboxTokenURL: getEnv("DROPBOX_TOKEN_URL", "https://api.dropbox.com/oauth2/token"),
		HTTPTimeout:     getDuration("HTTP_TIMEOUT", 60*time.Second),
		Schedule:        getEnv("SCHEDULE", ""),
		StatusAddr:      getEnv("STATUS_ADDR", ""),
		StatusAPIKey:    getEnv("STATUS_API_KEY", ""),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			LinkTTL:    getDuration("R2_LINK_TTL", time.Hour),
		},
	}
}

// loadAccounts reads ACCOUNT_NAME_1, ACCOUNT_NAME_2, ... and stops at the first gap.
func loadAccounts() []models.Account {
	var accounts []models.Account
	for i := 1; ; i++ {
		name := getEnv(indexed("ACCOUNT_NAME", i), "")
		if name == "" {
			break
		}

		folder := getEnv(indexed("STORAGE_FOLDER", i), getEnv(indexed("DROPBOX_FOLDER", i), ""))

		accounts = append(accounts, models.Account{
			Name:                name,
			ThreadsUserID:       getEnv(indexed("THREADS_USER_ID", i), ""),
			ThreadsAccessToken:  strings.TrimSpace(getEnv(indexed("THREADS_ACCESS_TOKEN", i), "")),
			StorageProvider:     strings.ToLower(getEnv(indexed("STORAGE_PROVIDER", i), models.StorageDropbox)),
			DropboxAppKey:       getEnv(indexed("DROPBOX_APP_KEY", i), ""),
			DropboxAppSecret:    getEnv(indexed("DROPBOX_APP_SECRET", i), ""),
			DropboxRefreshToken: getEnv(indexed("DROPBOX_REFRESH_TOKEN", i), ""),
			Folder:              folder,
			TelegramBotToken:    getEnv(indexed("TELEGRAM_BOT_TOKEN", i), getEnv("TELEGRAM_BOT_TOKEN", "")),
			TelegramChatID:      getEnv(indexed("TELEGRAM_CHAT_ID", i), getEnv("TELEGRAM_CHAT_ID", "")),
		})
	}
	return accounts
}

func indexed(key string, i int) string {
	return fmt.Sprintf("%s_%d", key, i)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}
