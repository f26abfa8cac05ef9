package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBDSN       string
	LogFile     string
	TemplateDir string

	// Marketplace credentials
	NaverClientID     string
	NaverClientSecret string
	EleventhAPIKey    string
	SSGBaseURL        string // crawler collaborator endpoint

	// Alert mail (SMTP)
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string

	// Background price check
	CheckInterval time.Duration
}

func Load() Config {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		DBDSN:             getEnv("DB_DSN", "pricewatch.db"),
		LogFile:           getEnv("LOG_FILE", "./pricewatch.log"),
		TemplateDir:       getEnv("TEMPLATE_DIR", "./web/templates"),
		NaverClientID:     getEnv("NAVER_CLIENT_ID", ""),
		NaverClientSecret: getEnv("NAVER_CLIENT_SECRET", ""),
		EleventhAPIKey:    getEnv("ELEVENTH_API_KEY", ""),
		SSGBaseURL:        getEnv("SSG_BASE_URL", "http://localhost:5000"),
		SMTPHost:          getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUser:          getEnv("GMAIL_EMAIL", ""),
		SMTPPassword:      getEnv("GMAIL_APP_PASSWORD", ""),
		CheckInterval:     getEnvHours("CHECK_INTERVAL_HOURS", 3),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s CHECK_INTERVAL=%s", cfg.Port, cfg.DBDSN, cfg.CheckInterval)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvHours(key string, defaultHours int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Hour
		}
	}
	return time.Duration(defaultHours) * time.Hour
}
