package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	DataDir    string
	UploadDir  string
	StaticDir  string
	ArchiveDSN string
	BaseURL    string
	LogFile    string

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	OwnerEmail string

	AdminUser     string
	AdminPassHash string

	PendingTTL time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() Config {
	// A local .env is optional, same convention as the hosting setup.
	_ = godotenv.Load()

	cfg := Config{
		Port:          getenv("PORT", "3000"),
		DataDir:       getenv("DATA_DIR", "./data"),
		UploadDir:     getenv("UPLOAD_DIR", "./web/static/uploads"),
		StaticDir:     getenv("STATIC_DIR", "./web/static"),
		ArchiveDSN:    getenv("ARCHIVE_DSN", "shine.db"),
		BaseURL:       os.Getenv("BASE_URL"),
		LogFile:       getenv("LOG_FILE", "./shinejewelry.log"),
		SMTPHost:      getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		OwnerEmail:    getenv("STORE_OWNER_EMAIL", "owner@shinejewelry.test"),
		AdminUser:     getenv("ADMIN_USER", "admin"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}

	cfg.SMTPPort = 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SMTPPort = n
		}
	}

	ttlHours := 72
	if v := os.Getenv("PENDING_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttlHours = n
		}
	}
	cfg.PendingTTL = time.Duration(ttlHours) * time.Hour

	log.Printf("[config] PORT=%s DATA_DIR=%s UPLOAD_DIR=%s ARCHIVE_DSN=%s BASE_URL=%s SMTP=%s:%d OWNER=%s",
		cfg.Port, cfg.DataDir, cfg.UploadDir, cfg.ArchiveDSN, cfg.BaseURL, cfg.SMTPHost, cfg.SMTPPort, cfg.OwnerEmail)
	return cfg
}
