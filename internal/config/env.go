package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	GinMode     string
	CORSOrigins []string

	// Store (Redis / Upstash). Empty RedisURL selects the in-memory store.
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Collaborators
	GeminiAPIKey       string
	GeminiModel        string
	GeminiTier         string
	KieAPIKey          string
	KieCreateTaskURL   string
	KieRecordInfoURL   string
	KiePollIntervalSec int
	KiePollTimeoutSec  int
	CloudinaryCloud    string
	CloudinaryKey      string
	CloudinarySecret   string
	BlotatoAPIKey      string
	BlotatoAccountID   string
	ScrapingDogAPIKey  string

	// Scheduling
	CronSecret       string
	MaxPostsPerDay   int
	PostingTimezone  string
	SweepIntervalMin int

	// API rate limiting
	RateLimitReqs   int
	RateLimitWindow int
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTier:         getEnv("GEMINI_TIER", "free"),
		KieAPIKey:          getEnv("KIE_API_KEY", ""),
		KieCreateTaskURL:   getEnv("KIE_CREATE_TASK_URL", "https://api.kie.ai/api/v1/jobs/createTask"),
		KieRecordInfoURL:   getEnv("KIE_RECORD_INFO_URL", "https://api.kie.ai/api/v1/jobs/recordInfo"),
		KiePollIntervalSec: getEnvInt("KIE_POLL_INTERVAL_SEC", 5),
		KiePollTimeoutSec:  getEnvInt("KIE_POLL_TIMEOUT_SEC", 120),
		CloudinaryCloud:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryKey:      getEnv("CLOUDINARY_API_KEY", ""),
		CloudinarySecret:   getEnv("CLOUDINARY_API_SECRET", ""),
		BlotatoAPIKey:      getEnv("BLOTATO_API_KEY", ""),
		BlotatoAccountID:   getEnv("BLOTATO_ACCOUNT_ID", ""),
		ScrapingDogAPIKey:  getEnv("SCRAPINGDOG_API_KEY", ""),

		CronSecret:       getEnv("CRON_SECRET", ""),
		MaxPostsPerDay:   getEnvInt("MAX_POSTS_PER_DAY", 5),
		PostingTimezone:  getEnv("POSTING_TIMEZONE", "America/New_York"),
		SweepIntervalMin: getEnvInt("SWEEP_INTERVAL_MIN", 30),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	if cfg.BlotatoAPIKey == "" {
		return nil, fmt.Errorf("BLOTATO_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
