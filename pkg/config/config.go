package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	JWTAccessExpiry time.Duration
	AdminSecretHash string

	// Remote document API settings
	SearchBaseURL   string
	SearchToken     string
	IndexedURL      string
	SiteURL         string
	CallbackBaseURL string

	// Sync behavior
	EligibleTypes  []string
	SyncTimeout    time.Duration
	RequestTimeout time.Duration
	ScrollPageSize int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	syncTimeout := 10 * time.Minute
	if exp := os.Getenv("SYNC_TIMEOUT"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			syncTimeout = parsed
		}
	}

	requestTimeout := 30 * time.Second
	if exp := os.Getenv("SEARCH_REQUEST_TIMEOUT"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			requestTimeout = parsed
		}
	}

	scrollPageSize := 500
	if raw := os.Getenv("SEARCH_SCROLL_PAGE_SIZE"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			scrollPageSize = parsed
		}
	}

	siteURL := getEnv("SITE_URL", "http://localhost:8080")

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=searchsync port=5432 sslmode=disable"),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry: accessExpiry,
		AdminSecretHash: getEnv("ADMIN_SECRET_HASH", ""),
		SearchBaseURL:   getEnv("SEARCH_BASE_URL", ""),
		SearchToken:     getEnv("SEARCH_TOKEN", ""),
		IndexedURL:      getEnv("INDEXED_URL", siteURL),
		SiteURL:         siteURL,
		CallbackBaseURL: getEnv("CALLBACK_BASE_URL", siteURL),
		EligibleTypes:   splitTypes(getEnv("ELIGIBLE_TYPES", "post,page")),
		SyncTimeout:     syncTimeout,
		RequestTimeout:  requestTimeout,
		ScrollPageSize:  scrollPageSize,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitTypes(raw string) []string {
	var types []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			types = append(types, t)
		}
	}
	return types
}
