package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	apperrors "sjsage522/refundscraper/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Postgres game catalog; empty means in-memory catalog
	DatabaseURL string

	// Scraper configuration
	ScrapeInterval time.Duration
	PageCacheTTL   time.Duration
	HTTPTimeout    time.Duration

	// Listing pages per broadcaster
	TF1ListingURL      string
	M6ListingURL       string
	FranceTVListingURL string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "refunds"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		ScrapeInterval:       time.Duration(getEnvInt("SCRAPE_INTERVAL_SECONDS", 21600)) * time.Second,
		PageCacheTTL:         time.Duration(getEnvInt("PAGE_CACHE_TTL_SECONDS", 3600)) * time.Second,
		HTTPTimeout:          time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		TF1ListingURL:        getEnv("TF1_LISTING_URL", "https://www.tf1.fr/tf1/jeux"),
		M6ListingURL:         getEnv("M6_LISTING_URL", "https://www.6play.fr/jeux-concours"),
		FranceTVListingURL:   getEnv("FRANCETV_LISTING_URL", "https://www.france.tv/jeux"),
		Environment:          getEnv("REFUND_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the worker cannot run with
func (c *Config) Validate() error {
	if c.RedisAddr == "" {
		return apperrors.NewConfiguration("REDIS_ADDR is required", nil)
	}
	if c.RedisStream == "" {
		return apperrors.NewConfiguration("REDIS_STREAM is required", nil)
	}
	if c.RedisStreamCount < 1 {
		return apperrors.NewConfiguration(fmt.Sprintf("REDIS_STREAM_COUNT must be positive, got %d", c.RedisStreamCount), nil)
	}
	if c.ScrapeInterval <= 0 {
		return apperrors.NewConfiguration("SCRAPE_INTERVAL_SECONDS must be positive", nil)
	}
	if c.HTTPTimeout <= 0 {
		return apperrors.NewConfiguration("HTTP_TIMEOUT_SECONDS must be positive", nil)
	}
	for name, raw := range map[string]string{
		"TF1_LISTING_URL":      c.TF1ListingURL,
		"M6_LISTING_URL":       c.M6ListingURL,
		"FRANCETV_LISTING_URL": c.FranceTVListingURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return apperrors.NewConfiguration(name+" must be an absolute URL", err)
		}
	}
	return nil
}

// IsProduction reports whether the worker runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}
