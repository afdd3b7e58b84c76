package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "sjsage522/refundscraper/pkg/errors"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "localhost:6379", config.RedisAddr)
	assert.Equal(t, 0, config.RedisDB)
	assert.Equal(t, 1, config.RedisStreamCount)
	assert.Equal(t, "localhost:11211", config.MemcacheAddr)
	assert.Equal(t, 6*time.Hour, config.ScrapeInterval)
	assert.Equal(t, "", config.DatabaseURL)
	assert.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_DB", "1")
	t.Setenv("REDIS_STREAM_COUNT", "4")
	t.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")
	t.Setenv("SCRAPE_INTERVAL_SECONDS", "30")
	t.Setenv("TF1_LISTING_URL", "https://example.com/tf1")
	t.Setenv("DATABASE_URL", "postgres://refund@localhost/refund?sslmode=disable")

	config = LoadConfig()
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 1, config.RedisDB)
	assert.Equal(t, 4, config.RedisStreamCount)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)
	assert.Equal(t, 30*time.Second, config.ScrapeInterval)
	assert.Equal(t, "https://example.com/tf1", config.TF1ListingURL)
	assert.Equal(t, "postgres://refund@localhost/refund?sslmode=disable", config.DatabaseURL)
}

func TestLoadConfigIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	assert.Equal(t, 0, LoadConfig().RedisDB)
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	config.RedisStreamCount = 0
	err := config.Validate()
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConfiguration))

	config = LoadConfig()
	config.M6ListingURL = "/relative/only"
	assert.Error(t, config.Validate())
}
