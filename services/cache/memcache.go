package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"sjsage522/refundscraper/logger"
	apperrors "sjsage522/refundscraper/pkg/errors"
)

// ErrMiss is returned by Get for absent keys
var ErrMiss = memcache.ErrCacheMiss

const maxKeyLength = 250

// MemcacheService implements CacheService using memcache
type MemcacheService struct {
	client    *memcache.Client
	keyPrefix string
	log       *logger.Logger
}

// NewMemcacheService creates a new memcache service. Keys are namespaced
// under "refund:".
func NewMemcacheService(serverAddr string) *MemcacheService {
	return &MemcacheService{
		client:    memcache.New(serverAddr),
		keyPrefix: "refund:",
		log:       logger.ForCache(),
	}
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(m.key(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, apperrors.NewCache("memcache", "get "+key, err)
	}
	return item.Value, nil
}

// Set stores a value in memcache with an expiration time
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	err := m.client.Set(&memcache.Item{
		Key:        m.key(key),
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
	if err != nil {
		return apperrors.NewCache("memcache", "set "+key, err)
	}
	return nil
}

// Delete removes a value from memcache
func (m *MemcacheService) Delete(key string) error {
	err := m.client.Delete(m.key(key))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return apperrors.NewCache("memcache", "delete "+key, err)
	}
	return nil
}

// key makes a memcache-safe key: at most 250 bytes, no spaces or control
// characters. Unsafe keys are replaced by their hash.
func (m *MemcacheService) key(key string) string {
	k := m.keyPrefix + key
	if len(k) <= maxKeyLength && safeKey(k) {
		return k
	}
	sum := sha256.Sum256([]byte(key))
	hashed := m.keyPrefix + hex.EncodeToString(sum[:])
	m.log.Debug().Str("key", key).Str("hashed", hashed).Msg("Cache key hashed")
	return hashed
}

func safeKey(k string) bool {
	for i := 0; i < len(k); i++ {
		if k[i] <= ' ' || k[i] == 0x7f {
			return false
		}
	}
	return true
}
