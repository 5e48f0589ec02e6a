package config

import (
	"os"
	"time"
)

// CacheConfig holds the response-cache settings for the list and
// dashboard GET routes. MaxBodyBytes caps the size of bodies worth
// storing; larger responses are served uncached.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads the cache knobs from the environment. The TTL
// default is short because membership and payment lists change on every
// front-desk action.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       getenv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
