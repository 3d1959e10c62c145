package config

import "time"

// CacheConfig tunes the Redis response cache applied to dashboard and
// list reads. When Enabled is false or no Redis client is available the
// middleware becomes a pass-through. Occupancy-mutating routes are
// never cached; the store stays the single source of truth for state.
type CacheConfig struct {
	TTL     time.Duration
	Prefix  string
	Enabled bool
}

// LoadCacheConfig reads cache settings from the environment, with
// defaults suitable for a dashboard refreshed every few seconds.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 10*time.Second),
		Prefix:  getenv("CACHE_PREFIX", "cache"),
	}
}
