package config

import "time"

// RateLimitConfig configures the Redis token buckets in front of the
// reserve and cancel endpoints.  Each bucket holds up to Burst requests
// and gains one back every RefillEvery.
type RateLimitConfig struct {
    Enabled     bool
    Burst       int
    RefillEvery time.Duration
    Prefix      string
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  A visitor filling in
// the form needs a handful of attempts, so the defaults allow a burst of
// 10 and one more request every 3s.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:     envBool("RATE_LIMIT_ENABLED", true),
        Burst:       envInt("RATE_LIMIT_BURST", 10),
        RefillEvery: envDur("RATE_LIMIT_REFILL_EVERY", 3*time.Second),
        Prefix:      envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    if cfg.Burst < 1 {
        cfg.Burst = 1
    }
    if cfg.RefillEvery <= 0 {
        cfg.RefillEvery = time.Second
    }
    return cfg
}

// BucketTTL is how long an idle bucket is kept: long enough to refill
// completely, after which it is indistinguishable from a new one.
func (c RateLimitConfig) BucketTTL() time.Duration {
    return time.Duration(c.Burst+1) * c.RefillEvery
}
