package module

import (
	"time"

	"augeo/internal/platform/config"
)

// Options controls poller behavior. Values may also be read from env
type Options struct {
	MaxPages            int
	DefaultPollInterval time.Duration
	Tick                time.Duration
	BatchSize           int
	RetryBase           time.Duration
	MaxAttempts         int
}

// FromConfig reads options using POLLER_ prefix
func FromConfig(cfg config.Conf) Options {
	p := cfg.Prefix("POLLER_")
	return Options{
		MaxPages:            p.MayInt("MAX_PAGES", 10),
		DefaultPollInterval: p.MayDuration("DEFAULT_INTERVAL", time.Minute),
		Tick:                p.MayDuration("TICK", 500*time.Millisecond),
		BatchSize:           p.MayInt("BATCH", 16),
		RetryBase:           p.MayDuration("RETRY_BASE", 500*time.Millisecond),
		MaxAttempts:         p.MayInt("MAX_ATTEMPTS", 10),
	}
}
