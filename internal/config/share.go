package config

import (
	"fmt"
	"time"
)

// DefaultShareTTL is how long a report share link stays valid.
const DefaultShareTTL = 7 * 24 * time.Hour

// minShareSecretLength is the shortest accepted signing secret.
const minShareSecretLength = 16

// ShareConfig holds the signing settings for report share links. Sharing is
// disabled when Secret is empty.
type ShareConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// Enabled reports whether share links can be issued.
func (c ShareConfig) Enabled() bool {
	return c.Secret != ""
}

func (c *ShareConfig) normalize() error {
	if c.Secret == "" {
		return nil
	}
	if len(c.Secret) < minShareSecretLength {
		return fmt.Errorf("config error: 'share.secret' must be at least %d characters", minShareSecretLength)
	}
	if c.TTL == 0 {
		c.TTL = DefaultShareTTL
	}
	if c.TTL < time.Hour {
		return fmt.Errorf("config error: 'share.ttl' must be at least 1 hour, got: %s", c.TTL)
	}
	return nil
}
