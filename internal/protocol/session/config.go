package session

import (
	"time"

	"github.com/danmuck/merlinctl/internal/protocol/frame"
)

// BackoffConfig defines poll backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines socket and framing settings. Zero timeouts disable the
// matching deadline.
type Config struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Alignment      frame.Alignment
	Limits         frame.Limits
	Poll           BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		Alignment:      frame.AlignLeft,
		Limits:         frame.DefaultLimits(),
		Poll: BackoffConfig{
			InitialDelay: 100 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     2 * time.Second,
			Jitter:       false,
		},
	}
}

// WithDefaults fills unset limits and poll settings. Timeouts are left as
// given.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Limits.MaxBodyBytes <= 0 {
		c.Limits.MaxBodyBytes = def.Limits.MaxBodyBytes
	}
	if c.Limits.MaxResponseBytes <= 0 {
		c.Limits.MaxResponseBytes = def.Limits.MaxResponseBytes
	}
	if c.Poll.InitialDelay <= 0 {
		c.Poll = def.Poll
	}
	return c
}
