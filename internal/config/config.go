package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/merlinctl/internal/logging"
	"github.com/danmuck/merlinctl/internal/merlin"
	"github.com/danmuck/merlinctl/internal/protocol/frame"
	"github.com/danmuck/merlinctl/internal/protocol/session"
)

const (
	ChannelCommand = "command"
	ChannelData    = "data"
)

var ErrInvalid = errors.New("config: invalid")

// Config is the resolved client configuration.
type Config struct {
	Host             string
	Channel          string
	Port             int
	ConnectTimeout   time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	Alignment        frame.Alignment
	MaxResponseBytes int
	LogLevel         string
	Presets          []merlin.Preset
}

type fileConfig struct {
	Host             string       `toml:"host"`
	Channel          string       `toml:"channel"`
	Port             int          `toml:"port"`
	ConnectTimeout   string       `toml:"connect_timeout"`
	ReadTimeout      string       `toml:"read_timeout"`
	WriteTimeout     string       `toml:"write_timeout"`
	LengthAlignment  string       `toml:"length_alignment"`
	MaxResponseBytes int          `toml:"max_response_bytes"`
	LogLevel         string       `toml:"log_level"`
	Presets          []filePreset `toml:"preset"`
}

type filePreset struct {
	Name  string     `toml:"name"`
	Steps []fileStep `toml:"step"`
	Exec  string     `toml:"exec"`
}

type fileStep struct {
	Variable string `toml:"variable"`
	Value    any    `toml:"value"`
}

func Default() Config {
	def := session.DefaultConfig()
	return Config{
		Host:             "127.0.0.1",
		Channel:          ChannelCommand,
		ConnectTimeout:   def.ConnectTimeout,
		ReadTimeout:      def.ReadTimeout,
		WriteTimeout:     def.WriteTimeout,
		Alignment:        def.Alignment,
		MaxResponseBytes: def.Limits.MaxResponseBytes,
		LogLevel:         "info",
	}
}

// Load reads path and applies every key it defines over Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load merlinctl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
	}

	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("channel") {
		cfg.Channel = strings.ToLower(strings.TrimSpace(raw.Channel))
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"connect_timeout", raw.ConnectTimeout, &cfg.ConnectTimeout},
		{"read_timeout", raw.ReadTimeout, &cfg.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.WriteTimeout},
	} {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}
	if meta.IsDefined("length_alignment") {
		a, err := frame.ParseAlignment(raw.LengthAlignment)
		if err != nil {
			return Config{}, fmt.Errorf("parse length_alignment: %w", err)
		}
		cfg.Alignment = a
	}
	if meta.IsDefined("max_response_bytes") {
		cfg.MaxResponseBytes = raw.MaxResponseBytes
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("preset") {
		presets, err := parsePresets(raw.Presets)
		if err != nil {
			return Config{}, err
		}
		cfg.Presets = presets
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no client could run with.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Host) == "" {
		return fmt.Errorf("%w: host is required", ErrInvalid)
	}
	switch cfg.Channel {
	case ChannelCommand, ChannelData:
	default:
		return fmt.Errorf("%w: unknown channel %q", ErrInvalid, cfg.Channel)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, cfg.Port)
	}
	if cfg.Alignment != frame.AlignLeft && cfg.Alignment != frame.AlignRight {
		return fmt.Errorf("%w: unknown length alignment %d", ErrInvalid, int(cfg.Alignment))
	}
	if cfg.MaxResponseBytes <= 0 {
		return fmt.Errorf("%w: max_response_bytes must be positive", ErrInvalid)
	}
	if cfg.ConnectTimeout < 0 || cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalid)
	}
	if cfg.LogLevel != "" {
		if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
			return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, cfg.LogLevel)
		}
	}
	seen := make(map[string]bool, len(cfg.Presets))
	for _, p := range cfg.Presets {
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate preset %q", ErrInvalid, p.Name)
		}
		seen[p.Name] = true
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	return nil
}

// ResolvedPort is Port, or the channel's well-known port when unset.
func (c Config) ResolvedPort() int {
	if c.Port > 0 {
		return c.Port
	}
	if c.Channel == ChannelData {
		return frame.DataPort
	}
	return frame.CommandPort
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.ResolvedPort()))
}

// Session converts c into socket settings.
func (c Config) Session() session.Config {
	out := session.DefaultConfig()
	out.ConnectTimeout = c.ConnectTimeout
	out.ReadTimeout = c.ReadTimeout
	out.WriteTimeout = c.WriteTimeout
	out.Alignment = c.Alignment
	out.Limits.MaxResponseBytes = c.MaxResponseBytes
	return out
}

// Preset finds a configured preset by name.
func (c Config) Preset(name string) (merlin.Preset, bool) {
	for _, p := range c.Presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return merlin.Preset{}, false
}
