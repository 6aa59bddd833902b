// Package config loads the prooftower configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/prooftower/config.toml
// (falling back to ~/.config/prooftower/config.toml). A missing file yields
// the defaults; command-line flags override whatever the file sets.
//
//	[layout]
//	mode = "linear"
//	compact = true
//
//	[magic]
//	enabled = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	notify_url = "ws://localhost:9000/notify"
//	session_ttl = "1h"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/layout"
)

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds prooftower configuration.
type Config struct {
	Layout     LayoutConfig     `toml:"layout"`
	Transition TransitionConfig `toml:"transition"`
	Magic      MagicConfig      `toml:"magic"`
	Cache      CacheConfig      `toml:"cache"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// LayoutConfig mirrors layout.Options.
type LayoutConfig struct {
	Mode             string  `toml:"mode"`
	AllowOverlap     bool    `toml:"allow_overlap"`
	Compact          bool    `toml:"compact"`
	DistancePriority bool    `toml:"distance_priority"`
	BottomRoot       bool    `toml:"bottom_root"`
	Width            float64 `toml:"width"`
	Height           float64 `toml:"height"`
	CharWidth        float64 `toml:"char_width"`
	LineHeight       float64 `toml:"line_height"`
	Padding          float64 `toml:"padding"`
	LevelGap         float64 `toml:"level_gap"`
}

// TransitionConfig controls animated transitions.
type TransitionConfig struct {
	DurationMS int `toml:"duration_ms"`
}

// MagicConfig controls magic navigation.
type MagicConfig struct {
	Enabled bool `toml:"enabled"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend       string   `toml:"backend"` // "none", "file", "redis"
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	NotifyURL  string   `toml:"notify_url"`
	SessionTTL Duration `toml:"session_ttl"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a Go duration string ("30m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout:     LayoutConfig{Mode: string(layout.ModeTree)},
		Transition: TransitionConfig{DurationMS: 750},
		Magic:      MagicConfig{Enabled: false},
		Cache:      CacheConfig{Backend: BackendFile, TTL: Duration{7 * 24 * time.Hour}},
		Server:     ServerConfig{Addr: ":8080", SessionTTL: Duration{30 * time.Minute}},
		Log:        LogConfig{Level: "info"},
	}
}

// Dir returns the prooftower config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "prooftower")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path, or at [Path] when path is empty.
// A missing file yields the defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, or to [Path] when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks the values that have a closed set of choices.
func (c *Config) Validate() error {
	if _, err := layout.ParseMode(c.Layout.Mode); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "layout.mode")
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend: unknown backend %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}
	if c.Server.NotifyURL != "" {
		if err := errors.ValidateNotifyURL(c.Server.NotifyURL); err != nil {
			return err
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "log.level")
	}
	if c.Transition.DurationMS < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "transition.duration_ms must not be negative")
	}
	return nil
}

// LayoutOptions converts the layout section.
func (c *Config) LayoutOptions() layout.Options {
	l := c.Layout
	return layout.Options{
		Mode:             layout.Mode(l.Mode),
		AllowOverlap:     l.AllowOverlap,
		Compact:          l.Compact,
		DistancePriority: l.DistancePriority,
		BottomRoot:       l.BottomRoot,
		Width:            l.Width,
		Height:           l.Height,
		CharWidth:        l.CharWidth,
		LineHeight:       l.LineHeight,
		Padding:          l.Padding,
		LevelGap:         l.LevelGap,
	}
}

// TransitionDuration returns the configured transition length.
func (c *Config) TransitionDuration() time.Duration {
	return time.Duration(c.Transition.DurationMS) * time.Millisecond
}

// LogLevel returns the configured log level, info when unparsable.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
