// Package config loads svg2png settings from a TOML file.
//
// Settings are resolved in three layers: built-in defaults, then the config
// file (~/.config/svg2png/config.toml unless --config is given), then
// command-line flags applied by the CLI. A missing default file is not an
// error; a missing explicit file is.
//
// Example file:
//
//	[convert]
//	scale = 2
//	timeout = "45s"
//	output_dir = "./png"
//
//	[raster]
//	engine = "rsvg-convert"
//
//	[server]
//	addr = ":8080"
//
//	[session]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[cache]
//	backend = "file"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/svg2png/pkg/errors"
	"github.com/matzehuels/svg2png/pkg/raster"
)

// Backend names for [session] and [cache].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete configuration.
type Config struct {
	Convert ConvertConfig `toml:"convert"`
	Raster  RasterConfig  `toml:"raster"`
	Server  ServerConfig  `toml:"server"`
	Session SessionConfig `toml:"session"`
	Cache   CacheConfig   `toml:"cache"`
}

// ConvertConfig configures the orchestrator.
type ConvertConfig struct {
	// Scale is the device pixel ratio used when none is supplied.
	Scale   float64  `toml:"scale"`
	Timeout Duration `toml:"timeout"`
	// OutputDir receives CLI downloads.
	OutputDir string `toml:"output_dir"`
	// MaxFileBytes limits intake.
	MaxFileBytes int64 `toml:"max_file_bytes"`
}

// RasterConfig selects rasterization engines.
type RasterConfig struct {
	// Engine is "auto" or one of raster.EngineNames.
	Engine string `toml:"engine"`
	// Browser enables the headless Chromium engine.
	Browser bool `toml:"browser"`
	// StagingDir holds hidden staged SVG files; empty means a temp dir.
	StagingDir string `toml:"staging_dir"`
}

// ServerConfig configures `svg2png serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	CookieName   string   `toml:"cookie_name"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// SessionConfig selects the session store.
type SessionConfig struct {
	Backend       string   `toml:"backend"`
	TTL           Duration `toml:"ttl"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	// Prefix scopes keys when a cache is shared between deployments.
	Prefix string `toml:"prefix"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Scale:        1,
			Timeout:      Duration{30 * time.Second},
			OutputDir:    ".",
			MaxFileBytes: 10 << 20,
		},
		Raster: RasterConfig{
			Engine: "auto",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			CookieName:   "svg2png_session",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
		},
		Session: SessionConfig{
			Backend:       BackendMemory,
			TTL:           Duration{24 * time.Hour},
			MongoDatabase: "svg2png",
		},
		Cache: CacheConfig{
			Backend: BackendFile,
		},
	}
}

// DefaultPath returns ~/.config/svg2png/config.toml, honouring XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "svg2png", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "svg2png", "config.toml"), nil
}

// Load reads path over the defaults. An empty path means DefaultPath, which
// may be absent. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "read config")
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidOptions, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and backend names.
func (c *Config) Validate() error {
	if err := errors.ValidateScale(c.Convert.Scale); err != nil {
		return err
	}
	if c.Convert.Timeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "convert.timeout cannot be negative")
	}
	if c.Convert.MaxFileBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "convert.max_file_bytes must be positive")
	}
	if err := oneOf("raster.engine", c.Raster.Engine, append([]string{raster.EngineAuto}, raster.EngineNames...)...); err != nil {
		return err
	}
	if err := oneOf("session.backend", c.Session.Backend, BackendMemory, BackendFile, BackendRedis, BackendMongo); err != nil {
		return err
	}
	if err := oneOf("cache.backend", c.Cache.Backend, BackendNone, BackendFile, BackendRedis); err != nil {
		return err
	}
	if c.Session.Backend == BackendRedis && c.Session.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidOptions, "session.redis_addr is required for the redis backend")
	}
	if c.Session.Backend == BackendMongo && c.Session.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidOptions, "session.mongo_uri is required for the mongo backend")
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidOptions, "cache.redis_addr is required for the redis backend")
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidOptions, "server.addr cannot be empty")
	}
	return nil
}

func oneOf(key, val string, allowed ...string) error {
	for _, a := range allowed {
		if val == a {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidOptions, "%s must be one of %s, got %q", key, strings.Join(allowed, ", "), val)
}

// Encode writes c as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
