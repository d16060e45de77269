// Package config assembles runtime settings from defaults, a TOML file, an
// optional .env file and STUDYPULSE_* environment variables, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/abhisek/studypulse/internal/llm"
	"github.com/abhisek/studypulse/internal/progress"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Identity IdentityConfig `toml:"identity"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	LLM      llm.Config     `toml:"llm"`

	// TimeZone is an IANA name used for calendar dates and hour-of-day
	// analytics. Empty means the machine's local zone.
	TimeZone    string        `toml:"timezone"`
	ReadTimeout time.Duration `toml:"read_timeout"`
	AuthTimeout time.Duration `toml:"auth_timeout"`

	// Curriculum optionally replaces the built-in topic table.
	Curriculum string `toml:"curriculum"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `toml:"driver"`
	// DSN is a file path for sqlite or a connection URL for postgres.
	// Empty sqlite DSN resolves to the XDG data directory.
	DSN string `toml:"dsn"`
}

type IdentityConfig struct {
	// Secret signs session tokens. Empty means a per-install secret kept in
	// the state directory.
	Secret    string        `toml:"secret"`
	TTL       time.Duration `toml:"ttl"`
	TokenPath string        `toml:"token_path"`
}

type ServerConfig struct {
	Addr         string `toml:"addr"`
	AllowOrigins string `toml:"allow_origins"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func DefaultConfig() Config {
	return Config{
		Database:    DatabaseConfig{Driver: "sqlite"},
		Identity:    IdentityConfig{TTL: 72 * time.Hour},
		Server:      ServerConfig{Addr: ":8080", AllowOrigins: "*"},
		Log:         LogConfig{Level: "info", Format: "console"},
		LLM:         llm.DefaultConfig(),
		ReadTimeout: progress.DefaultReadTimeout,
		AuthTimeout: progress.DefaultAuthTimeout,
	}
}

// DefaultPath resolves $XDG_CONFIG_HOME/studypulse/config.toml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "studypulse", "config.toml"), nil
}

// Load builds the configuration. An explicit path must exist; with an
// empty path the default location is used when present. A .env file in
// the working directory is read when present.
func Load(path string) (Config, error) {
	return load(path, ".env", os.LookupEnv)
}

func load(path, dotenvPath string, lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	md, err := decodeFile(&cfg, path, explicit)
	if err != nil {
		return cfg, err
	}

	env, err := newEnvSource(dotenvPath, lookup)
	if err != nil {
		return cfg, err
	}
	if err := env.apply(&cfg); err != nil {
		return cfg, err
	}

	// Fall back to conventional vendor keys only when no provider was chosen.
	if !md.IsDefined("llm", "provider") && !env.has("STUDYPULSE_LLM_PROVIDER") {
		cfg.LLM.Discover(env.get)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeFile(cfg *Config, path string, required bool) (toml.MetaData, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return toml.MetaData{}, nil
		}
		return toml.MetaData{}, fmt.Errorf("config: %w", err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return md, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return md, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return md, nil
}

// Location resolves TimeZone.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.ReadTimeout <= 0 || c.AuthTimeout <= 0 {
		errs = append(errs, errors.New("read_timeout and auth_timeout must be positive"))
	}
	if c.Identity.TTL <= 0 {
		errs = append(errs, errors.New("identity.ttl must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be console or json", c.Log.Format))
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
