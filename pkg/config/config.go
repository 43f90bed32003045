// Package config loads texscale settings from a TOML file.
//
// The file lives at ~/.config/texscale/config.toml (or
// $XDG_CONFIG_HOME/texscale/config.toml). A missing file is not an error:
// defaults apply and CLI flags override file values.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/texscale/texscale/pkg/errors"
)

// appName is used for the config directory name.
const appName = "texscale"

// Config holds all file-configurable settings.
type Config struct {
	// PixelsPerMM is the default pixel density used by fit computations.
	PixelsPerMM float64 `toml:"pixels_per_mm"`

	// Mode is the default tile selection mode.
	Mode string `toml:"mode"`

	// CacheTTL bounds how long scan results stay cached.
	CacheTTL duration `toml:"cache_ttl"`

	// PollInterval is the watch command's rescan interval.
	PollInterval duration `toml:"poll_interval"`

	Server ServerConfig `toml:"server"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	RedisAddr string `toml:"redis_addr"` // empty means file cache
	MongoURI  string `toml:"mongo_uri"`  // empty disables report archiving
	MongoDB   string `toml:"mongo_db"`

	// CacheScope namespaces cache keys so replicas serving different
	// projects can share one Redis without collisions.
	CacheScope string `toml:"cache_scope"`
}

// duration wraps time.Duration with TOML string decoding ("30s", "5m").
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		PixelsPerMM:  1.0,
		Mode:         "first",
		CacheTTL:     duration(24 * time.Hour),
		PollInterval: duration(2 * time.Second),
		Server: ServerConfig{
			Addr:    ":8080",
			MongoDB: appName,
		},
	}
}

// CacheTTLDuration returns the cache TTL as a time.Duration.
func (c Config) CacheTTLDuration() time.Duration { return time.Duration(c.CacheTTL) }

// PollIntervalDuration returns the poll interval as a time.Duration.
func (c Config) PollIntervalDuration() time.Duration { return time.Duration(c.PollInterval) }

// Path returns the config file location using the XDG convention.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path, or the default location when path
// is empty. A missing file returns defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	return cfg, nil
}
