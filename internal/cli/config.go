package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mhalver/gatefold/pkg/errors"
	"github.com/mhalver/gatefold/pkg/pipeline"
)

// Cache backend names accepted in the config file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// Config holds the gatefold configuration loaded from TOML.
//
// Example config file (~/.config/gatefold/config.toml):
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[optimize]
//	schedule = "h,cx,rz"
//	rounds = 3
type Config struct {
	Cache    CacheConfig    `toml:"cache"`
	Optimize OptimizeConfig `toml:"optimize"`
	Serve    ServeConfig    `toml:"serve"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir overrides the file cache directory (default ~/.cache/gatefold).
	Dir string `toml:"dir"`

	// RedisAddr is the host:port of the Redis server.
	RedisAddr string `toml:"redis_addr"`
}

// OptimizeConfig sets default optimization parameters.
type OptimizeConfig struct {
	// Schedule is the default pass schedule.
	Schedule string `toml:"schedule"`

	// Rounds bounds schedule repetition; zero runs to a fixpoint.
	Rounds int `toml:"rounds"`
}

// ServeConfig configures the API server.
type ServeConfig struct {
	// Addr is the listen address for "gatefold serve".
	Addr string `toml:"addr"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Cache:    CacheConfig{Backend: backendFile, RedisAddr: "localhost:6379"},
		Optimize: OptimizeConfig{Schedule: pipeline.DefaultSchedule},
		Serve:    ServeConfig{Addr: ":8080"},
	}
}

// configPath returns the default config file location using XDG standard.
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the TOML config at path, or the default location when
// path is empty. A missing file yields defaults; a malformed file or an
// unknown backend is an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		var err error
		path, err = configPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file %q not found", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (must be %q, %q, or %q)",
			c.Cache.Backend, backendFile, backendRedis, backendNone)
	}
	if c.Cache.Backend == backendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend %q requires redis_addr", backendRedis)
	}
	return nil
}
