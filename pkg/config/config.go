// Package config loads critpath settings.
//
// Settings come from three layers, highest precedence first:
//
//  1. Environment variables (CRITPATH_SERVER_ADDR, CRITPATH_STORAGE_BACKEND, ...)
//  2. A TOML file, by default $XDG_CONFIG_HOME/critpath/config.toml
//  3. Built-in defaults
//
// CLI flags are applied on top by the caller.
//
// Example file:
//
//	[server]
//	addr = ":8080"
//	request_timeout = "30s"
//
//	[storage]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	database = "critpath"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[schedule]
//	epsilon_days = 0
//	cache_ttl = "10m"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage backends.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CRITPATH_"

// Config holds the complete critpath configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Redis    RedisConfig    `toml:"redis"`
	Schedule ScheduleConfig `toml:"schedule"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	RequestTimeout  time.Duration `toml:"request_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// StorageConfig selects and configures the task repository.
type StorageConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"` // file backend
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// RedisConfig enables the Redis lock and preview cache when Addr is set.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ScheduleConfig holds engine settings.
type ScheduleConfig struct {
	EpsilonDays int           `toml:"epsilon_days"`
	CacheTTL    time.Duration `toml:"cache_ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Backend:  BackendFile,
			Dir:      defaultDataDir(),
			Database: "critpath",
		},
		Schedule: ScheduleConfig{
			CacheTTL: 10 * time.Minute,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "critpath", "config.toml")
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "critpath", "projects")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "critpath", "projects")
	}
	return filepath.Join(home, ".local", "share", "critpath", "projects")
}

// Load reads path over the defaults, then applies environment overrides.
//
// An empty path uses DefaultPath. A missing file at the default path is not
// an error; a missing file that was named explicitly is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Storage.Dir, "STORAGE_DIR")
	setString(&c.Storage.MongoURI, "STORAGE_MONGO_URI")
	setString(&c.Storage.Database, "STORAGE_DATABASE")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	if err := setInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&c.Schedule.EpsilonDays, "SCHEDULE_EPSILON_DAYS"); err != nil {
		return err
	}
	if err := setDuration(&c.Server.RequestTimeout, "SERVER_REQUEST_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&c.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&c.Schedule.CacheTTL, "SCHEDULE_CACHE_TTL")
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for the file backend")
		}
	case BackendMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("storage.mongo_uri is required for the mongo backend")
		}
		if c.Storage.Database == "" {
			return errors.New("storage.database is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want %s or %s)", c.Storage.Backend, BackendFile, BackendMongo)
	}
	if c.Schedule.EpsilonDays < 0 {
		return fmt.Errorf("schedule.epsilon_days must not be negative, got %d", c.Schedule.EpsilonDays)
	}
	if c.Schedule.CacheTTL < 0 {
		return errors.New("schedule.cache_ttl must not be negative")
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = d
	return nil
}
