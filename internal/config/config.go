// Package config layers skillpath settings: defaults, an optional YAML
// file, an optional .env file, then SKILLPATH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/skillpath/internal/llm"
	"github.com/abhisek/skillpath/internal/notify"
	"github.com/abhisek/skillpath/internal/store"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Catalog CatalogConfig `yaml:"catalog"`
	Notify  NotifyConfig  `yaml:"notify"`
	Tutor   TutorConfig   `yaml:"tutor"`
	LLM     llm.Config    `yaml:"llm"`
}

type LogConfig struct {
	// Mode is "prod" for JSON output, anything else for console output.
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
	PostgresURL   string `yaml:"postgres_url"`
}

type CatalogConfig struct {
	// Dir holds extra template files loaded on top of the built-in catalog.
	Dir string `yaml:"dir"`
}

type NotifyConfig struct {
	// RedisAddr enables achievement fan-out over Redis pub/sub.
	RedisAddr string `yaml:"redis_addr"`
	Channel   string `yaml:"channel"`
}

type TutorConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Log:    LogConfig{Mode: "dev", Level: "warn"},
		Store:  StoreConfig{Driver: DriverSQLite, RedisPrefix: "skillpath:"},
		Notify: NotifyConfig{Channel: notify.DefaultChannel},
		Tutor:  TutorConfig{Workers: 2, QueueSize: 32},
		LLM:    llm.DefaultConfig(),
	}
}

// Load builds the configuration. path may be empty, in which case
// SKILLPATH_CONFIG is consulted; a named file that does not exist is an
// error, a missing .env is not.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SKILLPATH_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()

	if cfg.Store.Driver == DriverSQLite && cfg.Store.Path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return Config{}, err
		}
		cfg.Store.Path = p
	}

	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Log.Mode = getEnv("SKILLPATH_LOG_MODE", c.Log.Mode)
	c.Log.Level = getEnv("SKILLPATH_LOG_LEVEL", c.Log.Level)

	c.Store.Driver = getEnv("SKILLPATH_STORE", c.Store.Driver)
	c.Store.Path = getEnv("SKILLPATH_DB", c.Store.Path)
	c.Store.RedisAddr = getEnv("SKILLPATH_REDIS_ADDR", c.Store.RedisAddr)
	c.Store.RedisPassword = getEnv("SKILLPATH_REDIS_PASSWORD", c.Store.RedisPassword)
	c.Store.RedisDB = getEnvInt("SKILLPATH_REDIS_DB", c.Store.RedisDB)
	c.Store.RedisPrefix = getEnv("SKILLPATH_REDIS_PREFIX", c.Store.RedisPrefix)
	c.Store.PostgresURL = getEnv("SKILLPATH_POSTGRES_URL", c.Store.PostgresURL)

	c.Catalog.Dir = getEnv("SKILLPATH_CATALOG_DIR", c.Catalog.Dir)

	c.Notify.RedisAddr = getEnv("SKILLPATH_NOTIFY_REDIS_ADDR", c.Notify.RedisAddr)
	c.Notify.Channel = getEnv("SKILLPATH_NOTIFY_CHANNEL", c.Notify.Channel)

	c.Tutor.Workers = getEnvInt("SKILLPATH_TUTOR_WORKERS", c.Tutor.Workers)
	c.Tutor.QueueSize = getEnvInt("SKILLPATH_TUTOR_QUEUE", c.Tutor.QueueSize)

	explicit := os.Getenv("SKILLPATH_LLM_PROVIDER") != ""
	c.LLM.ApplyEnv()
	if !explicit && c.LLM.Provider == llm.ProviderMock {
		c.LLM.Discover()
	}
}

// Validate rejects unknown drivers and missing backend addresses.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("store.redis_addr is required for the redis driver")
		}
	case DriverPostgres:
		if c.Store.PostgresURL == "" {
			return errors.New("store.postgres_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Notify.RedisAddr != "" && c.Notify.Channel == "" {
		return errors.New("notify.channel is required when notify.redis_addr is set")
	}
	if c.Tutor.Workers < 1 {
		return fmt.Errorf("tutor.workers must be at least 1, got %d", c.Tutor.Workers)
	}
	if c.Tutor.QueueSize < 0 {
		return fmt.Errorf("tutor.queue_size must not be negative, got %d", c.Tutor.QueueSize)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
