package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultRemoteURL is the seed endpoint used when no remote URL is configured.
const DefaultRemoteURL = "https://dummyjson.com/todos"

// DefaultRemoteTimeout bounds a single remote fetch.
const DefaultRemoteTimeout = 30 * time.Second

// DatabaseConfig holds local storage settings.
type DatabaseConfig struct {
	// Path is the SQLite database file. Empty means <data-dir>/todolist.db.
	Path string `mapstructure:"path" yaml:"path"`
}

// RemoteConfig holds settings for the remote seed source.
type RemoteConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DisplayConfig holds the starting sort/filter state for list views.
type DisplayConfig struct {
	SortBy string `mapstructure:"sort_by" yaml:"sort_by"`
	Order  string `mapstructure:"order" yaml:"order"`
	Filter string `mapstructure:"filter" yaml:"filter"`
}

// LogConfig holds logger settings. Command line flags take precedence.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Remote   RemoteConfig   `mapstructure:"remote" yaml:"remote"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at $XDG_CONFIG_HOME/todolist/config.yaml.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "config.yaml")
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "todolist", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "todolist")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Remote: RemoteConfig{
			URL:     DefaultRemoteURL,
			Timeout: DefaultRemoteTimeout,
		},
		Display: DisplayConfig{
			SortBy: "date",
			Order:  "descending",
			Filter: "all",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DatabasePath resolves the database file, falling back to dataDir.
func (c *AppConfig) DatabasePath(dataDir string) string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(dataDir, "todolist.db")
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration. Values can
// be overridden with TODOLIST_* environment variables (e.g. TODOLIST_REMOTE_URL).
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("todolist")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultAppConfig()
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("remote.url", def.Remote.URL)
	v.SetDefault("remote.timeout", def.Remote.Timeout)
	v.SetDefault("display.sort_by", def.Display.SortBy)
	v.SetDefault("display.order", def.Display.Order)
	v.SetDefault("display.filter", def.Display.Filter)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Remote.URL == "" {
		cfg.Remote.URL = DefaultRemoteURL
	}
	if cfg.Remote.Timeout <= 0 {
		cfg.Remote.Timeout = DefaultRemoteTimeout
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database.path", cfg.Database.Path)
	v.Set("remote.url", cfg.Remote.URL)
	v.Set("remote.timeout", cfg.Remote.Timeout.String())
	v.Set("display.sort_by", cfg.Display.SortBy)
	v.Set("display.order", cfg.Display.Order)
	v.Set("display.filter", cfg.Display.Filter)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
