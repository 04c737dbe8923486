// Package config loads application configuration from a JSON config file,
// environment variables (VERISCOPE_*) and built-in defaults, in that
// precedence order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName              = "veriscope"
	defaultDataDirectory = ".veriscope"
	defaultBaseURL       = "http://localhost:5000"
)

// APIConfig points the client at the detection service.
type APIConfig struct {
	BaseURL        string        `json:"baseURL" mapstructure:"base_url"`
	HealthInterval time.Duration `json:"healthInterval" mapstructure:"health_interval"`
	HealthTimeout  time.Duration `json:"healthTimeout" mapstructure:"health_timeout"`
}

// DataConfig defines where durable state lives.
type DataConfig struct {
	Directory string `json:"directory" mapstructure:"directory"`
}

// WatchConfig configures the auto-submit inbox.
type WatchConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Dir     string `json:"dir" mapstructure:"dir"`
}

// Config is the main configuration structure for the application.
type Config struct {
	API   APIConfig   `json:"api" mapstructure:"api"`
	Data  DataConfig  `json:"data" mapstructure:"data"`
	Watch WatchConfig `json:"watch" mapstructure:"watch"`
	Debug bool        `json:"debug" mapstructure:"debug"`
}

// Load reads configuration from .veriscope.json in $HOME or the XDG config
// directories, layered under VERISCOPE_* environment variables and defaults.
// A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("." + appName)
	v.SetConfigType("json")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(fmt.Sprintf("$XDG_CONFIG_HOME/%s", appName))
	v.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", defaultBaseURL)
	v.SetDefault("api.health_interval", 2*time.Second)
	v.SetDefault("api.health_timeout", 3*time.Second)
	v.SetDefault("data.directory", defaultDataDirectory)
	v.SetDefault("watch.enabled", false)
	v.SetDefault("watch.dir", "")
}

// resolvePaths expands the data directory to an absolute path under $HOME and
// fills in the derived inbox default.
func (c *Config) resolvePaths() error {
	if !filepath.IsAbs(c.Data.Directory) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		c.Data.Directory = filepath.Join(home, c.Data.Directory)
	}
	if c.Watch.Dir == "" {
		c.Watch.Dir = filepath.Join(c.Data.Directory, "inbox")
	}
	return nil
}

// DatabasePath is the location of the history key-value database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.Directory, "history.db")
}

// LogPath is the location of the application log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Data.Directory, appName+".log")
}
