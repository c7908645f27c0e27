// Package config loads server configuration from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs to run.
type Config struct {
	// Remote debrid WebDAV endpoint and its shared credential pair.
	RemoteURL string `mapstructure:"remote_url"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`

	// Metadata provider API keys. Any of these may be empty; the
	// resolver chain degrades to the providers that are configured.
	OMDbAPIKey string `mapstructure:"omdb_api_key"`
	TMDBAPIKey string `mapstructure:"tmdb_api_key"`
	TVDBAPIKey string `mapstructure:"tvdb_api_key"`

	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	RefreshIntervalSeconds int `mapstructure:"refresh_interval_seconds"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Load reads configuration from ./config.yaml (if present) and the
// environment. Environment variables win over file values.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.rd-dav-server")

	v.SetDefault("remote_url", "https://dav.real-debrid.com")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("refresh_interval_seconds", 300)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Same variable names the original deployment scripts use.
	bindings := map[string]string{
		"remote_url":               "RD_WEBDAV_URL",
		"username":                 "RD_USERNAME",
		"password":                 "RD_PASSWORD",
		"omdb_api_key":             "OMDB_API_KEY",
		"tmdb_api_key":             "TMDB_API_KEY",
		"tvdb_api_key":             "TVDB_API_KEY",
		"host":                     "HOST",
		"port":                     "PORT",
		"refresh_interval_seconds": "REFRESH_INTERVAL_SECONDS",
		"log_level":                "LOG_LEVEL",
		"log_format":               "LOG_FORMAT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.RemoteURL = strings.TrimRight(cfg.RemoteURL, "/")
	return &cfg, nil
}

// Validate checks the fields required to talk to the remote storage.
func (c *Config) Validate() error {
	if c.RemoteURL == "" {
		return fmt.Errorf("remote URL is required (RD_WEBDAV_URL)")
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("remote credentials are required (RD_USERNAME, RD_PASSWORD)")
	}
	if c.RefreshIntervalSeconds <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %d", c.RefreshIntervalSeconds)
	}
	return nil
}

// Addr returns the host:port pair the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RefreshInterval returns the refresh period as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}
