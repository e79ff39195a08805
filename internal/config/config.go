package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type StorageConfig struct {
	// Driver selects the store backend: "mongo" or "bolt".
	Driver string `yaml:"driver"`
	// Path is the database file for the bolt driver.
	Path string `yaml:"path"`
	// URI and DBName configure the mongo driver.
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
}

type OIDCProvider struct {
	Id           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	IssuerURL    string   `yaml:"issuer_url"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`
	LogJSON    bool   `yaml:"log_json"`

	// Timezone is the default viewer timezone for date bucketing when a
	// request doesn't carry its own.
	Timezone string `yaml:"timezone"`

	Storage  StorageConfig `yaml:"storage"`
	RedisURL string        `yaml:"redis_url"`

	AuthEnabled   bool           `yaml:"auth_enabled"`
	OIDCProviders []OIDCProvider `yaml:"oidc_providers"`

	ResendAPIKey string `yaml:"resend_api_key"`
	ReminderFrom string `yaml:"reminder_from"`

	// client-side settings
	APIBaseURL string `yaml:"api_base_url"`
	AuthToken  string `yaml:"auth_token"`
}

// Load reads the config file named by ARENA_CONFIG, defaulting to
// config.yaml in the working directory.
func Load() (*Config, error) {
	path := os.Getenv("ARENA_CONFIG")
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{
		ListenAddr: ":8080",
		LogLevel:   "info",
		Timezone:   "UTC",
		APIBaseURL: "http://localhost:8080",
		Storage: StorageConfig{
			Driver: "bolt",
			Path:   "arena.db",
			DBName: "arena",
		},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
