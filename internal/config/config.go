package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Session SessionConfig `toml:"session"`
	Jamendo JamendoConfig `toml:"jamendo"`
	Logging LoggingConfig `toml:"logging"`
	Tunnel  TunnelConfig  `toml:"tunnel"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `toml:"port"`
	Host         string `toml:"host"`
	EnableCORS   bool   `toml:"enable_cors"`
	ReadTimeout  int    `toml:"read_timeout_seconds"`
	WriteTimeout int    `toml:"write_timeout_seconds"`
	MaxUploadMB  int64  `toml:"max_upload_mb"`
}

// StorageConfig contains file store configuration
type StorageConfig struct {
	UploadDir       string   `toml:"upload_dir"`
	AllowedFormats  []string `toml:"allowed_formats"`
	WatchForChanges bool     `toml:"watch_for_changes"`
}

// SessionConfig contains session cookie configuration
type SessionConfig struct {
	Duration      string `toml:"duration"`
	SecureCookies bool   `toml:"secure_cookies"`
}

// JamendoConfig contains catalog search configuration
type JamendoConfig struct {
	Enabled  bool   `toml:"enabled"`
	BaseURL  string `toml:"base_url"`
	PageSize int    `toml:"page_size"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level          string `toml:"level"`
	Format         string `toml:"format"`
	RequestLogging bool   `toml:"request_logging"`
}

// TunnelConfig contains optional ngrok tunnel configuration
type TunnelConfig struct {
	Enabled bool   `toml:"enabled"`
	Domain  string `toml:"domain"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "5000",
			Host:         "0.0.0.0",
			EnableCORS:   false,
			ReadTimeout:  30,
			WriteTimeout: 60,
			MaxUploadMB:  64,
		},
		Storage: StorageConfig{
			UploadDir:       "./songs",
			AllowedFormats:  []string{".mp3", ".wav", ".ogg"},
			WatchForChanges: false,
		},
		Session: SessionConfig{
			Duration:      "24h",
			SecureCookies: false,
		},
		Jamendo: JamendoConfig{
			Enabled:  true,
			BaseURL:  "https://api.jamendo.com/v3.0",
			PageSize: 10,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			RequestLogging: true,
		},
		Tunnel: TunnelConfig{
			Enabled: false,
			Domain:  "",
		},
	}
}

// LoadConfig loads configuration from a TOML file, creating it with
// defaults on first run. The PORT environment variable, when set,
// overrides the configured port (hosting platforms inject it).
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
	} else if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	header := `# Fermata Configuration
# Secrets (SECRET_KEY, FIREBASE_CONFIG, JAMENDO_CLIENT_ID) are read from
# the environment, not from this file.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("max upload size must be at least 1 MB")
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory cannot be empty")
	}
	if len(c.Storage.AllowedFormats) == 0 {
		return fmt.Errorf("at least one allowed audio format must be specified")
	}

	if c.Jamendo.Enabled {
		if c.Jamendo.BaseURL == "" {
			return fmt.Errorf("jamendo base URL cannot be empty")
		}
		if c.Jamendo.PageSize < 1 {
			return fmt.Errorf("jamendo page size must be at least 1")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// GetAddress returns the full server address
func (c *Config) GetAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}
