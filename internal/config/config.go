package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fmuoria/resume-shortlister/internal/logger"
	"github.com/fmuoria/resume-shortlister/internal/shortlist"
)

// Config holds application configuration
type Config struct {
	Port                string  `json:"port" yaml:"port"`
	UploadsDir          string  `json:"uploads_dir" yaml:"uploads_dir"`
	SkillMatchThreshold float64 `json:"skill_match_threshold" yaml:"skill_match_threshold"`
	MaxUploadMB         int64   `json:"max_upload_mb" yaml:"max_upload_mb"`
	RedisAddr           string  `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPassword       string  `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB             int     `json:"redis_db" yaml:"redis_db"`
	DatabaseURL         string  `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	LogLevel            string  `json:"log_level" yaml:"log_level"`
	SessionTTLMinutes   int     `json:"session_ttl_minutes" yaml:"session_ttl_minutes"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Port:                "8080",
		UploadsDir:          "uploads",
		SkillMatchThreshold: shortlist.DefaultSkillMatchThreshold,
		MaxUploadMB:         32,
		LogLevel:            "info",
		SessionTTLMinutes:   24 * 60,
	}
}

// GetConfigPath returns the path to the configuration file
// On Windows: %APPDATA%/ResumeShortlister/config.json
// On Unix: ~/.config/ResumeShortlister/config.json
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		configDir = filepath.Join(os.Getenv("APPDATA"), "ResumeShortlister")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "ResumeShortlister")
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load reads .env if present, then the config file (CONFIG_FILE or the
// default path), then applies environment overrides.
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		var err error
		configPath, err = GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	config, err := LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFrom loads configuration from a specific path. Paths ending in .yaml or
// .yml are read as YAML, everything else as JSON.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveTo saves the configuration to a specific path, creating its directory
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides configuration values with the environment variables
// that are set.
func (c *Config) ApplyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.UploadsDir, "UPLOADS_DIR")
	setString(&c.RedisAddr, "REDIS_ADDR")
	setString(&c.RedisPassword, "REDIS_PASSWORD")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("SKILL_MATCH_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid SKILL_MATCH_THRESHOLD %q: %w", v, err)
		}
		c.SkillMatchThreshold = f
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_MB %q: %w", v, err)
		}
		c.MaxUploadMB = n
	}
	if err := setInt(&c.RedisDB, "REDIS_DB"); err != nil {
		return err
	}
	return setInt(&c.SessionTTLMinutes, "SESSION_TTL_MINUTES")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("port must be a number, got %q", c.Port)
	}

	if c.UploadsDir == "" {
		return fmt.Errorf("uploads_dir is required")
	}

	if c.SkillMatchThreshold < 0 || c.SkillMatchThreshold > 100 {
		return fmt.Errorf("skill_match_threshold must be between 0 and 100, got %v", c.SkillMatchThreshold)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}

	if c.RedisDB < 0 {
		return fmt.Errorf("redis_db must not be negative, got %d", c.RedisDB)
	}

	if c.SessionTTLMinutes < 0 {
		return fmt.Errorf("session_ttl_minutes must not be negative, got %d", c.SessionTTLMinutes)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	return nil
}

// Policy returns the shortlisting policy the configuration describes
func (c *Config) Policy() shortlist.Policy {
	return shortlist.Policy{SkillMatchThreshold: c.SkillMatchThreshold}
}
