package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Backup   BackupConfig   `yaml:"backup"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Auth     AuthConfig     `yaml:"auth"`
	Search   SearchConfig   `yaml:"search"`
	Strapi   StrapiConfig   `yaml:"strapi"`
	Sync     SyncConfig     `yaml:"sync"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	// BaseURL is the public site domain used for canonical listing URLs
	// pushed to the external CMS.
	BaseURL string `yaml:"base_url"`
}

// DatabaseConfig contains primary (MySQL) database settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// BackupConfig contains the secondary (PostgreSQL) backup store settings
type BackupConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	// QueueSize bounds the backup worker's in-memory job queue.
	QueueSize int `yaml:"queue_size"`
}

// UploadsConfig contains local upload storage settings
type UploadsConfig struct {
	// Dir is the on-disk root of the public uploads directory.
	Dir string `yaml:"dir"`
	// PublicPrefix is the URL prefix files are served under.
	PublicPrefix string `yaml:"public_prefix"`
}

// AuthConfig contains token settings
type AuthConfig struct {
	Secret        string `yaml:"secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	PasswordSalt  string `yaml:"password_salt"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// StrapiConfig contains external CMS settings
type StrapiConfig struct {
	Host           string `yaml:"host"`
	APIToken       string `yaml:"api_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SyncConfig contains scheduled sync settings
type SyncConfig struct {
	DailyRunEnabled bool   `yaml:"daily_run_enabled"`
	DailyRunTime    string `yaml:"daily_run_time"`
}

// CleanupConfig contains retention cleanup settings
type CleanupConfig struct {
	DailyRunEnabled  bool `yaml:"daily_run_enabled"`
	RetentionDays    int  `yaml:"retention_days"`
	MaxDeletionCount int  `yaml:"max_deletion_count"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: []string{"http://localhost:5173"},
			BaseURL:     "https://www.imobiliariaportal.com.br",
		},
		Database: DatabaseConfig{
			Host:     "db",
			Port:     3306,
			User:     "imobiliaria_user",
			Password: "imobiliaria_pass",
			Database: "imobiliaria_db",
		},
		Backup: BackupConfig{
			Host:      "backup-db",
			Port:      5432,
			User:      "backup_user",
			Password:  "backup_pass",
			Database:  "backup_db",
			SSLMode:   "disable",
			QueueSize: 100,
		},
		Uploads: UploadsConfig{
			Dir:          "./public/uploads",
			PublicPrefix: "/uploads",
		},
		Auth: AuthConfig{
			TokenTTLHours: 24,
		},
		Strapi: StrapiConfig{
			TimeoutSeconds: 30,
		},
		Sync: SyncConfig{
			DailyRunEnabled: false,
			DailyRunTime:    "03:00",
		},
		Cleanup: CleanupConfig{
			DailyRunEnabled:  false,
			RetentionDays:    90,
			MaxDeletionCount: 1000,
		},
	}
}

// LoadConfig loads configuration from a YAML file, falling back to defaults
// for anything missing. A nonexistent file is not an error.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		config.applyEnv()
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnv()
	return config, nil
}

// applyEnv overrides secrets and connection settings from the environment.
func (c *Config) applyEnv() {
	c.Server.Port = getEnvOrKeep(c.Server.Port, "PORT")
	c.Database.Host = getEnvOrKeep(c.Database.Host, "DB_HOST")
	c.Database.User = getEnvOrKeep(c.Database.User, "DB_USER")
	c.Database.Password = getEnvOrKeep(c.Database.Password, "DB_PASSWORD")
	c.Database.Database = getEnvOrKeep(c.Database.Database, "DB_NAME")
	c.Backup.Host = getEnvOrKeep(c.Backup.Host, "BACKUP_DB_HOST")
	c.Backup.User = getEnvOrKeep(c.Backup.User, "BACKUP_DB_USER")
	c.Backup.Password = getEnvOrKeep(c.Backup.Password, "BACKUP_DB_PASSWORD")
	c.Backup.Database = getEnvOrKeep(c.Backup.Database, "BACKUP_DB_NAME")
	c.Auth.Secret = getEnvOrKeep(c.Auth.Secret, "JWT_SECRET")
	c.Auth.PasswordSalt = getEnvOrKeep(c.Auth.PasswordSalt, "PASSWORD_SALT")
	c.Search.Meilisearch.Host = getEnvOrKeep(c.Search.Meilisearch.Host, "MEILISEARCH_HOST")
	c.Search.Meilisearch.APIKey = getEnvOrKeep(c.Search.Meilisearch.APIKey, "MEILISEARCH_KEY")
	c.Strapi.Host = getEnvOrKeep(c.Strapi.Host, "STRAPI_HOST")
	c.Strapi.APIToken = getEnvOrKeep(c.Strapi.APIToken, "STRAPI_API_TOKEN")
}

func getEnvOrKeep(current, envKey string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return current
}

// GetTimeout returns the Strapi request timeout as a duration
func (c *StrapiConfig) GetTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetTokenTTL returns the auth token lifetime as a duration
func (c *AuthConfig) GetTokenTTL() time.Duration {
	if c.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TokenTTLHours) * time.Hour
}
