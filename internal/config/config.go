// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir   string `env:"BREEDER_DATA_DIR" envDefault:"./data"` // Always absolute after Load
	Port      int    `env:"PORT" envDefault:"8001"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`
	DevMode   bool   `env:"DEV_MODE" envDefault:"false"`

	// MaxGenes caps the size of a saved roller dictionary. The outcome table grows
	// with the product of per-gene outcomes, so this bounds the cost of a roll.
	MaxGenes int `env:"MAX_GENES" envDefault:"12"`

	// DictionaryPath optionally points at a YAML dictionary seeded as a core roller.
	DictionaryPath string `env:"DICTIONARY_PATH"`

	LastRollTTL           time.Duration `env:"LAST_ROLL_TTL" envDefault:"24h"`
	CacheCleanupSchedule  string        `env:"CACHE_CLEANUP_SCHEDULE" envDefault:"@every 1h"`
	WALCheckpointSchedule string        `env:"WAL_CHECKPOINT_SCHEDULE" envDefault:"@every 6h"`
	MaintenanceSchedule   string        `env:"MAINTENANCE_SCHEDULE" envDefault:"0 30 2 * * *"`

	Backup BackupConfig `envPrefix:"BACKUP_"`
}

// BackupConfig holds the S3-compatible backup target
type BackupConfig struct {
	Enabled         bool   `env:"ENABLED" envDefault:"false"`
	Schedule        string `env:"SCHEDULE" envDefault:"0 0 3 * * *"`
	Bucket          string `env:"BUCKET"`
	Prefix          string `env:"PREFIX" envDefault:"breeder"`
	Region          string `env:"REGION" envDefault:"auto"`
	Endpoint        string `env:"ENDPOINT"` // Set for R2/MinIO, empty for AWS
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	// RetentionDays removes older backups after each upload; 0 keeps everything
	RetentionDays int `env:"RETENTION_DAYS" envDefault:"30"`
}

// Load reads configuration from the environment, after applying .env if present
func Load() (*Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv parses the current environment without touching .env
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg.DataDir = absDataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration for obviously broken values
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.MaxGenes <= 0 {
		return fmt.Errorf("MAX_GENES must be positive, got %d", c.MaxGenes)
	}
	if c.LastRollTTL <= 0 {
		return fmt.Errorf("LAST_ROLL_TTL must be positive, got %s", c.LastRollTTL)
	}
	if c.Backup.RetentionDays < 0 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must not be negative, got %d", c.Backup.RetentionDays)
	}
	if c.Backup.Enabled && c.Backup.Bucket == "" {
		return fmt.Errorf("BACKUP_BUCKET is required when backups are enabled")
	}
	return nil
}

// RollersDBPath returns the path of the rollers database
func (c *Config) RollersDBPath() string {
	return filepath.Join(c.DataDir, "rollers.db")
}

// BackupStagingDir returns the directory backups are assembled in before upload
func (c *Config) BackupStagingDir() string {
	return filepath.Join(c.DataDir, "backup-staging")
}

// CacheDBPath returns the path of the cache database
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}
