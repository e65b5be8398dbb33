package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. HOTEL_DATABASE_DSN.
const EnvPrefix = "HOTEL"

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"server"`
	Database DatabaseConfig `yaml:"database" envconfig:"database"`
	Storage  StorageConfig  `yaml:"storage" envconfig:"storage"`
	Auth     AuthConfig     `yaml:"auth" envconfig:"auth"`
	Sweeper  SweeperConfig  `yaml:"sweeper" envconfig:"sweeper"`
	Log      LogConfig      `yaml:"log" envconfig:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port" envconfig:"port"`
	CORSOrigins     []string `yaml:"cors_origins" envconfig:"cors_origins"`
	RequestIPHeader string   `yaml:"request_ip_header" envconfig:"request_ip_header"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec" envconfig:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst" envconfig:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds" envconfig:"cache_ttl_seconds"`
	MaxUploadMB     int      `yaml:"max_upload_mb" envconfig:"max_upload_mb"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	// Driver is one of postgres, mysql or sqlite.
	Driver                 string `yaml:"driver" envconfig:"driver"`
	DSN                    string `yaml:"dsn" envconfig:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns" envconfig:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns" envconfig:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" envconfig:"conn_max_lifetime_minutes"`
	Seed                   bool   `yaml:"seed" envconfig:"seed"`
	AdminPassword          string `yaml:"admin_password" envconfig:"admin_password"`
}

// StorageConfig locates the file asset store. Files live under Root/Subdir and
// Root is served at /uploads.
type StorageConfig struct {
	Root   string `yaml:"root" envconfig:"root"`
	Subdir string `yaml:"subdir" envconfig:"subdir"`
}

// AuthConfig holds JWT verification and RBAC settings.
type AuthConfig struct {
	Enabled    bool   `yaml:"enabled" envconfig:"enabled"`
	JWTSecret  string `yaml:"jwt_secret" envconfig:"jwt_secret"`
	ModelPath  string `yaml:"model_path" envconfig:"model_path"`
	PolicyPath string `yaml:"policy_path" envconfig:"policy_path"`
}

// SweeperConfig controls the orphaned photo sweep.
type SweeperConfig struct {
	Enabled         bool          `yaml:"enabled" envconfig:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds" envconfig:"interval_seconds"`
	Interval        time.Duration `yaml:"-" ignored:"true"`
	MinAgeSeconds   int           `yaml:"min_age_seconds" envconfig:"min_age_seconds"`
	MinAge          time.Duration `yaml:"-" ignored:"true"`
	Workers         int           `yaml:"workers" envconfig:"workers"`
}

// LogConfig selects the log level, format and optional rotating file.
type LogConfig struct {
	Level      string `yaml:"level" envconfig:"level"`
	Format     string `yaml:"format" envconfig:"format"`
	File       string `yaml:"file" envconfig:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" envconfig:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" envconfig:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" envconfig:"max_age_days"`
}

// Load reads the configuration from the given path, then applies a .env file from the
// working directory (if present) and HOTEL_* environment overrides.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 10
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 10
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Storage.Root == "" {
		cfg.Storage.Root = "uploads"
	}
	if cfg.Storage.Subdir == "" {
		cfg.Storage.Subdir = "rooms"
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		logrus.Warn("auth.enabled is set without auth.jwt_secret; every token will be rejected")
	}
	if cfg.Auth.ModelPath == "" {
		cfg.Auth.ModelPath = "./config/rbac_model.conf"
	}
	if cfg.Auth.PolicyPath == "" {
		cfg.Auth.PolicyPath = "./config/policy.csv"
	}

	if cfg.Sweeper.IntervalSeconds <= 0 {
		cfg.Sweeper.IntervalSeconds = 3600
	}
	cfg.Sweeper.Interval = time.Duration(cfg.Sweeper.IntervalSeconds) * time.Second
	if cfg.Sweeper.MinAgeSeconds <= 0 {
		cfg.Sweeper.MinAgeSeconds = 600
	}
	cfg.Sweeper.MinAge = time.Duration(cfg.Sweeper.MinAgeSeconds) * time.Second
	if cfg.Sweeper.Workers <= 0 {
		logrus.Infof("sweeper.workers is not set or invalid; defaulting to 1")
		cfg.Sweeper.Workers = 1
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
