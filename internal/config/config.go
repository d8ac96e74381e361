package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Config holds all configuration
type Config struct {
	MySQL      MySQLConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	Porkbun    PorkbunClientConfig
	Bulk       BulkConfig
	Audit      AuditConfig
	Migrate    bool
	HTTPAddr   string
	ProfileDir string // empty means ~/.porkbun_dns
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	DSN string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string
	File       string // empty disables file rotation, logs go to stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// PorkbunClientConfig holds Porkbun API client configuration
type PorkbunClientConfig struct {
	BaseURL           string
	DomainCacheTTLSec int
}

// BulkConfig holds bulk applicator configuration
type BulkConfig struct {
	BackupDir string
}

// AuditConfig holds nameserver audit worker configuration
type AuditConfig struct {
	CacheFile           string
	BatchSize           int
	CheckDelayMs        int
	BatchDelayMs        int
	RetryInitialSec     int
	MaxAttempts         int
	PeriodicEnabled     bool
	PeriodicIntervalSec int
	VerifyDNS           bool
	ResolverAddr        string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getEnv("MYSQL_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 1440),
			Issuer:        getEnv("JWT_ISSUER", "porkbun_console"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		},
		Porkbun: PorkbunClientConfig{
			BaseURL:           getEnv("PORKBUN_BASE_URL", ""),
			DomainCacheTTLSec: getEnvInt("DOMAIN_CACHE_TTL_SEC", 300),
		},
		Bulk: BulkConfig{
			BackupDir: getEnv("BULK_BACKUP_DIR", "backups"),
		},
		Audit: AuditConfig{
			CacheFile:           getEnv("AUDIT_CACHE_FILE", "config/nameserver_config.json"),
			BatchSize:           getEnvInt("AUDIT_BATCH_SIZE", 5),
			CheckDelayMs:        getEnvInt("AUDIT_CHECK_DELAY_MS", 500),
			BatchDelayMs:        getEnvInt("AUDIT_BATCH_DELAY_MS", 1000),
			RetryInitialSec:     getEnvInt("AUDIT_RETRY_INITIAL_SEC", 2),
			MaxAttempts:         getEnvInt("AUDIT_MAX_ATTEMPTS", 3),
			PeriodicEnabled:     getEnv("AUDIT_PERIODIC_ENABLED", "0") == "1",
			PeriodicIntervalSec: getEnvInt("AUDIT_PERIODIC_INTERVAL_SEC", 3600),
			VerifyDNS:           getEnv("AUDIT_VERIFY_DNS", "0") == "1",
			ResolverAddr:        getEnv("AUDIT_RESOLVER_ADDR", "1.1.1.1:53"),
		},
		Migrate:    getEnv("MIGRATE", "0") == "1",
		HTTPAddr:   getEnv("HTTP_ADDR", ":8080"),
		ProfileDir: getEnv("PROFILE_DIR", ""),
	}

	// Validate required fields
	if cfg.MySQL.DSN == "" {
		return nil, fmt.Errorf("MYSQL_DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// LoadFromINI loads configuration from an INI file with environment
// variable override (priority: ENV > INI > default)
func LoadFromINI(iniPath string) (*Config, error) {
	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	getValueInt := func(envKey, iniSection, iniKey string, defaultValue int) int {
		if value := os.Getenv(envKey); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Int(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	getValueBool := func(envKey, iniSection, iniKey string, defaultValue bool) bool {
		if value := os.Getenv(envKey); value != "" {
			return value == "1" || value == "true"
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Bool(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getValue("MYSQL_DSN", "mysql", "dsn", ""),
		},
		Redis: RedisConfig{
			Addr:     getValue("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: getValue("REDIS_PASS", "redis", "pass", ""),
			DB:       getValueInt("REDIS_DB", "redis", "db", 0),
		},
		JWT: JWTConfig{
			Secret:        getValue("JWT_SECRET", "jwt", "secret", ""),
			ExpireMinutes: getValueInt("JWT_EXPIRE_MINUTES", "jwt", "expire_minutes", 1440),
			Issuer:        getValue("JWT_ISSUER", "jwt", "issuer", "porkbun_console"),
		},
		Log: LogConfig{
			Level:      getValue("LOG_LEVEL", "log", "level", "info"),
			File:       getValue("LOG_FILE", "log", "file", ""),
			MaxSizeMB:  getValueInt("LOG_MAX_SIZE_MB", "log", "max_size_mb", 100),
			MaxBackups: getValueInt("LOG_MAX_BACKUPS", "log", "max_backups", 3),
			MaxAgeDays: getValueInt("LOG_MAX_AGE_DAYS", "log", "max_age_days", 28),
		},
		Porkbun: PorkbunClientConfig{
			BaseURL:           getValue("PORKBUN_BASE_URL", "porkbun", "base_url", ""),
			DomainCacheTTLSec: getValueInt("DOMAIN_CACHE_TTL_SEC", "porkbun", "domain_cache_ttl_sec", 300),
		},
		Bulk: BulkConfig{
			BackupDir: getValue("BULK_BACKUP_DIR", "bulk", "backup_dir", "backups"),
		},
		Audit: AuditConfig{
			CacheFile:           getValue("AUDIT_CACHE_FILE", "audit", "cache_file", "config/nameserver_config.json"),
			BatchSize:           getValueInt("AUDIT_BATCH_SIZE", "audit", "batch_size", 5),
			CheckDelayMs:        getValueInt("AUDIT_CHECK_DELAY_MS", "audit", "check_delay_ms", 500),
			BatchDelayMs:        getValueInt("AUDIT_BATCH_DELAY_MS", "audit", "batch_delay_ms", 1000),
			RetryInitialSec:     getValueInt("AUDIT_RETRY_INITIAL_SEC", "audit", "retry_initial_sec", 2),
			MaxAttempts:         getValueInt("AUDIT_MAX_ATTEMPTS", "audit", "max_attempts", 3),
			PeriodicEnabled:     getValueBool("AUDIT_PERIODIC_ENABLED", "audit", "periodic_enabled", false),
			PeriodicIntervalSec: getValueInt("AUDIT_PERIODIC_INTERVAL_SEC", "audit", "periodic_interval_sec", 3600),
			VerifyDNS:           getValueBool("AUDIT_VERIFY_DNS", "audit", "verify_dns", false),
			ResolverAddr:        getValue("AUDIT_RESOLVER_ADDR", "audit", "resolver_addr", "1.1.1.1:53"),
		},
		Migrate:    getValueBool("MIGRATE", "app", "migrate", false),
		HTTPAddr:   getValue("HTTP_ADDR", "http", "addr", ":8080"),
		ProfileDir: getValue("PROFILE_DIR", "app", "profile_dir", ""),
	}

	if cfg.MySQL.DSN == "" {
		return nil, fmt.Errorf("MYSQL_DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}
