package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue string
		want         string
	}{
		{"set", "TEST_GETENV_SET", "hello", "fallback", "hello"},
		{"unset", "TEST_GETENV_UNSET", "", "fallback", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}
			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv(%q) = %v; want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue int
		want         int
	}{
		{"valid", "42", 7, 42},
		{"invalid", "not-a-number", 7, 7},
		{"unset", "", 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_GETENVINT"
			os.Unsetenv(key)
			if tt.value != "" {
				t.Setenv(key, tt.value)
			}
			if got := getEnvInt(key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnvInt(%q) = %v; want %v", key, got, tt.want)
			}
		})
	}
}

func TestLoadRequiresDSNAndSecret(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("Load() with no MYSQL_DSN should return an error")
	}

	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/porkbun_console")
	if _, err := Load(); err == nil {
		t.Error("Load() with no JWT_SECRET should return an error")
	}

	t.Setenv("JWT_SECRET", "test-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Audit.BatchSize != 5 {
		t.Errorf("Audit.BatchSize = %v; want 5", cfg.Audit.BatchSize)
	}
	if cfg.Audit.MaxAttempts != 3 {
		t.Errorf("Audit.MaxAttempts = %v; want 3", cfg.Audit.MaxAttempts)
	}
	if cfg.Bulk.BackupDir != "backups" {
		t.Errorf("Bulk.BackupDir = %v; want backups", cfg.Bulk.BackupDir)
	}
}

func TestLoadFromINIPriority(t *testing.T) {
	dir := t.TempDir()
	iniPath := filepath.Join(dir, "app.ini")
	content := `[mysql]
dsn = ini-dsn

[jwt]
secret = ini-secret
expire_minutes = 60

[audit]
batch_size = 10
periodic_enabled = true

[http]
addr = :9090
`
	if err := os.WriteFile(iniPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MYSQL_DSN", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("HTTP_ADDR", ":7070") // ENV overrides INI

	cfg, err := LoadFromINI(iniPath)
	if err != nil {
		t.Fatalf("LoadFromINI() returned error: %v", err)
	}
	if cfg.MySQL.DSN != "ini-dsn" {
		t.Errorf("MySQL.DSN = %v; want ini-dsn", cfg.MySQL.DSN)
	}
	if cfg.JWT.ExpireMinutes != 60 {
		t.Errorf("JWT.ExpireMinutes = %v; want 60", cfg.JWT.ExpireMinutes)
	}
	if cfg.Audit.BatchSize != 10 {
		t.Errorf("Audit.BatchSize = %v; want 10", cfg.Audit.BatchSize)
	}
	if !cfg.Audit.PeriodicEnabled {
		t.Error("Audit.PeriodicEnabled = false; want true")
	}
	if cfg.HTTPAddr != ":7070" {
		t.Errorf("HTTPAddr = %v; want :7070 (env should override ini)", cfg.HTTPAddr)
	}
	// INI defaults still flow where neither env nor ini set a value
	if cfg.Audit.RetryInitialSec != 2 {
		t.Errorf("Audit.RetryInitialSec = %v; want 2", cfg.Audit.RetryInitialSec)
	}
}

func TestLoadFromINIMissingFile(t *testing.T) {
	if _, err := LoadFromINI("/nonexistent/app.ini"); err == nil {
		t.Error("LoadFromINI() with missing file should return an error")
	}
}
