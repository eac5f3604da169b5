package config

import (
	"os"
	"path/filepath"
	"testing"

	"wardcore/internal/blob"
	"wardcore/internal/core"
)

func missingDotenv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(missingDotenv(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.StorageDriver != string(core.StorageDocument) || cfg.BlobDriver != string(blob.DriverFilesystem) {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DocumentKey != "hospital-data.json" {
		t.Errorf("expected default document key, got %s", cfg.DocumentKey)
	}
	if r := cfg.Retention(); r.VitalsHistory != 50 || r.AdministrationLog != 200 || r.Alerts != 500 {
		t.Errorf("unexpected retention defaults: %+v", r)
	}
	if !cfg.IsDev() {
		t.Errorf("expected development by default")
	}
	if cfg.TraceFile != "" {
		t.Errorf("tracing should be off by default, got %q", cfg.TraceFile)
	}
}

func TestLoadReadsPrefixedEnv(t *testing.T) {
	t.Setenv("WARDCORE_PORT", "9090")
	t.Setenv("WARDCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("WARDCORE_SQLITE_PATH", "/tmp/ward.db")
	t.Setenv("WARDCORE_BLOB_DRIVER", "s3")
	t.Setenv("WARDCORE_BLOB_S3_BUCKET", "ward-archive")
	t.Setenv("WARDCORE_BLOB_S3_PATH_STYLE", "true")
	t.Setenv("WARDCORE_BLOB_S3_ACCESS_KEY_ID", "minio")
	t.Setenv("WARDCORE_BLOB_S3_SECRET_ACCESS_KEY", "minio-secret")
	t.Setenv("WARDCORE_RETAIN_ALERTS", "10")
	t.Setenv("WARDCORE_LOG_LEVEL", "debug")
	t.Setenv("WARDCORE_TRACE_FILE", "/tmp/ward-trace.jsonl")

	cfg, err := LoadFile(missingDotenv(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.SQLitePath != "/tmp/ward.db" || cfg.RetainAlerts != 10 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	opts := cfg.BlobOptions()
	if opts.Driver != blob.DriverS3 || opts.S3.Bucket != "ward-archive" || !opts.S3.PathStyle || opts.S3.AccessKeyID != "minio" || opts.S3.SecretAccessKey != "minio-secret" {
		t.Fatalf("blob options = %+v", opts)
	}
	if so := cfg.StorageOptions(nil); so.Driver != core.StorageSQLite || so.SQLitePath != "/tmp/ward.db" {
		t.Fatalf("storage options = %+v", so)
	}
	if cfg.TraceFile != "/tmp/ward-trace.jsonl" {
		t.Fatalf("trace file = %q", cfg.TraceFile)
	}
	if cfg.Level().String() != "debug" {
		t.Fatalf("level = %s", cfg.Level())
	}
}

func TestLoadReadsDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PORT=7000\nWARDCORE_DOCUMENT_KEY=ward.json\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7000" || cfg.DocumentKey != "ward.json" {
		t.Fatalf("dotenv not applied: %+v", cfg)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	base := func() Config {
		return Config{StorageDriver: "memory", BlobDriver: "memory", LogLevel: "info"}
	}
	cases := map[string]func(*Config){
		"unknown storage":   func(c *Config) { c.StorageDriver = "mongo" },
		"postgres sans dsn": func(c *Config) { c.StorageDriver = "postgres" },
		"sqlite sans path":  func(c *Config) { c.StorageDriver = "sqlite" },
		"unknown blob":      func(c *Config) { c.BlobDriver = "gcs" },
		"s3 sans bucket":    func(c *Config) { c.BlobDriver = "s3" },
		"negative cap":      func(c *Config) { c.RetainVitals = -1 },
		"bad level":         func(c *Config) { c.LogLevel = "loud" },
	}
	ok := base()
	if err := ok.Validate(); err != nil {
		t.Fatalf("baseline should validate: %v", err)
	}
	for name, mutate := range cases {
		cfg := base()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
