// Package config loads wardcore settings from WARDCORE_* environment
// variables and an optional .env file.
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"wardcore/internal/blob"
	"wardcore/internal/core"
	"wardcore/pkg/domain"
)

// EnvPrefix is prepended (with an underscore) to every variable name.
const EnvPrefix = "WARDCORE"

type Config struct {
	Env              string `mapstructure:"ENV"`
	Port             string `mapstructure:"PORT"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
	StorageDriver    string `mapstructure:"STORAGE_DRIVER"`
	SQLitePath       string `mapstructure:"SQLITE_PATH"`
	PostgresDSN      string `mapstructure:"POSTGRES_DSN"`
	DocumentKey      string `mapstructure:"DOCUMENT_KEY"`
	BlobDriver       string `mapstructure:"BLOB_DRIVER"`
	BlobFSRoot       string `mapstructure:"BLOB_FS_ROOT"`
	BlobS3Bucket     string `mapstructure:"BLOB_S3_BUCKET"`
	BlobS3Region     string `mapstructure:"BLOB_S3_REGION"`
	BlobS3Endpoint   string `mapstructure:"BLOB_S3_ENDPOINT"`
	BlobS3PathStyle  bool   `mapstructure:"BLOB_S3_PATH_STYLE"`
	BlobS3AccessKey  string `mapstructure:"BLOB_S3_ACCESS_KEY_ID"`
	BlobS3SecretKey  string `mapstructure:"BLOB_S3_SECRET_ACCESS_KEY"`
	RetainVitals     int    `mapstructure:"RETAIN_VITALS"`
	RetainAdminister int    `mapstructure:"RETAIN_ADMINISTRATIONS"`
	RetainAlerts     int    `mapstructure:"RETAIN_ALERTS"`
	TraceFile        string `mapstructure:"TRACE_FILE"`
}

var keys = []string{
	"ENV", "PORT", "LOG_LEVEL",
	"STORAGE_DRIVER", "SQLITE_PATH", "POSTGRES_DSN", "DOCUMENT_KEY",
	"BLOB_DRIVER", "BLOB_FS_ROOT", "BLOB_S3_BUCKET", "BLOB_S3_REGION", "BLOB_S3_ENDPOINT", "BLOB_S3_PATH_STYLE",
	"BLOB_S3_ACCESS_KEY_ID", "BLOB_S3_SECRET_ACCESS_KEY",
	"RETAIN_VITALS", "RETAIN_ADMINISTRATIONS", "RETAIN_ALERTS",
	"TRACE_FILE",
}

// Load reads the environment (and ./.env when present), applies defaults and validates.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path; a missing file is ignored.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	retention := domain.DefaultRetentionPolicy()
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", string(core.StorageDocument))
	v.SetDefault("SQLITE_PATH", "wardcore.db")
	v.SetDefault("DOCUMENT_KEY", "hospital-data.json")
	v.SetDefault("BLOB_DRIVER", string(blob.DriverFilesystem))
	v.SetDefault("BLOB_FS_ROOT", "./blobdata")
	v.SetDefault("BLOB_S3_REGION", "us-east-1")
	v.SetDefault("RETAIN_VITALS", retention.VitalsHistory)
	v.SetDefault("RETAIN_ADMINISTRATIONS", retention.AdministrationLog)
	v.SetDefault("RETAIN_ALERTS", retention.Alerts)

	// Bind explicitly so Unmarshal sees variables without defaults.
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	// The dotenv file holds unprefixed keys (PORT=9000) or prefixed ones.
	if err := v.ReadInConfig(); err == nil {
		for _, key := range keys {
			if prefixed := EnvPrefix + "_" + key; v.InConfig(strings.ToLower(prefixed)) {
				v.SetDefault(key, v.Get(prefixed))
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown drivers and missing required settings.
func (c *Config) Validate() error {
	switch core.StorageDriver(c.StorageDriver) {
	case core.StorageMemory, core.StorageDocument:
	case core.StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%s_SQLITE_PATH is required for the sqlite driver", EnvPrefix)
		}
	case core.StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%s_POSTGRES_DSN is required for the postgres driver", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	switch blob.Driver(c.BlobDriver) {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.BlobS3Bucket == "" {
			return fmt.Errorf("%s_BLOB_S3_BUCKET is required for the s3 blob driver", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.BlobDriver)
	}
	if c.RetainVitals < 0 || c.RetainAdminister < 0 || c.RetainAlerts < 0 {
		return fmt.Errorf("retention limits must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Level returns the parsed log level; Validate guarantees it parses.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Retention returns the configured retention policy.
func (c *Config) Retention() domain.RetentionPolicy {
	return domain.RetentionPolicy{
		VitalsHistory:     c.RetainVitals,
		AdministrationLog: c.RetainAdminister,
		Alerts:            c.RetainAlerts,
	}
}

// BlobOptions returns the blob backend selection.
func (c *Config) BlobOptions() blob.Options {
	return blob.Options{
		Driver: blob.Driver(c.BlobDriver),
		FSRoot: c.BlobFSRoot,
		S3: blob.S3Config{
			Bucket:    c.BlobS3Bucket,
			Region:    c.BlobS3Region,
			Endpoint:  c.BlobS3Endpoint,
			PathStyle: c.BlobS3PathStyle,
			// empty keys fall back to the default AWS credential chain
			AccessKeyID:     c.BlobS3AccessKey,
			SecretAccessKey: c.BlobS3SecretKey,
		},
	}
}

// StorageOptions returns the persistent store selection; blobs backs the document driver.
func (c *Config) StorageOptions(blobs blob.Store) core.StorageOptions {
	return core.StorageOptions{
		Driver:      core.StorageDriver(c.StorageDriver),
		SQLitePath:  c.SQLitePath,
		PostgresDSN: c.PostgresDSN,
		DocumentKey: c.DocumentKey,
		Blobs:       blobs,
	}
}
