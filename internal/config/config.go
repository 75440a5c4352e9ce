package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	Lake          LakeConfig
	ObjectStore   ObjectStoreConfig
	Pipeline      PipelineConfig
	Metrics       MetricsConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

// LakeConfig describes the DuckLake catalog attached to the DuckDB session.
// Catalog is either a catalog file path or "postgres:<dsn>" for a
// Postgres-backed catalog.
type LakeConfig struct {
	Catalog       string
	Alias         string
	DataPath      string
	MaxMemoryGB   int
	AttachTimeout time.Duration
}

type ObjectStoreConfig struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type PipelineConfig struct {
	SourceFolder    string
	TargetSchema    string
	SyncInterval    time.Duration
	RefreshInterval time.Duration
}

type MetricsConfig struct {
	Enabled bool
	Address string
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("SUSHI_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid SUSHI_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "SUSHI_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_LAKE_CATALOG", &cfg.Lake.Catalog); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_LAKE_ALIAS", &cfg.Lake.Alias); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_LAKE_DATA_PATH", &cfg.Lake.DataPath); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SUSHI_LAKE_MAX_MEMORY_GB", &cfg.Lake.MaxMemoryGB); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SUSHI_LAKE_ATTACH_TIMEOUT", &cfg.Lake.AttachTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_OBJECTSTORE_REGION", &cfg.ObjectStore.Region); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SUSHI_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SUSHI_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_PIPELINE_SOURCE_FOLDER", &cfg.Pipeline.SourceFolder); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_PIPELINE_TARGET_SCHEMA", &cfg.Pipeline.TargetSchema); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SUSHI_PIPELINE_SYNC_INTERVAL", &cfg.Pipeline.SyncInterval); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SUSHI_PIPELINE_REFRESH_INTERVAL", &cfg.Pipeline.RefreshInterval); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SUSHI_METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SUSHI_METRICS_ADDR", &cfg.Metrics.Address); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SUSHI_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "SUSHI_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.Lake.Catalog == "" {
		return Config{}, fmt.Errorf("lake catalog is required")
	}
	if cfg.Lake.Alias == "" {
		return Config{}, fmt.Errorf("lake alias is required")
	}
	if cfg.Pipeline.TargetSchema == "" {
		return Config{}, fmt.Errorf("pipeline target schema is required")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "sushi-train"},
		Lake: LakeConfig{
			Catalog:       "sushi_train.ducklake",
			Alias:         "my_ducklake",
			DataPath:      "s3://sushi-train/lake",
			MaxMemoryGB:   0,
			AttachTimeout: 30 * time.Second,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "sushi-train",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			UseSSL:           false,
			Prefix:           "",
			AutoCreateBucket: true,
		},
		Pipeline: PipelineConfig{
			SourceFolder:    "raw",
			TargetSchema:    "RAW",
			SyncInterval:    5 * time.Minute,
			RefreshInterval: 30 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: ":9102",
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.Observability.LogLevel = slog.LevelWarn
		cfg.Metrics.Enabled = false
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
