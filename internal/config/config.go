package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	RequestsDir string
	TargetsDir  string
	RunsDBPath  string
	OutputDir   string
	LogLevel    string
	BindAddr    string
	DefaultMode string
	Seed        int64
	BatchSize   int

	S3 ObjectStoreConfig
}

// ObjectStoreConfig points at an S3-compatible bucket for published
// artifacts. Publishing is disabled while Endpoint or Bucket is empty.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

func (c ObjectStoreConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// Load reads DATAGEN_* settings from the environment. A .env file in the
// working directory is applied first; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		RequestsDir: getEnv("DATAGEN_REQUESTS_DIR", "./requests"),
		TargetsDir:  getEnv("DATAGEN_TARGETS_DIR", "./targets"),
		RunsDBPath:  getEnv("DATAGEN_RUNS_DB", "./datagen-runs.sqlite"),
		OutputDir:   getEnv("DATAGEN_OUTPUT_DIR", "./output"),
		LogLevel:    getEnv("DATAGEN_LOG_LEVEL", "info"),
		BindAddr:    getEnv("DATAGEN_BIND_ADDR", ":8080"),
		DefaultMode: getEnv("DATAGEN_DEFAULT_MODE", "create"),
		Seed:        getEnvInt64("DATAGEN_SEED", 42),
		BatchSize:   int(getEnvInt64("DATAGEN_BATCH_SIZE", 1000)),
		S3: ObjectStoreConfig{
			Endpoint:  getEnv("DATAGEN_S3_ENDPOINT", ""),
			AccessKey: getEnv("DATAGEN_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("DATAGEN_S3_SECRET_KEY", ""),
			Bucket:    getEnv("DATAGEN_S3_BUCKET", ""),
			Region:    getEnv("DATAGEN_S3_REGION", "us-east-1"),
			UseSSL:    getEnvBool("DATAGEN_S3_USE_SSL", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}
