package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported document store backends.
const (
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// ErrBucketRequired is returned by Validate when no upload bucket is configured.
var ErrBucketRequired = errors.New("BUCKET_NAME env var is required")

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	AutoMigrate        bool
}

// DynamoDBConfig holds settings for the DynamoDB-backed user table.
type DynamoDBConfig struct {
	Table string
	// Endpoint overrides the regional endpoint (e.g. DynamoDB Local).
	Endpoint string
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Backend  string
	Database DatabaseConfig
	DynamoDB DynamoDBConfig
}

// StorageConfig holds object storage settings. Any S3-compatible endpoint works;
// the default points at the regional AWS S3 endpoint.
type StorageConfig struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
	CreateBucket  bool
}

// UploadConfig controls upload grant issuance.
type UploadConfig struct {
	Expiry    time.Duration
	KeyPrefix string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost         string
	Port            string
	Region          string
	Timezone        string
	LogLevel        string
	CORSOrigins     string
	BodyLimit       int
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	Store           StoreConfig
	Storage         StorageConfig
	Upload          UploadConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	region := getEnv("AWS_REGION", "us-east-1")

	return &AppConfig{
		AppHost:         getEnv("APP_HOST", "localhost:8080"),
		Port:            getEnv("PORT", getEnv("APP_PORT", "8080")),
		Region:          region,
		Timezone:        getEnv("APP_TIMEZONE", "UTC"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigins:     getEnv("CORS_ORIGIN", "*"),
		BodyLimit:       getEnvInt("BODY_LIMIT_BYTES", 2*1024*1024),
		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
			Database: DatabaseConfig{
				Host:               getEnv("DB_HOST", ""),
				Port:               getEnv("DB_PORT", "5432"),
				User:               getEnv("DB_USER", ""),
				Password:           getEnv("DB_PASSWORD", ""),
				Name:               getEnv("DB_NAME", ""),
				SSLMode:            getEnv("DB_SSLMODE", "disable"),
				MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
				MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
				ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
				AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
			},
			DynamoDB: DynamoDBConfig{
				Table:    getEnv("TABLE_NAME", "users"),
				Endpoint: getEnv("DYNAMODB_ENDPOINT", ""),
			},
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("S3_ENDPOINT", "s3."+region+".amazonaws.com"),
			Region:        region,
			AccessKey:     getEnv("S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("S3_SECRET_KEY", ""),
			Bucket:        getEnv("BUCKET_NAME", getEnv("S3_BUCKET_NAME", "")),
			UseSSL:        getEnvBool("S3_USE_SSL", true),
			PublicBaseURL: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
			CreateBucket:  getEnvBool("S3_CREATE_BUCKET", false),
		},
		Upload: UploadConfig{
			Expiry:    getEnvDuration("UPLOAD_URL_EXPIRY", 15*time.Minute),
			KeyPrefix: getEnv("UPLOAD_KEY_PREFIX", "avatars/"),
		},
	}
}

// Validate reports configuration the process cannot start without.
func (c *AppConfig) Validate() error {
	if c.Storage.Bucket == "" {
		return ErrBucketRequired
	}
	switch c.Store.Backend {
	case BackendPostgres, BackendDynamoDB, BackendMemory:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Upload.Expiry <= 0 || c.Upload.Expiry > 7*24*time.Hour {
		return fmt.Errorf("UPLOAD_URL_EXPIRY must be between 1s and 168h, got %s", c.Upload.Expiry)
	}
	return nil
}

// AllowedOrigins splits CORSOrigins into its comma-separated entries.
func (c *AppConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Location resolves the configured log time zone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
