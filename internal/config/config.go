package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Ledger     LedgerConfig
	Queues     QueueConfig
	Reconciler ReconcilerConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type RedisConfig struct {
	Addr     string // host:port, defaults to localhost:6379
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint  string // S3-compatible gateway, e.g. https://gateway.storjshare.io
	Region    string // required by the SDK, unused by Storj-style gateways
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string // public gateway base recorded as storage_url on metadata rows
	PutExpiry time.Duration // lifetime of presigned upload URLs
	GetExpiry time.Duration // lifetime of presigned download URLs
}

type LedgerConfig struct {
	KeyPrefix    string
	ReservedTTL  time.Duration // how long an unconfirmed reservation blocks re-upload
	ConfirmedTTL time.Duration // 0 means confirmed entries never expire
}

type QueueConfig struct {
	SelfieQueue     string // high priority, drained first by the matching worker
	EventPhotoQueue string // low priority
}

type ReconcilerConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration // pending records older than this get re-enqueued
	BatchSize  int
}

// tuningDefaults mirrors the structure of the embedded defaults.yaml.
type tuningDefaults struct {
	Ledger struct {
		KeyPrefix           string `yaml:"key_prefix"`
		ReservedTTLSeconds  int    `yaml:"reserved_ttl_seconds"`
		ConfirmedTTLSeconds int    `yaml:"confirmed_ttl_seconds"`
	} `yaml:"ledger"`
	Storage struct {
		PutExpirySeconds int `yaml:"put_expiry_seconds"`
		GetExpirySeconds int `yaml:"get_expiry_seconds"`
	} `yaml:"storage"`
	Queues struct {
		Selfie     string `yaml:"selfie"`
		EventPhoto string `yaml:"event_photo"`
	} `yaml:"queues"`
	Reconciler struct {
		IntervalSeconds   int `yaml:"interval_seconds"`
		StaleAfterSeconds int `yaml:"stale_after_seconds"`
		BatchSize         int `yaml:"batch_size"`
	} `yaml:"reconciler"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envIntZero reads an environment variable as a non-negative integer,
// defaulting to 0 when unset or invalid.
func envIntZero(key string) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 0
}

// envSeconds reads an environment variable as a duration in seconds.
// Unlike envInt, zero is a valid value here (used to disable a TTL).
func envSeconds(key string, defaultVal int) time.Duration {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(defaultVal) * time.Second
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var d tuningDefaults
	if err := yaml.Unmarshal(defaultsYAML, &d); err != nil {
		// Embedded file, so this cannot happen outside of a broken build.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     envString("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envIntZero("REDIS_DB"),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			Region:    envString("STORAGE_REGION", "us-east-1"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:    os.Getenv("STORAGE_BUCKET"),
			PublicURL: os.Getenv("STORAGE_PUBLIC_URL"),
			PutExpiry: envSeconds("STORAGE_PUT_EXPIRY", d.Storage.PutExpirySeconds),
			GetExpiry: envSeconds("STORAGE_GET_EXPIRY", d.Storage.GetExpirySeconds),
		},
		Ledger: LedgerConfig{
			KeyPrefix:    envString("LEDGER_KEY_PREFIX", d.Ledger.KeyPrefix),
			ReservedTTL:  envSeconds("LEDGER_RESERVED_TTL", d.Ledger.ReservedTTLSeconds),
			ConfirmedTTL: envSeconds("LEDGER_CONFIRMED_TTL", d.Ledger.ConfirmedTTLSeconds),
		},
		Queues: QueueConfig{
			SelfieQueue:     envString("SELFIE_QUEUE", d.Queues.Selfie),
			EventPhotoQueue: envString("EVENT_PHOTO_QUEUE", d.Queues.EventPhoto),
		},
		Reconciler: ReconcilerConfig{
			Interval:   envSeconds("RECONCILER_INTERVAL", d.Reconciler.IntervalSeconds),
			StaleAfter: envSeconds("RECONCILER_STALE_AFTER", d.Reconciler.StaleAfterSeconds),
			BatchSize:  envInt("RECONCILER_BATCH_SIZE", d.Reconciler.BatchSize),
		},
	}
}
