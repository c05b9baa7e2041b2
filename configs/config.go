package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

// Enabled reports whether enough credentials are present to stage media in R2.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != ""
}

type Connect struct {
	PollInterval time.Duration
	SettleDelay  time.Duration
	ProbeEvery   int
	Timeout      time.Duration
}

type Config struct {
	APIBaseURL     string
	ListenAddr     string
	FrontendURL    string
	SecretKey      string
	CookieName     string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	StorageDriver  string
	StorageDir     string
	PostgresURI    string
	RedisURI       string
	MediaDir       string
	R2             R2
	Connect        Connect
	LogLevel       slog.Level
}

func LoadConfig() *Config {
	return &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8000"),
		ListenAddr:     getEnv("LISTEN_ADDR", ":3000"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:      getEnv("SECRET_KEY", ""),
		CookieName:     getEnv("COOKIE_NAME", "postflow_session"),
		SessionTTL:     getDuration("SESSION_TTL", 24*time.Hour),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 2*time.Minute),
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", "file")),
		StorageDir:     getEnv("STORAGE_DIR", defaultStorageDir()),
		PostgresURI:    getEnv("POSTGRES_URI", ""),
		RedisURI:       getEnv("REDIS_URI", ""),
		MediaDir:       getEnv("MEDIA_DIR", os.TempDir()),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		Connect: Connect{
			PollInterval: getDuration("CONNECT_POLL_INTERVAL", time.Second),
			SettleDelay:  getDuration("CONNECT_SETTLE_DELAY", 2*time.Second),
			ProbeEvery:   getInt("CONNECT_PROBE_EVERY", 5),
			Timeout:      getDuration("CONNECT_TIMEOUT", 5*time.Minute),
		},
		LogLevel: getLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getLevel(key string, defaultValue slog.Level) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return defaultValue
	}
	return level
}

func defaultStorageDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".postflow"
	}
	return dir + string(os.PathSeparator) + "postflow-studio"
}
