package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddr          = ":8080"
	defaultBaseURL       = "http://localhost:8080"
	defaultStorageDir    = "data"
	defaultAvatarMax     = 5 << 20
	defaultQueryTimeout  = 5 * time.Second
	minSessionSecretSize = 16
)

var defaultAvatarTypes = []string{"image/png", "image/jpeg", "image/jpg"}

// Provider exposes configuration values through getters so handlers and tests
// can depend on an interface instead of the concrete struct.
type Provider interface {
	GetAppAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string
	GetDBURL() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetDBQueryTimeout() time.Duration
	GetStorageDir() string
	GetAvatarMaxBytes() int64
	GetAvatarAllowedTypes() []string
	GetLogFormat() string
	GetLogLevel() string
	GetDevUserEmail() string
	GetDevUserPassword() string
	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetTracingZipkinURL() string
}

// Config holds all configuration for the application.
type Config struct {
	AppAddr            string
	AppBaseURL         string
	SessionSecret      string
	DBUrl              string
	DBNs               string
	DBDb               string
	DBUser             string
	DBPass             string
	DBQueryTimeout     time.Duration
	StorageDir         string
	AvatarMaxBytes     int64
	AvatarAllowedTypes []string
	LogFormat          string
	LogLevel           string
	DevUserEmail       string
	DevUserPassword    string
	TracingEnabled     bool
	TracingServiceName string
	TracingZipkinURL   string
}

// New loads configuration from the environment, reading a .env file first if one exists.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// slog is not configured yet at this point.
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppAddr:            getEnv("APP_ADDR", defaultAddr),
		AppBaseURL:         getEnv("APP_BASE_URL", defaultBaseURL),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		DBUrl:              os.Getenv("SURREAL_URL"),
		DBNs:               os.Getenv("SURREAL_NS"),
		DBDb:               os.Getenv("SURREAL_DB"),
		DBUser:             os.Getenv("SURREAL_USER"),
		DBPass:             os.Getenv("SURREAL_PASS"),
		StorageDir:         getEnv("STORAGE_DIR", defaultStorageDir),
		AvatarAllowedTypes: getList("AVATAR_ALLOWED_TYPES", defaultAvatarTypes),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		LogLevel:           getEnv("LOG_LEVEL", "debug"),
		DevUserEmail:       os.Getenv("DEV_USER_EMAIL"),
		DevUserPassword:    os.Getenv("DEV_USER_PASSWORD"),
		TracingServiceName: getEnv("PUBSUB_TRACING_SERVICE_NAME", "accountdash"),
		TracingZipkinURL:   getEnv("PUBSUB_TRACING_ZIPKIN_URL", "http://localhost:9411/api/v2/spans"),
	}

	var err error
	if cfg.DBQueryTimeout, err = getDuration("DB_QUERY_TIMEOUT", defaultQueryTimeout); err != nil {
		return nil, err
	}
	if cfg.AvatarMaxBytes, err = getInt64("AVATAR_MAX_BYTES", defaultAvatarMax); err != nil {
		return nil, err
	}
	if cfg.TracingEnabled, err = getBool("PUBSUB_TRACING_ENABLED", false); err != nil {
		return nil, err
	}

	if len(cfg.SessionSecret) < minSessionSecretSize {
		return nil, errors.New("SESSION_SECRET must be set and at least 16 characters long")
	}
	if cfg.DBUrl != "" && (cfg.DBNs == "" || cfg.DBDb == "") {
		return nil, errors.New("SURREAL_NS and SURREAL_DB are required when SURREAL_URL is set")
	}

	return cfg, nil
}

func (c *Config) GetAppAddr() string { return c.AppAddr }
func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string { return c.SessionSecret }
func (c *Config) GetDBURL() string { return c.DBUrl }
func (c *Config) GetDBNs() string { return c.DBNs }
func (c *Config) GetDBDb() string { return c.DBDb }
func (c *Config) GetDBUser() string { return c.DBUser }
func (c *Config) GetDBPass() string { return c.DBPass }
func (c *Config) GetDBQueryTimeout() time.Duration { return c.DBQueryTimeout }
func (c *Config) GetStorageDir() string { return c.StorageDir }
func (c *Config) GetAvatarMaxBytes() int64 { return c.AvatarMaxBytes }
func (c *Config) GetAvatarAllowedTypes() []string { return c.AvatarAllowedTypes }
func (c *Config) GetLogFormat() string { return c.LogFormat }
func (c *Config) GetLogLevel() string { return c.LogLevel }
func (c *Config) GetDevUserEmail() string { return c.DevUserEmail }
func (c *Config) GetDevUserPassword() string { return c.DevUserPassword }
func (c *Config) GetTracingEnabled() bool { return c.TracingEnabled }
func (c *Config) GetTracingServiceName() string { return c.TracingServiceName }
func (c *Config) GetTracingZipkinURL() string { return c.TracingZipkinURL }

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, errors.New(key + " must be a positive duration such as 5s")
	}
	return d, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(key + " must be true or false")
	}
	return b, nil
}
