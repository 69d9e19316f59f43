package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"rewards/database"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Storage
	Store        string // "postgres" or "memory"
	DatabaseURL  string
	DatabaseName string
	MaxTxRetries int

	// HTTP transport
	HTTPAddr string

	// NATS configuration
	NATSEnabled bool
	NATSServers string // comma-separated

	// Balance read cache, disabled when RedisURL is empty
	RedisURL        string
	BalanceCacheTTL time.Duration

	// Rewards
	MissionDayTimezone   string
	SignupBonusPoints    int64
	ReferralBonusPoints  int64
	ReferralBonusTickets int64

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"
	LogFile   string

	// OpenTelemetry
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// Location returns the time zone mission days are computed in
func (c *Config) Location() (*time.Location, error) {
	if c.MissionDayTimezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.MissionDayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid MISSION_DAY_TIMEZONE %q: %w", c.MissionDayTimezone, err)
	}
	return loc, nil
}

// NATSServerList splits NATSServers into individual URLs
func (c *Config) NATSServerList() []string {
	servers := make([]string, 0)
	for _, s := range strings.Split(c.NATSServers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}

// load loads configuration from the environment, after an optional .env file
func load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	config := &Config{
		Store:        getEnvWithDefault("STORE", StorePostgres),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),
		MaxTxRetries: getIntWithDefault("MAX_TX_RETRIES", 3),

		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		NATSEnabled: getBoolWithDefault("NATS_ENABLED", false),
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		RedisURL:        os.Getenv("REDIS_URL"),
		BalanceCacheTTL: getDurationWithDefault("BALANCE_CACHE_TTL", 30*time.Second),

		MissionDayTimezone:   getEnvWithDefault("MISSION_DAY_TIMEZONE", "UTC"),
		SignupBonusPoints:    getInt64WithDefault("SIGNUP_BONUS_POINTS", 0),
		ReferralBonusPoints:  getInt64WithDefault("REFERRAL_BONUS_POINTS", 100),
		ReferralBonusTickets: getInt64WithDefault("REFERRAL_BONUS_TICKETS", 0),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),
		LogFile:   os.Getenv("LOG_FILE"),

		OTelEnabled:              getBoolWithDefault("OTEL_ENABLED", false),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "localhost:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "rewards"),
		OTelExportIntervalMillis: getIntWithDefault("OTEL_EXPORT_INTERVAL_MILLIS", 60000),

		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" && c.Environment != "test" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}

	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	if c.MaxTxRetries < 0 {
		return fmt.Errorf("MAX_TX_RETRIES must not be negative")
	}
	if c.SignupBonusPoints < 0 || c.ReferralBonusPoints < 0 || c.ReferralBonusTickets < 0 {
		return fmt.Errorf("bonus amounts must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Store:                    StoreMemory,
		MaxTxRetries:             3,
		HTTPAddr:                 ":0",
		BalanceCacheTTL:          30 * time.Second,
		MissionDayTimezone:       "UTC",
		ReferralBonusPoints:      100,
		LogLevel:                 "debug",
		LogFormat:                "text",
		OTelExporterType:         "none",
		OTelServiceName:          "rewards-test",
		OTelExportIntervalMillis: 60000,
		Environment:              "test",
	}
}
