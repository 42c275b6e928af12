package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults shared between LoadConfig and the command-line flags, so both
// layers resolve to the same values when nothing is set.
const (
	DefaultLogLevel         = "info"
	DefaultSpeedtestTimeout = 2 * time.Minute
	DefaultProbeTimeout     = 10 * time.Second
	DefaultTimeFormat       = "15:04:05"
)

// DefaultMACPrefixes orders the interface name prefixes the hardware
// address probe recognizes. Wired ethernet first, then wireless, then
// the loopback-style fallback.
func DefaultMACPrefixes() []string {
	return []string{"eth", "en", "wlan", "wl", "l"}
}

// Config holds the application configuration with validation
type Config struct {
	// Logging settings
	Logging LoggingConfig

	// Store settings
	Store StoreConfig

	// Collection settings
	Collector CollectorConfig
}

// LoggingConfig holds log output configuration
type LoggingConfig struct {
	Level  string `validate:"required,oneof=debug info warn error"`
	Pretty bool
}

// StoreConfig holds flat-file store configuration
type StoreConfig struct {
	// Path of the CSV store. Empty means the command prompts for one.
	Path string

	// ReplaceOnConflict rewrites the existing row for this machine
	// instead of refusing the run.
	ReplaceOnConflict bool
}

// CollectorConfig holds snapshot collection configuration
type CollectorConfig struct {
	MACPrefixes      []string      `validate:"required"`
	ProbeTimeout     time.Duration `validate:"required"`
	SpeedtestTimeout time.Duration `validate:"required"`
	SpeedtestServers []int
	TimeFormat       string `validate:"required"`
}

// LoadConfig loads and validates the configuration from environment
// variables. Settings that are also command-line flags (store path, log
// level, speedtest timeout) start from the shared defaults here and are
// overridden by the command layer after flag parsing.
func LoadConfig() (*Config, error) {

	config := &Config{
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Pretty: false,
		},

		Store: StoreConfig{
			Path:              "",
			ReplaceOnConflict: false,
		},

		Collector: CollectorConfig{
			MACPrefixes:      getEnvAsSlice("CATALOG_MAC_PREFIXES", DefaultMACPrefixes()),
			ProbeTimeout:     getEnvAsDuration("CATALOG_PROBE_TIMEOUT", DefaultProbeTimeout),
			SpeedtestTimeout: DefaultSpeedtestTimeout,
			SpeedtestServers: getEnvAsIntSlice("CATALOG_SPEEDTEST_SERVERS", nil),
			TimeFormat:       getEnv("CATALOG_TIME_FORMAT", DefaultTimeFormat),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate re-checks the configuration. The command layer calls this
// after applying flag overrides, which can introduce values LoadConfig
// never produces.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig performs basic validation on the configuration
func validateConfig(config *Config) error {
	var errors []string

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("log level %q is not one of debug, info, warn, error", config.Logging.Level))
	}

	if len(config.Collector.MACPrefixes) == 0 {
		errors = append(errors, "at least one MAC interface prefix is required")
	}
	if config.Collector.ProbeTimeout <= 0 {
		errors = append(errors, "probe timeout must be positive")
	}
	if config.Collector.SpeedtestTimeout <= 0 {
		errors = append(errors, "speedtest timeout must be positive")
	}
	if config.Collector.TimeFormat == "" {
		errors = append(errors, "time format is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvAsIntSlice(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	ints := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return defaultValue
		}
		ints = append(ints, n)
	}
	return ints
}
