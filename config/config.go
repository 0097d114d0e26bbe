// Package config loads the service configuration from environment variables,
// including the values of the status directives.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment is the deployment environment the service runs in
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

// String returns the environment name
func (e Environment) String() string {
	return string(e)
}

// ParseEnvironment parses an ENV value, accepting long forms of the names
func ParseEnvironment(value string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}

	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", value)
}

// Counter modes for STATUS_COUNTERS
const (
	CountersStatic = "static"
	CountersLive   = "live"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	// status directives
	StatusEnabled  bool     // status;
	StatusLocation string   // location the status directive is applied in
	StatusFormat   []string // status_format arguments, nil when unset
	StatusZone     []string // status_zone arguments, nil when unset

	StatusCounters   string        // static or live
	SnapshotInterval time.Duration // how often the global snapshot is refreshed
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	statusEnabled, err := parseSwitch(getEnvWithDefault("STATUS", "on"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATUS: %w", err)
	}

	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENV: %w", err)
	}

	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               env,
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogDir:            os.Getenv("LOG_DIR"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default

		StatusEnabled:    statusEnabled,
		StatusLocation:   getEnvWithDefault("STATUS_LOCATION", "/status"),
		StatusFormat:     directiveArgs(os.Getenv("STATUS_FORMAT")),
		StatusZone:       directiveArgs(os.Getenv("STATUS_ZONE")),
		StatusCounters:   strings.ToLower(getEnvWithDefault("STATUS_COUNTERS", CountersStatic)),
		SnapshotInterval: getDurationEnvWithDefault("SNAPSHOT_INTERVAL", 10*time.Second),
	}

	if _, ok := os.LookupEnv("LOG_DIR"); !ok {
		cfg.LogDir = "logs"
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validateLocation(cfg.StatusLocation); err != nil {
		return fmt.Errorf("invalid STATUS_LOCATION: %w", err)
	}

	if err := validateDirectiveArgs(cfg.StatusFormat); err != nil {
		return fmt.Errorf("invalid STATUS_FORMAT: %w", err)
	}

	if err := validateDirectiveArgs(cfg.StatusZone); err != nil {
		return fmt.Errorf("invalid STATUS_ZONE: %w", err)
	}

	if err := validateCounters(cfg.StatusCounters); err != nil {
		return fmt.Errorf("invalid STATUS_COUNTERS: %w", err)
	}

	if err := validateSnapshotInterval(cfg.SnapshotInterval); err != nil {
		return fmt.Errorf("invalid SNAPSHOT_INTERVAL: %w", err)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	// A status page exposes server internals, keep it off public interfaces
	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env Environment) error {
	if env == "" {
		return fmt.Errorf("ENV cannot be empty")
	}

	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction, EnvTest:
		return nil
	}

	return fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", env)
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 {
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE must be positive, got: %d", size)
	}

	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// validateLocation validates the path the status location is mounted at
func validateLocation(location string) error {
	if !strings.HasPrefix(location, "/") {
		return fmt.Errorf("location must start with '/', got: %q", location)
	}

	if strings.ContainsAny(location, " \t{}*") {
		return fmt.Errorf("location must be a plain path, got: %q", location)
	}

	switch location {
	case "/health", "/metrics":
		return fmt.Errorf("location %s is reserved", location)
	}

	return nil
}

// validateDirectiveArgs checks a directive taking one or two arguments
func validateDirectiveArgs(args []string) error {
	if args == nil {
		return nil
	}

	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("takes 1 or 2 arguments, got: %d", len(args))
	}

	return nil
}

// validateCounters validates the STATUS_COUNTERS environment variable
func validateCounters(mode string) error {
	switch mode {
	case CountersStatic, CountersLive:
		return nil
	}

	return fmt.Errorf("STATUS_COUNTERS must be one of: [%s %s], got: %s", CountersStatic, CountersLive, mode)
}

// validateSnapshotInterval validates the SNAPSHOT_INTERVAL environment variable
func validateSnapshotInterval(interval time.Duration) error {
	if interval < time.Second {
		return fmt.Errorf("SNAPSHOT_INTERVAL is too small (min 1s), got: %s", interval)
	}

	if interval > time.Hour {
		return fmt.Errorf("SNAPSHOT_INTERVAL is too large (max 1h), got: %s", interval)
	}

	return nil
}

// parseSwitch parses an on/off directive flag
func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}

	return false, fmt.Errorf("must be on or off, got: %s", value)
}

// directiveArgs splits a directive value into its arguments. An unset variable
// yields nil, a set but blank one yields an empty slice.
func directiveArgs(value string) []string {
	if value == "" {
		return nil
	}

	args := strings.Fields(value)
	if args == nil {
		return []string{}
	}

	return args
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnvWithDefault gets an environment variable as a duration with a default value
func getDurationEnvWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"STATUS",
		"STATUS_LOCATION",
		"STATUS_FORMAT",
		"STATUS_ZONE",
		"STATUS_COUNTERS",
		"SNAPSHOT_INTERVAL",
	}
}
