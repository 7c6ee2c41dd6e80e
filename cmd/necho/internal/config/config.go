package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
)

// ListenerMode selects how the listening socket is created.
type ListenerMode string

const (
	ListenerModeSocket   ListenerMode = "socket"
	ListenerModeStandard ListenerMode = "standard"
)

const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 5000
	DefaultBacklog      = 5
	DefaultMaxLineBytes = 1 << 20

	DefaultMaxResponseBytes = 4 << 20
)

// Config holds all application configuration
type Config struct {
	// Core
	Debug     bool
	LogFormat string // text, json

	// Echo server
	Host             string
	Port             int
	Backlog          int
	ListenerMode     ListenerMode
	MaxLineBytes     int
	MaxResponseBytes int
	IdleTimeout      time.Duration

	// Health server
	HealthServerEnabled bool
	HealthServerPort    string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Debug:     getEnvBool("DEBUG", false),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		Host:             getEnv("NECHO_HOST", DefaultHost),
		Port:             getEnvInt("NECHO_PORT", DefaultPort),
		Backlog:          getEnvInt("NECHO_BACKLOG", DefaultBacklog),
		ListenerMode:     determineListenerMode(),
		MaxLineBytes:     getEnvInt("NECHO_MAX_LINE_BYTES", DefaultMaxLineBytes),
		MaxResponseBytes: getEnvInt("NECHO_MAX_RESPONSE_BYTES", DefaultMaxResponseBytes),
		IdleTimeout:      getEnvDuration("NECHO_IDLE_TIMEOUT", 0),

		HealthServerEnabled: getEnvBool("HEALTH_SERVER_ENABLED", false),
		HealthServerPort:    getEnv("HEALTH_SERVER_PORT", "8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyPortArg overrides the port with a command-line value.
func (c *Config) ApplyPortArg(arg string) error {
	port, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return fmt.Errorf("invalid port %q: must be a number", arg)
	}
	c.Port = port
	return c.Validate()
}

// ServerConfig returns the listening endpoint settings.
func (c *Config) ServerConfig() core.ServerConfig {
	return core.ServerConfig{
		BindAddress: c.Host,
		Port:        c.Port,
		Backlog:     c.Backlog,
	}
}

// Validate ensures configuration is coherent
func (c *Config) Validate() error {
	var errs field.ErrorList

	if c.Host != "" && net.ParseIP(c.Host) == nil && len(validation.IsDNS1123Subdomain(strings.ToLower(c.Host))) > 0 {
		errs = append(errs, field.Invalid(field.NewPath("NECHO_HOST"), c.Host, "must be an IP address or host name"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, field.Invalid(field.NewPath("NECHO_PORT"), c.Port, "must be between 0 and 65535"))
	}
	if c.Backlog < 1 {
		errs = append(errs, field.Invalid(field.NewPath("NECHO_BACKLOG"), c.Backlog, "must be at least 1"))
	}
	if c.MaxLineBytes < 1 {
		errs = append(errs, field.Invalid(field.NewPath("NECHO_MAX_LINE_BYTES"), c.MaxLineBytes, "must be at least 1"))
	}
	if c.MaxResponseBytes < 1 {
		errs = append(errs, field.Invalid(field.NewPath("NECHO_MAX_RESPONSE_BYTES"), c.MaxResponseBytes, "must be at least 1"))
	}
	if c.IdleTimeout < 0 {
		errs = append(errs, field.Invalid(field.NewPath("NECHO_IDLE_TIMEOUT"), c.IdleTimeout.String(), "must not be negative"))
	}

	validModes := []string{string(ListenerModeSocket), string(ListenerModeStandard)}
	if !contains(validModes, string(c.ListenerMode)) {
		errs = append(errs, field.NotSupported(field.NewPath("NECHO_LISTENER_MODE"), c.ListenerMode, validModes))
	}

	validFormats := []string{"text", "json"}
	if !contains(validFormats, c.LogFormat) {
		errs = append(errs, field.NotSupported(field.NewPath("LOG_FORMAT"), c.LogFormat, validFormats))
	}

	if c.HealthServerEnabled {
		if port, err := strconv.Atoi(c.HealthServerPort); err != nil || port < 0 || port > 65535 {
			errs = append(errs, field.Invalid(field.NewPath("HEALTH_SERVER_PORT"), c.HealthServerPort, "must be a port number"))
		} else if port != 0 && port == c.Port {
			errs = append(errs, field.Duplicate(field.NewPath("HEALTH_SERVER_PORT"), c.HealthServerPort))
		}
	}

	if err := errs.ToAggregate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func determineListenerMode() ListenerMode {
	switch strings.ToLower(os.Getenv("NECHO_LISTENER_MODE")) {
	case "", "socket", "raw":
		return ListenerModeSocket
	case "standard", "std", "net":
		return ListenerModeStandard
	default:
		return ListenerMode(os.Getenv("NECHO_LISTENER_MODE"))
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
