package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/resourcekit/errors"
)

// Config is the complete toolkit configuration for one service process.
type Config struct {
	Service   ServiceConfig   `json:"service"             yaml:"service"`
	NATS      NATSConfig      `json:"nats,omitempty"      yaml:"nats,omitempty"`
	Discovery DiscoveryConfig `json:"discovery,omitempty" yaml:"discovery,omitempty"`
	Logging   LoggingConfig   `json:"logging,omitempty"   yaml:"logging,omitempty"`
	Session   SessionConfig   `json:"session,omitempty"   yaml:"session,omitempty"`
	Metrics   MetricsConfig   `json:"metrics,omitempty"   yaml:"metrics,omitempty"`
}

// ServiceConfig identifies the service hosting resources.
type ServiceConfig struct {
	Name        string `json:"name"                  yaml:"name"`
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty"`
}

// NATSConfig holds connection settings for the queue transport, KV
// discovery and the log stream. Optional: deployments with only local and
// HTTP resources need none of it.
type NATSConfig struct {
	URL            string        `json:"url,omitempty"             yaml:"url,omitempty"`
	RequestTimeout time.Duration `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"`
}

// DiscoveryConfig selects and parameterizes the discoverer.
type DiscoveryConfig struct {
	// Mode is "static", "convention" or "kv". Empty means static.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// BaseURI roots convention-mode resolution.
	BaseURI string `json:"base_uri,omitempty" yaml:"base_uri,omitempty"`

	// Bucket names the KV-mode bucket; empty uses the default.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
}

// LoggingConfig parameterizes the structured report sink.
type LoggingConfig struct {
	// MinLevel is "debug", "info", "warn" or "error". Empty means debug.
	MinLevel string `json:"min_level,omitempty" yaml:"min_level,omitempty"`

	// StreamSubject enables the NATS stream writer when set.
	StreamSubject string `json:"stream_subject,omitempty" yaml:"stream_subject,omitempty"`

	// EchoConsole keeps console output active alongside the stream writer.
	EchoConsole bool `json:"echo_console,omitempty" yaml:"echo_console,omitempty"`
}

// SessionConfig carries the credentials for automatic session acquisition.
type SessionConfig struct {
	CallerID     string `json:"caller_id,omitempty"     yaml:"caller_id,omitempty"`
	CallerSecret string `json:"caller_secret,omitempty" yaml:"caller_secret,omitempty"`
}

// MetricsConfig parameterizes the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Port    int  `json:"port,omitempty"    yaml:"port,omitempty"`
}

// envPrefix namespaces the override variables.
const envPrefix = "RESOURCEKIT"

// Load reads the file at path, applies environment overrides and validates
// the result. The file format is chosen by extension: .json parses as JSON,
// .yaml and .yml as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.WrapInvalid(errors.ErrConfigNotFound, "Config", "Load", path)
		}
		return nil, errors.Wrap(err, "Config", "Load", "file read")
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Load",
			fmt.Sprintf("unsupported extension %q", ext))
	}
	if err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "file parse")
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used before any file or environment
// values apply.
func Default() *Config {
	return &Config{
		NATS:    NATSConfig{RequestTimeout: 5 * time.Second},
		Metrics: MetricsConfig{Port: 9090},
	}
}

// applyEnvOverrides lets the environment win over file values for the
// settings that commonly vary per deployment.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(envPrefix + "_SERVICE_NAME"); v != "" {
		c.Service.Name = v
	}
	if v := os.Getenv(envPrefix + "_ENVIRONMENT"); v != "" {
		c.Service.Environment = v
	}
	if v := os.Getenv(envPrefix + "_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv(envPrefix + "_DISCOVERY_MODE"); v != "" {
		c.Discovery.Mode = v
	}
	if v := os.Getenv(envPrefix + "_DISCOVERY_BASE_URI"); v != "" {
		c.Discovery.BaseURI = v
	}
	if v := os.Getenv(envPrefix + "_LOG_MIN_LEVEL"); v != "" {
		c.Logging.MinLevel = v
	}
	if v := os.Getenv(envPrefix + "_SESSION_CALLER_ID"); v != "" {
		c.Session.CallerID = v
	}
	if v := os.Getenv(envPrefix + "_SESSION_CALLER_SECRET"); v != "" {
		c.Session.CallerSecret = v
	}
	if v := os.Getenv(envPrefix + "_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Metrics.Port = port
		}
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "service.name is required")
	}

	switch c.Discovery.Mode {
	case "", "static":
	case "convention":
		if c.Discovery.BaseURI == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
				"discovery.base_uri is required in convention mode")
		}
	case "kv":
		if c.NATS.URL == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
				"nats.url is required in kv discovery mode")
		}
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown discovery.mode %q", c.Discovery.Mode))
	}

	switch c.Logging.MinLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown logging.min_level %q", c.Logging.MinLevel))
	}

	if c.Logging.StreamSubject != "" && c.NATS.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
			"nats.url is required when logging.stream_subject is set")
	}

	// One credential without the other is always a mistake.
	if (c.Session.CallerID == "") != (c.Session.CallerSecret == "") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"session.caller_id and session.caller_secret must be set together")
	}

	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("metrics.port %d is out of range", c.Metrics.Port))
	}

	return nil
}
