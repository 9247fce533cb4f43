// Package config provides configuration loading and management for the registrar.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/dataset-registrar/internal/events"
	"github.com/stacklok/dataset-registrar/internal/telemetry"
)

const (
	// EnvPrefix is the prefix of environment variables overriding configuration values
	EnvPrefix = "DATASET_REGISTRAR"

	// DefaultTotalBudget is the default wall-clock budget of a registration run
	DefaultTotalBudget = 5 * time.Minute

	// DefaultBackoffInterval is the default pause between two registration passes
	DefaultBackoffInterval = 500 * time.Millisecond

	// DefaultStatusDir is where run status files are kept when status.dir is unset
	DefaultStatusDir = "./data/status"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

type loaderConfig struct {
	path   string
	lookup func(string) (string, bool)
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// WithEnvLookup replaces the environment used for overrides
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(cfg *loaderConfig) error {
		cfg.lookup = lookup
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Registration    RegistrationConfig     `yaml:"registration"`
	Definitions     DefinitionsConfig      `yaml:"definitions"`
	ServerTemplates []ServerTemplateConfig `yaml:"serverTemplates"`
	Notifications   *NotificationsConfig   `yaml:"notifications,omitempty"`
	Status          StatusConfig           `yaml:"status,omitempty"`
	Telemetry       *telemetry.Config      `yaml:"telemetry,omitempty"`
}

// RegistrationConfig tunes registration runs
type RegistrationConfig struct {
	// TotalBudget is the wall-clock ceiling of one run, e.g. "5m"
	TotalBudget time.Duration `yaml:"totalBudget,omitempty"`

	// BackoffInterval is the fixed pause between two passes, e.g. "500ms"
	BackoffInterval time.Duration `yaml:"backoffInterval,omitempty"`

	// MaxConcurrentRuns bounds the runs in progress; 0 means unbounded
	MaxConcurrentRuns int `yaml:"maxConcurrentRuns,omitempty"`
}

// DefinitionsConfig locates the stored data set definitions
type DefinitionsConfig struct {
	File *FileConfig `yaml:"file,omitempty"`
}

// FileConfig defines local file source configuration
type FileConfig struct {
	// Path is the path to the definitions YAML file.
	// Can be absolute or relative to the working directory.
	Path string `yaml:"path"`
}

// ServerTemplateConfig describes one server template and the administrative endpoints of its instances
type ServerTemplateConfig struct {
	ID        string   `yaml:"id"`
	Endpoints []string `yaml:"endpoints"`

	// RequestTimeout bounds every request to an endpoint of the template
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty"`

	// ProbePath is requested when re-checking a banned endpoint
	ProbePath string `yaml:"probePath,omitempty"`
}

// NotificationsConfig defines where completion events are forwarded
type NotificationsConfig struct {
	Webhooks []events.WebhookConfig `yaml:"webhooks,omitempty"`
}

// StatusConfig defines where run status is persisted
type StatusConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// LoadConfig loads, overrides from the environment, defaults and validates configuration
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{lookup: os.LookupEnv}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.applyEnvOverrides(loaderCfg.lookup); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyEnvOverrides reads DATASET_REGISTRAR_* variables through viper
func (c *Config) applyEnvOverrides(lookup func(string) (string, bool)) error {
	v := viper.New()
	for _, key := range []string{
		"registration.total_budget",
		"registration.backoff_interval",
		"registration.max_concurrent_runs",
		"definitions.file.path",
		"status.dir",
	} {
		envName := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if value, ok := lookup(envName); ok && value != "" {
			v.Set(key, value)
		}
	}

	var errs []error
	if v.IsSet("registration.total_budget") {
		d, err := time.ParseDuration(v.GetString("registration.total_budget"))
		if err != nil {
			errs = append(errs, fmt.Errorf("registration.totalBudget: %w", err))
		}
		c.Registration.TotalBudget = d
	}
	if v.IsSet("registration.backoff_interval") {
		d, err := time.ParseDuration(v.GetString("registration.backoff_interval"))
		if err != nil {
			errs = append(errs, fmt.Errorf("registration.backoffInterval: %w", err))
		}
		c.Registration.BackoffInterval = d
	}
	if v.IsSet("registration.max_concurrent_runs") {
		c.Registration.MaxConcurrentRuns = v.GetInt("registration.max_concurrent_runs")
	}
	if v.IsSet("definitions.file.path") {
		c.Definitions.File = &FileConfig{Path: v.GetString("definitions.file.path")}
	}
	if v.IsSet("status.dir") {
		c.Status.Dir = v.GetString("status.dir")
	}
	return errors.Join(errs...)
}

func (c *Config) applyDefaults() {
	if c.Registration.TotalBudget == 0 {
		c.Registration.TotalBudget = DefaultTotalBudget
	}
	if c.Registration.BackoffInterval == 0 {
		c.Registration.BackoffInterval = DefaultBackoffInterval
	}
	if c.Status.Dir == "" {
		c.Status.Dir = DefaultStatusDir
	}
}

// GetWebhooks returns the configured webhooks, if any
func (c *Config) GetWebhooks() []events.WebhookConfig {
	if c.Notifications == nil {
		return nil
	}
	return c.Notifications.Webhooks
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := c.Registration.validate(); err != nil {
		return fmt.Errorf("registration: %w", err)
	}

	if c.Definitions.File == nil || c.Definitions.File.Path == "" {
		return fmt.Errorf("definitions.file.path is required")
	}

	if len(c.ServerTemplates) == 0 {
		return fmt.Errorf("at least one server template must be configured")
	}
	templateIDs := make(map[string]bool)
	for i, tmpl := range c.ServerTemplates {
		if tmpl.ID == "" {
			return fmt.Errorf("serverTemplates[%d]: id is required", i)
		}
		if templateIDs[tmpl.ID] {
			return fmt.Errorf("serverTemplates[%d]: duplicate template id '%s'", i, tmpl.ID)
		}
		templateIDs[tmpl.ID] = true

		if err := tmpl.validate(); err != nil {
			return fmt.Errorf("serverTemplates[%d] (%s): %w", i, tmpl.ID, err)
		}
	}

	for i, hook := range c.GetWebhooks() {
		if err := validateHTTPURL(hook.URL); err != nil {
			return fmt.Errorf("notifications.webhooks[%d]: %w", i, err)
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

func (r *RegistrationConfig) validate() error {
	if r.TotalBudget < 0 {
		return fmt.Errorf("totalBudget must be positive, got %s", r.TotalBudget)
	}
	if r.BackoffInterval < 0 {
		return fmt.Errorf("backoffInterval must be positive, got %s", r.BackoffInterval)
	}
	if r.BackoffInterval > r.TotalBudget {
		return fmt.Errorf("backoffInterval (%s) must not exceed totalBudget (%s)", r.BackoffInterval, r.TotalBudget)
	}
	if r.MaxConcurrentRuns < 0 {
		return fmt.Errorf("maxConcurrentRuns must not be negative, got %d", r.MaxConcurrentRuns)
	}
	return nil
}

func (t *ServerTemplateConfig) validate() error {
	seen := make(map[string]bool)
	for j, raw := range t.Endpoints {
		if err := validateHTTPURL(raw); err != nil {
			return fmt.Errorf("endpoints[%d]: %w", j, err)
		}
		normalized := strings.TrimRight(raw, "/")
		if seen[normalized] {
			return fmt.Errorf("endpoints[%d]: duplicate endpoint '%s'", j, raw)
		}
		seen[normalized] = true
	}
	if t.RequestTimeout < 0 {
		return fmt.Errorf("requestTimeout must not be negative, got %s", t.RequestTimeout)
	}
	if t.ProbePath != "" && !strings.HasPrefix(t.ProbePath, "/") {
		return fmt.Errorf("probePath must start with '/', got %s", t.ProbePath)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %s: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %s must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %s has no host", raw)
	}
	return nil
}
