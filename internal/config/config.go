// Package config loads the sitewright.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	swerrors "github.com/sitewright/sitewright/internal/errors"
)

// TransformKind selects how a pipeline rule processes matched files.
type TransformKind string

const (
	// TransformCopy streams bytes unchanged to the destination.
	TransformCopy TransformKind = "copy"
	// TransformMarkdown renders Markdown sources to HTML.
	TransformMarkdown TransformKind = "markdown"
)

// Config represents the project configuration
type Config struct {
	Source   string         `yaml:"source"`
	Dest     string         `yaml:"dest"`
	Server   ServerConfig   `yaml:"server"`
	Rules    []Rule         `yaml:"rules"`
	Bindings []Binding      `yaml:"watch,omitempty"`
	Schedule ScheduleConfig `yaml:"schedule,omitempty"`
	Events   EventsConfig   `yaml:"events,omitempty"`
	History  HistoryConfig  `yaml:"history,omitempty"`
}

// Rule maps a source glob to a transformation.
type Rule struct {
	Glob      string        `yaml:"glob"`
	Transform TransformKind `yaml:"transform"`
}

// Binding associates a source glob with the task to run when a matching file changes.
type Binding struct {
	Glob string `yaml:"glob"`
	Task string `yaml:"task"`
}

// ServerConfig represents the preview server configuration
type ServerConfig struct {
	Port       int  `yaml:"port"`
	LiveReload bool `yaml:"live_reload"`
	Metrics    bool `yaml:"metrics,omitempty"`
}

// Duration wraps time.Duration with YAML support for "30s"-style values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// ScheduleConfig enables periodic full rebuilds while watching.
type ScheduleConfig struct {
	RebuildInterval Duration `yaml:"rebuild_interval,omitempty"`
}

// EventsConfig enables publishing build events to NATS.
type EventsConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// HistoryConfig enables the SQLite run history store.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFiles(); err != nil {
		// Don't fail if .env doesn't exist, just note it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, swerrors.ConfigError("configuration file not found").WithContext("path", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, swerrors.Wrap(err, swerrors.CategoryConfig, swerrors.SeverityFatal, "read config file")
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, swerrors.Wrap(err, swerrors.CategoryConfig, swerrors.SeverityFatal, "unmarshal config")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads the config file when it exists and falls back to defaults otherwise.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(configPath)
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = "./src"
	}
	if c.Dest == "" {
		c.Dest = "./dist"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
		c.Server.LiveReload = true
	}
	if len(c.Rules) == 0 {
		c.Rules = []Rule{
			{Glob: "**/*.md", Transform: TransformMarkdown},
			{Glob: "**/*.html", Transform: TransformCopy},
			{Glob: "assets/**", Transform: TransformCopy},
		}
	}
	if len(c.Bindings) == 0 {
		c.Bindings = []Binding{
			{Glob: "**/*.html", Task: "copyhtml"},
			{Glob: "**/*.md", Task: "transform"},
			{Glob: "assets/**", Task: "copyhtml"},
		}
	}
	if c.Events.URL != "" && c.Events.Subject == "" {
		c.Events.Subject = "sitewright.builds"
	}
}

// Validate rejects configurations that cannot drive a build.
func (c *Config) Validate() error {
	for i, r := range c.Rules {
		if r.Glob == "" {
			return swerrors.ConfigError("pipeline rule glob must not be empty").WithContext("rule", i)
		}
		switch r.Transform {
		case TransformCopy, TransformMarkdown:
		default:
			return swerrors.ConfigError(fmt.Sprintf("unknown transform kind %q", r.Transform)).WithContext("rule", i)
		}
	}
	for i, b := range c.Bindings {
		if b.Glob == "" {
			return swerrors.ConfigError("watch binding glob must not be empty").WithContext("binding", i)
		}
		if b.Task == "" {
			return swerrors.ConfigError("watch binding task must not be empty").WithContext("binding", i)
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return swerrors.ConfigError(fmt.Sprintf("invalid server port %d", c.Server.Port))
	}
	if c.Schedule.RebuildInterval < 0 {
		return swerrors.ConfigError("rebuild interval must not be negative")
	}
	return nil
}

// Init writes an example configuration to the given path.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return swerrors.ConfigError("configuration file already exists (use --force to overwrite)").WithContext("path", configPath)
	}

	example := Default()
	data, err := yaml.Marshal(example)
	if err != nil {
		return swerrors.Wrap(err, swerrors.CategoryConfig, swerrors.SeverityFatal, "marshal example config")
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityFatal, "write example config")
	}
	return nil
}
