// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for robodash.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Workers configures the panel worker contexts.
	Workers WorkersConfig `yaml:"workers"`

	// Freshness configures the transform edge age bands.
	Freshness FreshnessConfig `yaml:"freshness"`

	// Layout configures graph placement.
	Layout LayoutConfig `yaml:"layout"`

	// Graph configures computation graph defaults.
	Graph GraphConfig `yaml:"graph"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths   *PathsConfig   `yaml:"paths,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
	Workers *WorkersConfig `yaml:"workers,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for robodash data.
	Root string `yaml:"root"`

	// Scenarios is where scenario files are looked up by bare name.
	Scenarios string `yaml:"scenarios"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is one of auto, text, json. Auto picks text on a terminal
	// and JSON otherwise.
	// Default: auto (development), json (production)
	Format string `yaml:"format"`
}

// WorkersConfig configures the panel worker contexts.
type WorkersConfig struct {
	// QueueCapacity bounds each context's inbox.
	// Default: 256
	QueueCapacity int `yaml:"queue_capacity"`

	Plot     PlotWorkerConfig     `yaml:"plot"`
	Image    ImageWorkerConfig    `yaml:"image"`
	RawTopic RawTopicWorkerConfig `yaml:"raw_topic"`
}

// PlotWorkerConfig sets plot panel defaults.
type PlotWorkerConfig struct {
	// MaxPoints bounds each series when a panel does not set one.
	// Default: 1000
	MaxPoints int `yaml:"max_points"`
}

// ImageWorkerConfig sets image panel defaults.
type ImageWorkerConfig struct {
	// ColorMap applies to single-channel images when a panel does not
	// choose one. Values: grayscale, turbo, jet.
	// Default: grayscale
	ColorMap string `yaml:"color_map"`
}

// RawTopicWorkerConfig sets raw-topic panel defaults.
type RawTopicWorkerConfig struct {
	MaxLength   int    `yaml:"max_length"`
	HistorySize int    `yaml:"history_size"`
	Highlight   bool   `yaml:"highlight"`
	Style       string `yaml:"style"`
}

// FreshnessConfig holds the freshness band upper bounds as Go duration
// strings.
type FreshnessConfig struct {
	Fresh   string `yaml:"fresh"`
	Recent  string `yaml:"recent"`
	Stale   string `yaml:"stale"`
	Animate string `yaml:"animate"`
}

// Durations parses the four thresholds.
func (f FreshnessConfig) Durations() (fresh, recent, stale, animate time.Duration, err error) {
	parse := func(name, value string) time.Duration {
		if err != nil {
			return 0
		}
		var duration time.Duration
		duration, err = time.ParseDuration(value)
		if err != nil {
			err = fmt.Errorf("freshness.%s: %w", name, err)
		}
		return duration
	}
	fresh = parse("fresh", f.Fresh)
	recent = parse("recent", f.Recent)
	stale = parse("stale", f.Stale)
	animate = parse("animate", f.Animate)
	return fresh, recent, stale, animate, err
}

// LayoutConfig configures graph placement.
type LayoutConfig struct {
	// Direction is TB, BT, LR or RL.
	// Default: TB
	Direction  string  `yaml:"direction"`
	NodeWidth  float64 `yaml:"node_width"`
	NodeHeight float64 `yaml:"node_height"`
	NodeSep    float64 `yaml:"node_sep"`
	RankSep    float64 `yaml:"rank_sep"`

	// CacheSize bounds the layout cache. Zero disables caching.
	// Default: 32
	CacheSize int `yaml:"cache_size"`
}

// GraphConfig configures computation graph defaults.
type GraphConfig struct {
	FilterSystemNodes bool `yaml:"filter_system_nodes"`
	ShowTopics        bool `yaml:"show_topics"`
	FuzzySearch       bool `yaml:"fuzzy_search"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "robodash")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:      defaultRoot,
			Scenarios: filepath.Join(defaultRoot, "scenarios"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Workers: WorkersConfig{
			QueueCapacity: 256,
			Plot:          PlotWorkerConfig{MaxPoints: 1000},
			Image:         ImageWorkerConfig{ColorMap: "grayscale"},
			RawTopic: RawTopicWorkerConfig{
				MaxLength:   5000,
				HistorySize: 50,
				Style:       "monokai",
			},
		},
		Freshness: FreshnessConfig{
			Fresh:   "1s",
			Recent:  "5s",
			Stale:   "10s",
			Animate: "500ms",
		},
		Layout: LayoutConfig{
			Direction:  "TB",
			NodeWidth:  172,
			NodeHeight: 36,
			NodeSep:    50,
			RankSep:    80,
			CacheSize:  32,
		},
		Graph: GraphConfig{
			FilterSystemNodes: true,
			ShowTopics:        true,
		},
	}
}

// Load loads configuration from the ROBODASH_CONFIG environment
// variable. There are no fallbacks: if ROBODASH_CONFIG is not set, this
// fails.
func Load() (*Config, error) {
	configPath := os.Getenv("ROBODASH_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("ROBODASH_CONFIG environment variable not set; " +
			"set it to the path of your robodash.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// Environment variables do not override config values. The only
// expansion performed is ${VAR} and ${VAR:-default} in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: machine-readable logs.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Format: "json"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Scenarios != "" {
			c.Paths.Scenarios = overrides.Paths.Scenarios
		}
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.Format != "" {
			c.Logging.Format = overrides.Logging.Format
		}
	}

	if overrides.Workers != nil {
		if overrides.Workers.QueueCapacity != 0 {
			c.Workers.QueueCapacity = overrides.Workers.QueueCapacity
		}
		if overrides.Workers.Plot.MaxPoints != 0 {
			c.Workers.Plot.MaxPoints = overrides.Workers.Plot.MaxPoints
		}
		if overrides.Workers.Image.ColorMap != "" {
			c.Workers.Image.ColorMap = overrides.Workers.Image.ColorMap
		}
		if overrides.Workers.RawTopic.MaxLength != 0 {
			c.Workers.RawTopic.MaxLength = overrides.Workers.RawTopic.MaxLength
		}
		if overrides.Workers.RawTopic.HistorySize != 0 {
			c.Workers.RawTopic.HistorySize = overrides.Workers.RawTopic.HistorySize
		}
		if overrides.Workers.RawTopic.Style != "" {
			c.Workers.RawTopic.Style = overrides.Workers.RawTopic.Style
		}
		// Highlight is a bool, so we always apply it from overrides.
		c.Workers.RawTopic.Highlight = overrides.Workers.RawTopic.Highlight
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"ROBODASH_ROOT": c.Paths.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["ROBODASH_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Scenarios = expandVars(c.Paths.Scenarios, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "text", "json"}
	colorMaps  = []string{"grayscale", "gray", "grey", "turbo", "jet", "rainbow"}
	directions = []string{"TB", "BT", "LR", "RL"}
)

// maxPlotPoints mirrors the per-series limit plot panels enforce.
const maxPlotPoints = 1_000_000

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", logFormats))
	}

	if c.Workers.QueueCapacity < 1 {
		errs = append(errs, fmt.Errorf("workers.queue_capacity must be positive, got %d", c.Workers.QueueCapacity))
	}
	if c.Workers.Plot.MaxPoints < 1 || c.Workers.Plot.MaxPoints > maxPlotPoints {
		errs = append(errs, fmt.Errorf("workers.plot.max_points must be between 1 and %d, got %d", maxPlotPoints, c.Workers.Plot.MaxPoints))
	}
	if !slices.Contains(colorMaps, strings.ToLower(c.Workers.Image.ColorMap)) {
		errs = append(errs, fmt.Errorf("workers.image.color_map must be one of: %v", colorMaps))
	}
	if c.Workers.RawTopic.MaxLength < 1 {
		errs = append(errs, fmt.Errorf("workers.raw_topic.max_length must be positive, got %d", c.Workers.RawTopic.MaxLength))
	}
	if c.Workers.RawTopic.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("workers.raw_topic.history_size must be positive, got %d", c.Workers.RawTopic.HistorySize))
	}

	fresh, recent, stale, animate, err := c.Freshness.Durations()
	if err != nil {
		errs = append(errs, err)
	} else if fresh <= 0 || fresh >= recent || recent >= stale || animate < 0 {
		errs = append(errs, fmt.Errorf("freshness thresholds must satisfy 0 < fresh < recent < stale, got %s/%s/%s",
			c.Freshness.Fresh, c.Freshness.Recent, c.Freshness.Stale))
	}

	if !slices.Contains(directions, strings.ToUpper(c.Layout.Direction)) {
		errs = append(errs, fmt.Errorf("layout.direction must be one of: %v", directions))
	}
	for name, value := range map[string]float64{
		"node_width":  c.Layout.NodeWidth,
		"node_height": c.Layout.NodeHeight,
		"node_sep":    c.Layout.NodeSep,
		"rank_sep":    c.Layout.RankSep,
	} {
		if value < 0 {
			errs = append(errs, fmt.Errorf("layout.%s must not be negative, got %v", name, value))
		}
	}
	if c.Layout.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("layout.cache_size must not be negative, got %d", c.Layout.CacheSize))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, c.Paths.Scenarios} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}

// ScenarioPath resolves a scenario argument. Paths containing a
// separator or naming an existing file are used as given; bare names
// are looked up in Paths.Scenarios, with ".jsonc" appended when the
// name has no extension.
func (c *Config) ScenarioPath(name string) string {
	if strings.ContainsRune(name, filepath.Separator) || c.Paths.Scenarios == "" {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	if filepath.Ext(name) == "" {
		name += ".jsonc"
	}
	return filepath.Join(c.Paths.Scenarios, name)
}
