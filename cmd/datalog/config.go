package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wbrown/bottomup-datalog/datalog/executor"
)

// defaultConfigFile is read from the working directory when --config is not given
const defaultConfigFile = "datalog.yaml"

// Config holds every setting the CLI reads from datalog.yaml
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// EngineConfig mirrors executor.Options in text form
type EngineConfig struct {
	Arity     string `yaml:"arity"`  // strict, prefix
	Unsafe    string `yaml:"unsafe"` // reject, allow
	MaxPasses int    `yaml:"max_passes"`
	Workers   int    `yaml:"workers"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// OutputConfig controls what gets printed besides answers
type OutputConfig struct {
	Color   string `yaml:"color"` // auto, always, never
	Trace   bool   `yaml:"trace"`
	Metrics bool   `yaml:"metrics"`
}

// DefaultConfig returns the settings used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Arity:  executor.ArityStrict.String(),
			Unsafe: executor.UnsafeReject.String(),
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error
// unless required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every enumerated setting
func (c *Config) Validate() error {
	if _, err := c.EngineOptions(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Output.Color) {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q (use auto, always or never)", c.Output.Color)
	}
	return nil
}

// EngineOptions converts the engine section into executor options
func (c *Config) EngineOptions() (executor.Options, error) {
	opts := executor.DefaultOptions()

	arity, err := executor.ParseArityMode(c.Engine.Arity)
	if err != nil {
		return opts, err
	}
	unsafe, err := executor.ParseUnsafePolicy(c.Engine.Unsafe)
	if err != nil {
		return opts, err
	}
	if c.Engine.MaxPasses < 0 {
		return opts, fmt.Errorf("max_passes must not be negative, got %d", c.Engine.MaxPasses)
	}

	if c.Engine.Workers < 0 {
		return opts, fmt.Errorf("workers must not be negative, got %d", c.Engine.Workers)
	}

	opts.ArityMode = arity
	opts.UnsafePolicy = unsafe
	opts.MaxPasses = c.Engine.MaxPasses
	opts.Workers = c.Engine.Workers
	return opts, nil
}

// LogLevel parses the logging level, defaulting to warn
func (c *Config) LogLevel() (zapcore.Level, error) {
	if c.Logging.Level == "" {
		return zapcore.WarnLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return zapcore.WarnLevel, fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return level, nil
}
