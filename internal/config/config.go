package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"prover/internal/app/errors"
)

// Config represents the application configuration
type Config struct {
	Process  Process  `yaml:"process" mapstructure:"process"`
	Timeouts Timeouts `yaml:"timeouts" mapstructure:"timeouts"`
	Logging  struct {
		Level  string `yaml:"level" mapstructure:"level"`
		Format string `yaml:"format" mapstructure:"format"`
	} `yaml:"logging" mapstructure:"logging"`
	Version int `yaml:"version" mapstructure:"version"`
}

// Process describes how the prover child process is launched
type Process struct {
	Executable string   `yaml:"executable" mapstructure:"executable"`
	Args       []string `yaml:"args" mapstructure:"args"`
	Logic      string   `yaml:"logic" mapstructure:"logic"`
	Dir        string   `yaml:"dir" mapstructure:"dir"`
	EnvFile    string   `yaml:"env_file" mapstructure:"env_file"`
}

// Timeouts bounds the blocking operations that the child can stall
type Timeouts struct {
	Close    time.Duration `yaml:"close" mapstructure:"close"`
	Signal   time.Duration `yaml:"signal" mapstructure:"signal"`
	Shutdown time.Duration `yaml:"shutdown" mapstructure:"shutdown"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{
		Process: Process{
			Executable: DefaultExecutable,
			Args:       []string{"-W"},
			Logic:      DefaultLogic,
		},
		Timeouts: Timeouts{
			Close:    DefaultCloseTimeout,
			Signal:   DefaultSignalTimeout,
			Shutdown: DefaultShutdownTimeout,
		},
		Version: 1,
	}

	cfg.Logging.Level = DefaultLogLevel
	cfg.Logging.Format = DefaultLogFormat

	return cfg
}

// Load reads the configuration file at path, falling back to defaults when it does not exist
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToReadConfig, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToReadConfig, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToParseConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	return cfg, nil
}

// CommandLine builds the argument vector used to spawn the prover for the given logic
func (c *Config) CommandLine(logic string) []string {
	if logic == "" {
		logic = c.Process.Logic
	}

	cmdline := make([]string, 0, len(c.Process.Args)+2)
	cmdline = append(cmdline, c.Process.Executable)
	cmdline = append(cmdline, c.Process.Args...)

	if logic != "" {
		cmdline = append(cmdline, logic)
	}

	return cmdline
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Process.Executable == "" {
		return errors.ErrExecutableRequired
	}

	timeouts := map[string]time.Duration{
		"close":    c.Timeouts.Close,
		"signal":   c.Timeouts.Signal,
		"shutdown": c.Timeouts.Shutdown,
	}

	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%w: %s", errors.ErrInvalidTimeout, name)
		}
	}

	return nil
}

// templateDoc mirrors Config with human-readable durations
type templateDoc struct {
	Version  int     `yaml:"version"`
	Process  Process `yaml:"process"`
	Timeouts struct {
		Close    string `yaml:"close"`
		Signal   string `yaml:"signal"`
		Shutdown string `yaml:"shutdown"`
	} `yaml:"timeouts"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Template renders the configuration as a prover.yaml document
func (c *Config) Template() ([]byte, error) {
	doc := templateDoc{
		Version: c.Version,
		Process: c.Process,
	}

	doc.Timeouts.Close = c.Timeouts.Close.String()
	doc.Timeouts.Signal = c.Timeouts.Signal.String()
	doc.Timeouts.Shutdown = c.Timeouts.Shutdown.String()
	doc.Logging.Level = c.Logging.Level
	doc.Logging.Format = c.Logging.Format

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return nil, err
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
