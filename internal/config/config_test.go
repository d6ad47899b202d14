package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"prover/internal/app/errors"
)

func Test_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultExecutable, cfg.Process.Executable)
	assert.Equal(t, []string{"-W"}, cfg.Process.Args)
	assert.Equal(t, DefaultLogic, cfg.Process.Logic)
	assert.Equal(t, DefaultCloseTimeout, cfg.Timeouts.Close)
	assert.Equal(t, DefaultSignalTimeout, cfg.Timeouts.Signal)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Timeouts.Shutdown)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, 1, cfg.Version)
	assert.NoError(t, cfg.Validate())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func Test_Load(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		error   error
		compare func(t *testing.T, cfg *Config)
	}{
		{
			name: "missing file uses defaults",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.yaml")
			},
			compare: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "valid config file",
			path: func(t *testing.T) string {
				return writeConfig(t, `version: 1
process:
  executable: /opt/isabelle/bin/isabelle
  logic: HOL-Library
  dir: /tmp
  env_file: .env.prover
timeouts:
  close: 2s
  signal: 1s
  shutdown: 3s
logging:
  level: debug
  format: json
`)
			},
			compare: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/opt/isabelle/bin/isabelle", cfg.Process.Executable)
				assert.Equal(t, "HOL-Library", cfg.Process.Logic)
				assert.Equal(t, "/tmp", cfg.Process.Dir)
				assert.Equal(t, ".env.prover", cfg.Process.EnvFile)
				assert.Equal(t, 2*time.Second, cfg.Timeouts.Close)
				assert.Equal(t, time.Second, cfg.Timeouts.Signal)
				assert.Equal(t, 3*time.Second, cfg.Timeouts.Shutdown)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "invalid yaml",
			path: func(t *testing.T) string {
				return writeConfig(t, "process: [unclosed\n")
			},
			error: errors.ErrFailedToReadConfig,
		},
		{
			name: "wrong type for section",
			path: func(t *testing.T) string {
				return writeConfig(t, "process: \"not a map\"\n")
			},
			error: errors.ErrFailedToParseConfig,
		},
		{
			name: "empty executable",
			path: func(t *testing.T) string {
				return writeConfig(t, "process:\n  executable: \"\"\n")
			},
			error: errors.ErrInvalidConfig,
		},
		{
			name: "negative timeout",
			path: func(t *testing.T) string {
				return writeConfig(t, "timeouts:\n  close: -1s\n")
			},
			error: errors.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.path(t))

			if tt.error != nil {
				assert.ErrorIs(t, err, tt.error)
				assert.Nil(t, cfg)

				return
			}

			require.NoError(t, err)
			tt.compare(t, cfg)
		})
	}
}

func Test_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *Config)
		error  error
	}{
		{name: "defaults", modify: func(cfg *Config) {}},
		{name: "no executable", modify: func(cfg *Config) { cfg.Process.Executable = "" }, error: errors.ErrExecutableRequired},
		{name: "zero close timeout", modify: func(cfg *Config) { cfg.Timeouts.Close = 0 }, error: errors.ErrInvalidTimeout},
		{name: "zero signal timeout", modify: func(cfg *Config) { cfg.Timeouts.Signal = 0 }, error: errors.ErrInvalidTimeout},
		{name: "zero shutdown timeout", modify: func(cfg *Config) { cfg.Timeouts.Shutdown = 0 }, error: errors.ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.error == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.error)
			}
		})
	}
}

func Test_CommandLine(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []string{"isabelle", "-W", "HOL"}, cfg.CommandLine(""))
	assert.Equal(t, []string{"isabelle", "-W", "ZF"}, cfg.CommandLine("ZF"))

	cfg.Process.Args = nil
	cfg.Process.Logic = ""
	assert.Equal(t, []string{"isabelle"}, cfg.CommandLine(""))
}

func Test_Template(t *testing.T) {
	cfg := DefaultConfig()

	data, err := cfg.Template()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &doc))

	process, ok := doc["process"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, DefaultExecutable, process["executable"])

	timeouts, ok := doc["timeouts"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "5s", timeouts["close"])

	path := writeConfig(t, string(data))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
