package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxevent"

	"prover/internal/app/errors"
	"prover/internal/config"
	"prover/internal/config/logger"
)

func Test_LoadConfig(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := loadConfig([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
		require.NoError(t, err)
		assert.Equal(t, config.DefaultConfig(), cfg)
	})

	t.Run("reads file named by flag", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("process:\n  logic: ZF\n"), 0o600))

		cfg, err := loadConfig([]string{"run", "--config=" + path})
		require.NoError(t, err)
		assert.Equal(t, "ZF", cfg.Process.Logic)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("timeouts:\n  close: 0s\n"), 0o600))

		cfg, err := loadConfig([]string{"-c", path})
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
}

func Test_CreateApp(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{name: "Creates app with info level logging", level: logger.InfoLevel},
		{name: "Creates app with debug level logging", level: logger.DebugLevel},
		{name: "Creates app with error level logging", level: logger.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Logging.Level = tt.level

			app := createApp(cfg)
			assert.NotNil(t, app)
			assert.NoError(t, app.Err())
		})
	}
}

func Test_CreateFxLogger(t *testing.T) {
	tests := []struct {
		name           string
		level          string
		expectedType   interface{}
		expectedLogger interface{}
	}{
		{name: "Debug level returns console logger", level: logger.DebugLevel, expectedType: &fxevent.ConsoleLogger{}},
		{name: "Info level returns nop logger", level: logger.InfoLevel, expectedLogger: fxevent.NopLogger},
		{name: "Warn level returns nop logger", level: logger.WarnLevel, expectedLogger: fxevent.NopLogger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Logging.Level = tt.level

			result := createFxLogger(cfg)()
			assert.NotNil(t, result)

			if tt.expectedType != nil {
				assert.IsType(t, tt.expectedType, result)
			}

			if tt.expectedLogger != nil {
				assert.Equal(t, tt.expectedLogger, result)
			}
		})
	}
}
