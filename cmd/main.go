package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"prover/internal/app"
	"prover/internal/app/cli"
	"prover/internal/config"
	"prover/internal/config/logger"
)

// main is the entry point for the application
func main() {
	os.Exit(runApp(os.Args[1:]))
}

// runApp loads configuration, runs the fx application and returns the exit code
func runApp(args []string) int {
	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError(err))
		return 1
	}

	var application *app.App

	fxApp := createApp(cfg, fx.Populate(&application))

	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()

	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError(err))
		return 1
	}

	<-application.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer stopCancel()

	if err := fxApp.Stop(stopCtx); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError(err))
	}

	return application.ExitCode()
}

// loadConfig reads the configuration file named by --config, or prover.yaml
func loadConfig(args []string) (*config.Config, error) {
	return config.Load(cli.ConfigPath(args))
}

// createApp creates the FX application with the given config
func createApp(cfg *config.Config, opts ...fx.Option) *fx.App {
	options := []fx.Option{
		fx.WithLogger(createFxLogger(cfg)),
		fx.Supply(cfg),
		logger.Module,
		app.Module,
	}

	return fx.New(append(options, opts...)...)
}

// createFxLogger returns an FX logger based on the config
func createFxLogger(cfg *config.Config) func() fxevent.Logger {
	return func() fxevent.Logger {
		if cfg.Logging.Level == logger.DebugLevel {
			return &fxevent.ConsoleLogger{W: os.Stderr}
		}

		return fxevent.NopLogger
	}
}
