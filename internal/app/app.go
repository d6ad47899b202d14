package app

import (
	"context"

	"go.uber.org/fx"

	"prover/internal/app/cli"
	"prover/internal/config/logger"
)

// App represents the main application container
type App struct {
	cli      cli.CLI
	log      logger.Logger
	done     chan struct{}
	exitCode int
}

// NewApp creates a new application instance with its dependencies
func NewApp(cli cli.CLI, log logger.Logger) *App {
	return &App{
		cli:  cli,
		log:  log,
		done: make(chan struct{}),
	}
}

// Run executes the application and records its exit code
func (a *App) Run() {
	a.exitCode = a.execute()
	close(a.done)
}

// Done is closed once Run has finished
func (a *App) Done() <-chan struct{} {
	return a.done
}

// ExitCode returns the code the process should exit with; valid after Done is closed
func (a *App) ExitCode() int {
	<-a.done
	return a.exitCode
}

// execute runs the CLI and returns exit code - extracted for testing
func (a *App) execute() int {
	exitCode, err := a.cli.Execute()
	if err != nil {
		a.log.Debug().Err(err).Msg("Application error")
	}

	return exitCode
}

// Register registers the application's lifecycle hooks with fx
func Register(lifecycle fx.Lifecycle, app *App) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go app.Run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-app.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
