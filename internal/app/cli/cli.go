//go:generate mockgen -source=cli.go -destination=cli_mock.go -package=cli
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"prover/internal/app/console"
	"prover/internal/app/engine"
	"prover/internal/app/errors"
	"prover/internal/config"
	"prover/internal/config/logger"
)

// CLI defines the interface for cli operations
type CLI interface {
	Execute() (int, error)
}

// cli represents the command-line interface for the application
type cli struct {
	args    []string
	cfg     *config.Config
	factory engine.Factory
	console console.Console
	in      io.Reader
	out     io.Writer
	signals chan os.Signal
	log     logger.Logger
}

// NewCLI creates a new cli instance reading the process arguments and standard input
func NewCLI(
	cfg *config.Config,
	factory engine.Factory,
	console console.Console,
	log logger.Logger,
) CLI {
	return &cli{
		args:    os.Args[1:],
		cfg:     cfg,
		factory: factory,
		console: console,
		in:      os.Stdin,
		out:     os.Stdout,
		log:     log.WithComponent("CLI"),
	}
}

// Execute parses the arguments, runs the selected command and returns the process exit code
func (c *cli) Execute() (int, error) {
	opts, err := Parse(c.args)
	if err != nil {
		c.log.Debug().Err(err).Msg("Failed to parse arguments")
		fmt.Fprintln(c.out, RenderError(err))

		return 1, err
	}

	switch opts.Type {
	case CommandInit:
		return c.handleInit(opts)
	case CommandVersion:
		return c.handleVersion()
	case CommandHelp:
		return c.handleHelp()
	case CommandRun:
		return c.handleRun(opts)
	default:
		return c.handleUnknown()
	}
}

// handleRun starts a session and attaches the console until the prover exits
func (c *cli) handleRun(opts *Options) (int, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := c.factory.Start(ctx, opts.Logic)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to start prover")
		fmt.Fprintln(c.out, RenderError(err))

		return 1, err
	}

	stop := c.watchSignals(ctx, eng, cancel)
	defer stop()

	code, err := c.console.Attach(ctx, eng, c.in, opts.Mode)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*c.cfg.Timeouts.Shutdown)
	defer shutdownCancel()

	if shutdownErr := eng.Shutdown(shutdownCtx); shutdownErr != nil {
		c.log.Warn().Err(shutdownErr).Msg("Failed to shut down session cleanly")
	}

	if err != nil {
		c.log.Error().Err(err).Msg("Session aborted")
		return 1, err
	}

	if code < 0 {
		return 1, nil
	}

	return code, nil
}

// watchSignals interrupts the prover on SIGINT and ends the session on SIGTERM
func (c *cli) watchSignals(ctx context.Context, eng engine.Engine, cancel context.CancelFunc) func() {
	sigChan := c.signals
	if sigChan == nil {
		sigChan = make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	}

	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-sigChan:
				if sig == syscall.SIGTERM {
					c.log.Info().Msg("Received SIGTERM, ending session")
					cancel()

					return
				}

				if err := eng.Interrupt(ctx); err != nil {
					c.log.Warn().Err(err).Msg("Failed to interrupt prover")
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

// handleInit writes the configuration template
func (c *cli) handleInit(opts *Options) (int, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.FileName
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		err = fmt.Errorf("%w: %s", errors.ErrFileExists, path)
		fmt.Fprintln(c.out, RenderError(err))

		return 1, err
	}

	data, err := config.DefaultConfig().Template()
	if err != nil {
		return 1, err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		c.log.Error().Err(err).Msgf("Failed to write '%s'", path)
		fmt.Fprintln(c.out, RenderError(err))

		return 1, err
	}

	c.log.Debug().Msgf("Wrote configuration template to '%s'", path)
	fmt.Fprintln(c.out, RenderCreated(path))

	return 0, nil
}

// handleHelp displays help information
func (c *cli) handleHelp() (int, error) {
	c.log.Debug().Msg("Displaying help information")
	fmt.Fprint(c.out, RenderHelp())

	return 0, nil
}

// handleVersion displays version information
func (c *cli) handleVersion() (int, error) {
	c.log.Debug().Msg("Displaying version information")
	fmt.Fprintln(c.out, RenderTitle())

	return 0, nil
}

// handleUnknown handles unknown commands
func (c *cli) handleUnknown() (int, error) {
	c.log.Debug().Msg("Unknown command")
	fmt.Fprintln(c.out, RenderError(errors.ErrUnknownCommand))

	return 1, errors.ErrUnknownCommand
}
