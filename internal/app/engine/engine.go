package engine

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"prover/internal/app/dispatcher"
	"prover/internal/app/encoder"
	"prover/internal/app/results"
	"prover/internal/app/stream"
	"prover/internal/app/supervisor"
	"prover/internal/config"
	"prover/internal/config/logger"
)

// Engine is a running prover session: text goes in, classified results come out
//
//go:generate mockgen -source=engine.go -destination=engine_mock.go -package=engine
type Engine interface {
	ID() string
	Submit(text string) error
	RunCommand(text string) error
	RunCode(code string) error
	RequestClose()
	Interrupt(ctx context.Context) error
	Results() *results.Queue
	Take(ctx context.Context) (results.Result, error)
	PID() (string, bool)
	Stats(ctx context.Context) (supervisor.Stats, error)
	Shutdown(ctx context.Context) error
	Done() <-chan struct{}
}

// Factory starts prover sessions from the loaded configuration
type Factory interface {
	Start(ctx context.Context, logic string) (Engine, error)
}

type engine struct {
	id              string
	sup             *supervisor.Supervisor
	dispatcher      *dispatcher.Dispatcher
	results         *results.Queue
	shutdownTimeout time.Duration
	log             logger.Logger
	done            chan struct{}
}

// New spawns the prover for logic and starts the dispatcher and both stream readers.
// Cancelling ctx aborts a dispatcher waiting for input.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, logic string) (Engine, error) {
	id := ulid.Make().String()
	base := log.WithSession(id)
	res := results.NewQueue()

	sup, err := supervisor.Spawn(supervisor.Params{
		Args:            cfg.CommandLine(logic),
		Dir:             cfg.Process.Dir,
		EnvFile:         cfg.Process.EnvFile,
		SignalTimeout:   cfg.Timeouts.Signal,
		ShutdownTimeout: cfg.Timeouts.Shutdown,
	}, res, base)
	if err != nil {
		return nil, err
	}

	shared := sup.State()

	e := &engine{
		id:              id,
		sup:             sup,
		dispatcher:      dispatcher.New(sup.Stdin(), res, shared, cfg.Timeouts.Close, base),
		results:         res,
		shutdownTimeout: cfg.Timeouts.Shutdown,
		log:             base.WithComponent("ENGINE"),
		done:            make(chan struct{}),
	}

	demux := stream.NewDemux(sup.Stdout(), res, shared, base)
	errReader := stream.NewErrorReader(sup.Stderr(), res, shared, base)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e.dispatcher.Run(gctx)
		return nil
	})

	g.Go(func() error {
		demux.Run()
		return nil
	})

	g.Go(func() error {
		errReader.Run()
		return nil
	})

	g.Go(func() error {
		select {
		case <-sup.Exited():
			e.dispatcher.Stop()
		case <-e.dispatcher.Done():
		}

		return nil
	})

	go func() {
		_ = g.Wait()

		res.Close()
		close(e.done)
		e.log.Info().Msg("Session finished")
	}()

	e.log.Info().Strs("cmdline", cfg.CommandLine(logic)).Msg("Session started")

	return e, nil
}

// ID returns the session id used to correlate log lines
func (e *engine) ID() string {
	return e.id
}

// Submit queues raw text for the prover's stdin
func (e *engine) Submit(text string) error {
	return e.dispatcher.Submit(text)
}

// RunCommand submits text as a framed prover command
func (e *engine) RunCommand(text string) error {
	return e.Submit(encoder.Command(text))
}

// RunCode submits code as a framed ML evaluation
func (e *engine) RunCode(code string) error {
	return e.Submit(encoder.ML(code))
}

// RequestClose ends the prover's input once everything already submitted is written
func (e *engine) RequestClose() {
	e.dispatcher.RequestClose()
}

// Interrupt asks the prover to abandon its current work
func (e *engine) Interrupt(ctx context.Context) error {
	return e.sup.Interrupt(ctx)
}

// Results exposes the result queue
func (e *engine) Results() *results.Queue {
	return e.results
}

// Take blocks for the next result
func (e *engine) Take(ctx context.Context) (results.Result, error) {
	return e.results.Take(ctx)
}

// PID returns the process id announced by the prover
func (e *engine) PID() (string, bool) {
	return e.sup.State().PID()
}

// Stats samples the prover's resource usage
func (e *engine) Stats(ctx context.Context) (supervisor.Stats, error) {
	return e.sup.Stats(ctx)
}

// Done is closed once every loop has stopped and the result queue is closed
func (e *engine) Done() <-chan struct{} {
	return e.done
}

// Shutdown closes the prover's input, gives it the shutdown timeout to exit on its own and
// then terminates it
func (e *engine) Shutdown(ctx context.Context) error {
	e.log.Info().Msg("Shutting down session")
	e.RequestClose()

	select {
	case <-e.dispatcher.Done():
	case <-e.done:
		return nil
	case <-ctx.Done():
		e.log.Warn().Msg("Shutdown cancelled before input was closed")
	}

	select {
	case <-e.done:
		return nil
	case <-time.After(e.shutdownTimeout):
		e.log.Warn().Msg("Prover did not exit after input was closed")
	case <-ctx.Done():
	}

	err := e.sup.Terminate()

	select {
	case <-e.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
