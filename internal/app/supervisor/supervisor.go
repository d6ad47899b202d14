package supervisor

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"

	"prover/internal/app/errors"
	"prover/internal/app/results"
	"prover/internal/app/state"
	"prover/internal/config/logger"
)

// Params describes the process to spawn
type Params struct {
	Args            []string
	Dir             string
	EnvFile         string
	SignalTimeout   time.Duration
	ShutdownTimeout time.Duration
}

// Supervisor owns the prover child process and its identity
type Supervisor struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  io.ReadCloser
	stderr  io.ReadCloser
	state   *state.Shared
	results *results.Queue
	params  Params
	log     logger.Logger

	terminateOnce sync.Once
	terminateErr  error
	exited        chan struct{}
	exitCode      int
}

// Spawn starts the child process with its three standard streams piped
func Spawn(p Params, res *results.Queue, log logger.Logger) (*Supervisor, error) {
	log = log.WithComponent("SUPERVISOR")

	if len(p.Args) == 0 || p.Args[0] == "" {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToStartProcess, errors.ErrExecutableRequired)
	}

	env, err := buildEnv(p.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToStartProcess, err)
	}

	//nolint:gosec // G204: the prover command line comes from configuration
	cmd := exec.Command(p.Args[0], p.Args[1:]...)
	cmd.Dir = p.Dir
	cmd.Env = env
	configure(cmd)

	s := &Supervisor{
		cmd:     cmd,
		results: res,
		params:  p,
		log:     log,
		exited:  make(chan struct{}),
	}
	s.state = state.New(s.onStreamsClosed)

	if err := s.openPipes(); err != nil {
		s.closePipes()
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToStartProcess, err)
	}

	if err := cmd.Start(); err != nil {
		s.closePipes()
		log.Error().Err(err).Msgf("Failed to start '%s'", p.Args[0])

		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToStartProcess, err)
	}

	log.Info().Msgf("Started '%s' (PID: %d)", p.Args[0], cmd.Process.Pid)

	return s, nil
}

// buildEnv inherits the current environment and overlays the optional dotenv file
func buildEnv(envFile string) ([]string, error) {
	env := os.Environ()

	if envFile == "" {
		return env, nil
	}

	vars, err := godotenv.Read(envFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToLoadEnvFile, err)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}

	return env, nil
}

func (s *Supervisor) openPipes() error {
	var err error

	if s.stdin, err = s.cmd.StdinPipe(); err != nil {
		return fmt.Errorf("%w (stdin): %w", errors.ErrFailedToCreatePipe, err)
	}

	if s.stdout, err = s.cmd.StdoutPipe(); err != nil {
		return fmt.Errorf("%w (stdout): %w", errors.ErrFailedToCreatePipe, err)
	}

	if s.stderr, err = s.cmd.StderrPipe(); err != nil {
		return fmt.Errorf("%w (stderr): %w", errors.ErrFailedToCreatePipe, err)
	}

	return nil
}

func (s *Supervisor) closePipes() {
	for _, c := range []io.Closer{s.stdin, s.stdout, s.stderr} {
		if c != nil {
			_ = c.Close()
		}
	}
}

// State returns the state shared with the I/O loops
func (s *Supervisor) State() *state.Shared {
	return s.state
}

// Stdin returns the child's input stream
func (s *Supervisor) Stdin() io.WriteCloser {
	return s.stdin
}

// Stdout returns the child's primary output stream
func (s *Supervisor) Stdout() io.ReadCloser {
	return s.stdout
}

// Stderr returns the child's diagnostic output stream
func (s *Supervisor) Stderr() io.ReadCloser {
	return s.stderr
}

// ProcessPID returns the OS pid of the spawned executable
func (s *Supervisor) ProcessPID() int {
	return s.cmd.Process.Pid
}

// Exited is closed once the child has been reaped
func (s *Supervisor) Exited() <-chan struct{} {
	return s.exited
}

// ExitCode returns the child's exit status; valid after Exited is closed
func (s *Supervisor) ExitCode() int {
	<-s.exited
	return s.exitCode
}

// Interrupt delivers SIGINT to the process id announced by the prover
func (s *Supervisor) Interrupt(ctx context.Context) error {
	announced, ok := s.state.PID()
	if !ok || s.state.Terminating() || s.hasExited() {
		return errors.ErrNoProcess
	}

	pid, err := strconv.Atoi(announced)
	if err != nil || pid <= 0 || pid > math.MaxInt32 {
		return fmt.Errorf("%w: invalid pid %q", errors.ErrInterruptFailed, announced)
	}

	ctx, cancel := context.WithTimeout(ctx, s.params.SignalTimeout)
	defer cancel()

	exists, err := process.PidExistsWithContext(ctx, int32(pid)) // #nosec G115 -- PID range checked above
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInterruptFailed, err)
	}

	if !exists {
		return fmt.Errorf("%w: pid %d not running", errors.ErrInterruptFailed, pid)
	}

	delivered := make(chan error, 1)

	go func() {
		delivered <- unix.Kill(pid, unix.SIGINT)
	}()

	select {
	case err := <-delivered:
		if err != nil {
			return fmt.Errorf("%w: %w", errors.ErrInterruptFailed, err)
		}

		s.log.Info().Msgf("Interrupted prover (PID: %d)", pid)

		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", errors.ErrInterruptAborted, ctx.Err())
	}
}

// Terminate ends the child, releases its streams and reports EXIT; only the first call acts
func (s *Supervisor) Terminate() error {
	s.terminateOnce.Do(func() {
		s.terminateErr = s.terminate()
	})

	return s.terminateErr
}

// onStreamsClosed runs once both output streams have reached end of stream
func (s *Supervisor) onStreamsClosed() {
	s.log.Debug().Msg("Both output streams closed")

	if err := s.Terminate(); err != nil {
		s.log.Error().Err(err).Msg("Failed to terminate prover")
	}
}

func (s *Supervisor) terminate() error {
	pid := s.cmd.Process.Pid
	s.log.Info().Msgf("Stopping prover (PID: %d)", pid)

	go s.wait()

	err := stop(s.cmd, s.exited, s.params.ShutdownTimeout, s.log)

	s.closePipes()

	code := -1
	if s.hasExited() {
		code = s.exitCode
	}

	s.results.Put(results.KindExit, strconv.Itoa(code))

	return err
}

func (s *Supervisor) hasExited() bool {
	select {
	case <-s.exited:
		return true
	default:
		return false
	}
}

// wait reaps the child and records its exit status
func (s *Supervisor) wait() {
	defer close(s.exited)

	err := s.cmd.Wait()
	s.exitCode = exitCode(s.cmd, err)

	s.log.Info().Int("code", s.exitCode).Msg("Prover exited")
}
