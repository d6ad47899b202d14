package supervisor

import (
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"prover/internal/app/errors"
	"prover/internal/config/logger"
)

// configure places the child in its own process group
func configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// stop sends SIGTERM to the process group and escalates to SIGKILL after timeout
func stop(cmd *exec.Cmd, exited <-chan struct{}, timeout time.Duration, log logger.Logger) error {
	pid := cmd.Process.Pid

	if err := unix.Kill(-pid, unix.SIGTERM); err != nil {
		log.Debug().Err(err).Msg("Failed to send SIGTERM to process group, trying direct signal")

		if directErr := cmd.Process.Signal(unix.SIGTERM); directErr != nil {
			log.Debug().Err(directErr).Msg("Failed to send SIGTERM to prover")
		}
	}

	select {
	case <-exited:
		return nil
	case <-time.After(timeout):
		log.Warn().Msgf("Prover (PID: %d) did not stop gracefully, forcing kill", pid)
		return forceKill(cmd, exited, log)
	}
}

// forceKill sends SIGKILL to the process group and waits for the child to be reaped
func forceKill(cmd *exec.Cmd, exited <-chan struct{}, log logger.Logger) error {
	pid := cmd.Process.Pid

	if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
		log.Warn().Err(err).Msg("Failed to SIGKILL process group, trying direct kill")

		if killErr := cmd.Process.Kill(); killErr != nil {
			return fmt.Errorf("%w: %w", errors.ErrFailedToTerminateProcess, killErr)
		}
	}

	<-exited

	return nil
}

// exitCode maps a wait result to a shell-style status; death by signal N yields 128+N
func exitCode(cmd *exec.Cmd, err error) int {
	state := cmd.ProcessState
	if state == nil {
		if err != nil {
			return -1
		}

		return 0
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}

	return state.ExitCode()
}
