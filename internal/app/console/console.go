package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/term"

	"prover/internal/app/engine"
	"prover/internal/app/errors"
	"prover/internal/app/results"
	"prover/internal/config/logger"
)

// Mode selects how input lines are submitted
type Mode int

// Submission modes
const (
	ModeCommand Mode = iota
	ModeML
	ModeRaw
)

// Console directives, recognized on a line of their own
const (
	directiveInterrupt = ":interrupt"
	directiveStats     = ":stats"
	directiveQuit      = ":quit"
)

// Console feeds user input into a session and prints its results
//
//go:generate mockgen -source=console.go -destination=console_mock.go -package=console
type Console interface {
	Attach(ctx context.Context, eng engine.Engine, in io.Reader, mode Mode) (int, error)
}

type console struct {
	out    io.Writer
	styled bool
	log    logger.Logger
}

// NewConsole creates a console printing to stdout, styled when stdout is a terminal
func NewConsole(log logger.Logger) Console {
	return newConsole(os.Stdout, term.IsTerminal(os.Stdout.Fd()), log)
}

func newConsole(out io.Writer, styled bool, log logger.Logger) *console {
	return &console{
		out:    out,
		styled: styled,
		log:    log.WithComponent("CONSOLE"),
	}
}

// Attach submits lines read from in and prints results until the prover exits, returning its exit code
func (c *console) Attach(ctx context.Context, eng engine.Engine, in io.Reader, mode Mode) (int, error) {
	c.log.Debug().Str("session", eng.ID()).Msg("Console attached")

	go c.feed(ctx, eng, in, mode)

	for {
		r, err := eng.Take(ctx)
		if err != nil {
			if errors.Is(err, errors.ErrQueueClosed) {
				c.log.Warn().Msg("Session ended without an exit status")
				return -1, nil
			}

			return -1, err
		}

		fmt.Fprintln(c.out, render(r, c.styled))

		switch r.Kind {
		case results.KindFailure:
			c.log.Error().Msg(r.Text)
		case results.KindExit:
			code, err := strconv.Atoi(r.Text)
			if err != nil {
				return -1, fmt.Errorf("invalid exit status %q: %w", r.Text, err)
			}

			return code, nil
		}
	}
}

// feed submits each input line and requests close when input ends
func (c *console) feed(ctx context.Context, eng engine.Engine, in io.Reader, mode Mode) {
	defer eng.RequestClose()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case directiveQuit:
			return
		case directiveInterrupt:
			if err := eng.Interrupt(ctx); err != nil {
				c.log.Warn().Err(err).Msg("Interrupt failed")
			}

			continue
		case directiveStats:
			c.printStats(ctx, eng)
			continue
		}

		if err := c.submit(eng, line, mode); err != nil {
			c.log.Warn().Err(err).Msg("Input rejected")
			return
		}
	}

	if err := scanner.Err(); err != nil {
		c.log.Error().Err(err).Msg("Failed to read input")
	}
}

func (c *console) submit(eng engine.Engine, line string, mode Mode) error {
	switch mode {
	case ModeML:
		return eng.RunCode(line)
	case ModeRaw:
		return eng.Submit(line + "\n")
	default:
		return eng.RunCommand(line)
	}
}

func (c *console) printStats(ctx context.Context, eng engine.Engine) {
	stats, err := eng.Stats(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to sample prover")
		return
	}

	c.log.Info().Int("pid", stats.PID).Float64("cpu", stats.CPU).Float64("mem_mb", stats.MEM).Msg("Prover usage")
}
