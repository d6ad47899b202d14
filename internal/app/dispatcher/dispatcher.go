package dispatcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"prover/internal/app/errors"
	"prover/internal/app/queue"
	"prover/internal/app/results"
	"prover/internal/config/logger"
)

// entry is one queued write; endOfInput marks the request to close stdin
type entry struct {
	text       string
	endOfInput bool
}

// Closer tracks the closing flag shared with the rest of the engine
type Closer interface {
	Closing() bool
	MarkClosing() bool
}

// Dispatcher owns the child's stdin and writes queued text to it in order
type Dispatcher struct {
	dst          io.WriteCloser
	writer       *bufio.Writer
	outgoing     *queue.Fifo[entry]
	results      *results.Queue
	closer       Closer
	closeTimeout time.Duration
	mu           sync.Mutex
	log          logger.Logger
	done         chan struct{}
}

// New creates a dispatcher owning dst
func New(dst io.WriteCloser, res *results.Queue, closer Closer, closeTimeout time.Duration, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		dst:          dst,
		writer:       bufio.NewWriter(dst),
		outgoing:     queue.New[entry](),
		results:      res,
		closer:       closer,
		closeTimeout: closeTimeout,
		log:          log.WithComponent("DISPATCHER"),
		done:         make(chan struct{}),
	}
}

// Submit queues text for the child, failing once a close has been requested
func (d *Dispatcher) Submit(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closer.Closing() {
		return errors.ErrChannelClosing
	}

	if !d.outgoing.Put(entry{text: text}) {
		return errors.ErrChannelClosing
	}

	return nil
}

// RequestClose queues the end of input; later calls have no effect
func (d *Dispatcher) RequestClose() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.closer.MarkClosing() {
		return
	}

	d.outgoing.Put(entry{endOfInput: true})
	d.log.Debug().Msg("Close requested")
}

// Stop abandons pending text and ends the loop without closing stdin
func (d *Dispatcher) Stop() {
	d.outgoing.Close()
}

// Pending returns the number of queued entries not yet written
func (d *Dispatcher) Pending() int {
	return d.outgoing.Len()
}

// Done is closed when Run returns
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Run writes queued text until end of input, a write failure or cancellation
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	for {
		next, err := d.outgoing.Take(ctx)
		if err != nil {
			if errors.Is(err, errors.ErrQueueClosed) {
				d.log.Debug().Msg("Dispatcher stopped")
				return
			}

			d.log.Warn().Err(err).Msg("Dispatcher cancelled")
			d.results.Put(results.KindFailure, errors.ErrOutputAborted.Error())

			return
		}

		if next.endOfInput {
			d.closeInput()
			return
		}

		if err := d.write(next.text); err != nil {
			d.log.Error().Err(err).Msg("Failed to write to prover")
			d.results.Put(results.KindFailure, err.Error())

			return
		}
	}
}

func (d *Dispatcher) write(text string) error {
	if _, err := d.writer.WriteString(text); err != nil {
		return err
	}

	return d.writer.Flush()
}

// closeInput closes stdin, giving up after the close timeout
func (d *Dispatcher) closeInput() {
	closed := make(chan error, 1)

	go func() {
		closed <- d.dst.Close()
	}()

	select {
	case err := <-closed:
		if err != nil {
			d.log.Warn().Err(err).Msg("Failed to close prover input")
			d.results.Put(results.KindFailure, err.Error())

			return
		}

		d.log.Debug().Msg("Prover input closed")
	case <-time.After(d.closeTimeout):
		err := fmt.Errorf("%w after %s", errors.ErrCloseTimeout, d.closeTimeout)
		d.log.Error().Err(err).Msg("Failed to close prover input")
		d.results.Put(results.KindFailure, err.Error())
	}
}
