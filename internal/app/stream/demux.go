package stream

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"prover/internal/app/results"
	"prover/internal/app/state"
	"prover/internal/config/logger"
)

const readerBufferSize = 64 * 1024

// Demux splits the prover's stdout into classified results
type Demux struct {
	src     io.ReadCloser
	reader  *bufio.Reader
	results *results.Queue
	host    Host
	mode    *Mode
	buf     bytes.Buffer
	log     logger.Logger
	done    chan struct{}
}

// NewDemux creates a demultiplexer owning src
func NewDemux(src io.ReadCloser, queue *results.Queue, host Host, log logger.Logger) *Demux {
	log = log.WithComponent("DEMUX")

	return &Demux{
		src:     src,
		reader:  bufio.NewReaderSize(src, readerBufferSize),
		results: queue,
		host:    host,
		mode:    NewMode(log),
		log:     log,
		done:    make(chan struct{}),
	}
}

// Done is closed when Run returns
func (d *Demux) Done() <-chan struct{} {
	return d.done
}

// Run reads until the stream ends or fails
func (d *Demux) Run() {
	defer close(d.done)

	for {
		var (
			eof bool
			err error
		)

		if _, known := d.host.PID(); known && d.mode.IsStdout() {
			eof, err = d.readChars()
		} else {
			eof, err = d.readLine()
		}

		if err != nil {
			d.log.Error().Err(err).Msg("Failed to read prover output")
			d.results.Put(results.KindFailure, err.Error())
			d.finish()

			return
		}

		if eof {
			d.finish()
			return
		}
	}
}

// readChars collects free text until no more input is immediately available or STX arrives
func (d *Demux) readChars() (bool, error) {
	for d.buf.Len() == 0 || d.reader.Buffered() > 0 || partialRune(d.buf.Bytes()) {
		c, err := d.reader.ReadByte()
		if err != nil {
			d.flush(results.KindStdout)

			if isEndOfStream(err) {
				return true, nil
			}

			return false, err
		}

		switch c {
		case STX:
			d.flush(results.KindStdout)
			return d.readSelector()
		case NUL:
			d.flush(results.KindStdout)
			return false, nil
		default:
			d.buf.WriteByte(c)
		}
	}

	d.flush(results.KindStdout)

	return false, nil
}

// readSelector consumes the byte after STX and switches mode
func (d *Demux) readSelector() (bool, error) {
	c, err := d.reader.ReadByte()
	if err != nil {
		if isEndOfStream(err) {
			return true, nil
		}

		return false, err
	}

	if err := d.mode.Select(c); err != nil {
		d.log.Warn().Err(err).Msgf("Unexpected selector %q", c)
	}

	return false, nil
}

// readLine handles one line while a message is open or before the pid handshake
func (d *Demux) readLine() (bool, error) {
	line, err := d.reader.ReadString('\n')
	if err != nil && !isEndOfStream(err) {
		return false, err
	}

	if err != nil && line == "" {
		return true, nil
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	d.handleLine(line)

	return err != nil, nil
}

func (d *Demux) handleLine(line string) {
	_, known := d.host.PID()

	switch {
	case !known && d.mode.IsStdout() && strings.HasPrefix(line, pidPrefix):
		pid := strings.TrimPrefix(line, pidPrefix)
		d.host.SetPID(pid)
		d.log.Info().Str("pid", pid).Msg("Prover announced its process id")
	case d.mode.IsStdout():
		d.buf.WriteString(line)
		d.buf.WriteByte('\n')
		d.flush(results.KindStdout)
	case strings.HasSuffix(line, endMessage):
		d.buf.WriteString(strings.TrimSuffix(line, endMessage))
		d.results.Put(d.mode.Kind(), d.buf.String())
		d.buf.Reset()

		if err := d.mode.Sentinel(); err != nil {
			d.log.Warn().Err(err).Msg("Failed to close message")
		}
	default:
		d.buf.WriteString(line)
		d.buf.WriteByte('\n')
	}
}

func (d *Demux) flush(kind results.Kind) {
	if d.buf.Len() == 0 {
		return
	}

	d.results.Put(kind, d.buf.String())
	d.buf.Reset()
}

// finish releases the stream and reports it closed
func (d *Demux) finish() {
	if !d.mode.IsStdout() && d.buf.Len() > 0 {
		d.log.Warn().Str("kind", d.mode.Kind().String()).Int("bytes", d.buf.Len()).Msg("Discarding unterminated message")
	}

	d.buf.Reset()

	if err := d.mode.EOF(); err != nil {
		d.log.Warn().Err(err).Msg("Failed to reset mode")
	}

	if err := d.src.Close(); err != nil && !isEndOfStream(err) {
		d.log.Debug().Err(err).Msg("Failed to close stdout")
	}

	d.log.Debug().Msg("Stdout closed")
	d.host.StreamClosed(state.Stdout)
}
