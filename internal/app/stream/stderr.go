package stream

import (
	"bufio"
	"bytes"
	"io"

	"prover/internal/app/results"
	"prover/internal/app/state"
	"prover/internal/config/logger"
)

// ErrorReader turns the prover's stderr into STDERR results
type ErrorReader struct {
	src     io.ReadCloser
	reader  *bufio.Reader
	results *results.Queue
	host    Host
	log     logger.Logger
	done    chan struct{}
}

// NewErrorReader creates an error reader owning src
func NewErrorReader(src io.ReadCloser, queue *results.Queue, host Host, log logger.Logger) *ErrorReader {
	return &ErrorReader{
		src:     src,
		reader:  bufio.NewReaderSize(src, readerBufferSize),
		results: queue,
		host:    host,
		log:     log.WithComponent("STDERR"),
		done:    make(chan struct{}),
	}
}

// Done is closed when Run returns
func (r *ErrorReader) Done() <-chan struct{} {
	return r.done
}

// Run forwards stderr in availability-sized chunks until the stream ends or fails
func (r *ErrorReader) Run() {
	defer close(r.done)

	var buf bytes.Buffer

	for {
		eof, err := r.readChunk(&buf)

		if buf.Len() > 0 {
			r.results.Put(results.KindStderr, buf.String())
			buf.Reset()
		}

		if err != nil {
			r.log.Error().Err(err).Msg("Failed to read prover stderr")
			r.results.Put(results.KindFailure, err.Error())
			r.finish()

			return
		}

		if eof {
			r.finish()
			return
		}
	}
}

func (r *ErrorReader) readChunk(buf *bytes.Buffer) (bool, error) {
	for buf.Len() == 0 || r.reader.Buffered() > 0 || partialRune(buf.Bytes()) {
		c, err := r.reader.ReadByte()
		if err != nil {
			if isEndOfStream(err) {
				return true, nil
			}

			return false, err
		}

		buf.WriteByte(c)
	}

	return false, nil
}

func (r *ErrorReader) finish() {
	if err := r.src.Close(); err != nil && !isEndOfStream(err) {
		r.log.Debug().Err(err).Msg("Failed to close stderr")
	}

	r.log.Debug().Msg("Stderr closed")
	r.host.StreamClosed(state.Stderr)
}
