// Package stream reads the prover's output streams and classifies them into results.
package stream

import (
	"errors"
	"io"
	"os"
	"unicode/utf8"

	"prover/internal/app/state"
)

// Control bytes framing prover messages on stdout
const (
	STX = 0x02
	NUL = 0x00

	pidPrefix  = "PID="
	endMessage = "\x02."
)

// Host receives the process-level facts the readers discover
type Host interface {
	PID() (string, bool)
	SetPID(pid string) bool
	StreamClosed(stream state.Stream)
}

// isEndOfStream treats a pipe closed underneath the reader the same as EOF
func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

// partialRune reports whether b ends in the first bytes of a multi-byte UTF-8 sequence
func partialRune(b []byte) bool {
	for i := len(b) - 1; i >= 0 && i > len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			return !utf8.FullRune(b[i:])
		}
	}

	return false
}
