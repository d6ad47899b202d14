package stream

import (
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prover/internal/app/results"
	"prover/internal/app/state"
	"prover/internal/config/logger"
)

func Test_ErrorReader_Chunks(t *testing.T) {
	pr, pw := io.Pipe()
	queue := results.NewQueue()
	shared := state.New(nil)

	r := NewErrorReader(pr, queue, shared, logger.NewNopLogger())
	go r.Run()

	for _, chunk := range []string{"*** error\n", "more", "∀\x00x\n"} {
		_, err := pw.Write([]byte(chunk))
		require.NoError(t, err)
	}

	require.NoError(t, pw.Close())
	waitDone(t, r.Done())

	assert.Equal(t, []results.Result{
		{Kind: results.KindStderr, Text: "*** error\n"},
		{Kind: results.KindStderr, Text: "more"},
		{Kind: results.KindStderr, Text: "∀\x00x\n"},
	}, collect(queue))
	assert.False(t, shared.Open(state.Stderr))
	assert.True(t, shared.Open(state.Stdout))
}

func Test_ErrorReader_Failure(t *testing.T) {
	queue := results.NewQueue()
	shared := state.New(nil)
	src := &failingReader{data: []byte("partial"), err: errors.New("read error")}

	r := NewErrorReader(src, queue, shared, logger.NewNopLogger())
	go r.Run()
	waitDone(t, r.Done())

	assert.Equal(t, []results.Result{
		{Kind: results.KindStderr, Text: "partial"},
		{Kind: results.KindFailure, Text: "read error"},
	}, collect(queue))
	assert.False(t, shared.Open(state.Stderr))
}

func Test_BothStreamsClosedTerminatesOnce(t *testing.T) {
	tests := []struct {
		name        string
		stdoutFirst bool
	}{
		{name: "stdout first", stdoutFirst: true},
		{name: "stderr first", stdoutFirst: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var terminated atomic.Int32

			queue := results.NewQueue()
			shared := state.New(func() { terminated.Add(1) })

			outR, outW := io.Pipe()
			errR, errW := io.Pipe()

			d := NewDemux(outR, queue, shared, logger.NewNopLogger())
			e := NewErrorReader(errR, queue, shared, logger.NewNopLogger())

			go d.Run()
			go e.Run()

			first, firstDone := outW, d.Done()
			second, secondDone := errW, e.Done()

			if !tt.stdoutFirst {
				first, firstDone, second, secondDone = errW, e.Done(), outW, d.Done()
			}

			require.NoError(t, first.Close())
			waitDone(t, firstDone)
			assert.Equal(t, int32(0), terminated.Load(), "one closed stream is not enough")

			require.NoError(t, second.Close())
			waitDone(t, secondDone)
			assert.Equal(t, int32(1), terminated.Load())
		})
	}
}

func Test_partialRune(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected bool
	}{
		{name: "empty", input: nil, expected: false},
		{name: "ascii", input: []byte("abc"), expected: false},
		{name: "complete 3 byte", input: []byte("∀"), expected: false},
		{name: "lead byte only", input: []byte{'a', 0xe2}, expected: true},
		{name: "two of three", input: []byte{0xe2, 0x88}, expected: true},
		{name: "three of four", input: []byte{0xf0, 0x9d, 0x94}, expected: true},
		{name: "complete 4 byte", input: []byte("𝔄"), expected: false},
		{name: "stray continuation", input: []byte{0x80, 0x80}, expected: false},
		{name: "invalid lead", input: []byte{0xff}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, partialRune(tt.input))
		})
	}
}
