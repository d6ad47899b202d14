package results

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prover/internal/app/errors"
)

func Test_KindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindStdout, "STDOUT"},
		{KindStderr, "STDERR"},
		{KindExit, "EXIT"},
		{KindWriteln, "WRITELN"},
		{KindPriority, "PRIORITY"},
		{KindTracing, "TRACING"},
		{KindWarning, "WARNING"},
		{KindError, "ERROR"},
		{KindDebug, "DEBUG"},
		{KindFailure, "FAILURE"},
		{Kind(99), "KIND(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

func Test_IsProtocol(t *testing.T) {
	for _, k := range []Kind{KindWriteln, KindPriority, KindTracing, KindWarning, KindError, KindDebug} {
		assert.True(t, k.IsProtocol(), k.String())
	}

	for _, k := range []Kind{KindStdout, KindStderr, KindExit, KindFailure} {
		assert.False(t, k.IsProtocol(), k.String())
	}
}

func Test_ResultString(t *testing.T) {
	assert.Equal(t, "WARNING [[line1\nline2]]", New(KindWarning, "line1\nline2").String())
}

func Test_Queue(t *testing.T) {
	q := NewQueue()
	q.Put(KindStdout, "hello")
	q.Put(KindExit, "0")

	assert.Equal(t, 2, q.Len())

	r, err := q.Take(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Kind: KindStdout, Text: "hello"}, r)

	r, ok := q.TryTake()
	assert.True(t, ok)
	assert.Equal(t, KindExit, r.Kind)

	q.Close()
	q.Put(KindStdout, "dropped")
	assert.Equal(t, 0, q.Len())

	_, err = q.Take(context.Background())
	assert.ErrorIs(t, err, errors.ErrQueueClosed)
}
