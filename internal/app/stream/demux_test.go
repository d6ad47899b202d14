package stream

import (
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prover/internal/app/results"
	"prover/internal/app/state"
	"prover/internal/config/logger"
)

type demuxHarness struct {
	pw         *io.PipeWriter
	queue      *results.Queue
	shared     *state.Shared
	demux      *Demux
	terminated atomic.Int32
}

func newDemuxHarness(t *testing.T) *demuxHarness {
	t.Helper()

	pr, pw := io.Pipe()
	h := &demuxHarness{pw: pw, queue: results.NewQueue()}
	h.shared = state.New(func() { h.terminated.Add(1) })
	h.demux = NewDemux(pr, h.queue, h.shared, logger.NewNopLogger())

	go h.demux.Run()

	t.Cleanup(func() { _ = pw.Close() })

	return h
}

func (h *demuxHarness) write(t *testing.T, s string) {
	t.Helper()

	_, err := h.pw.Write([]byte(s))
	require.NoError(t, err)
}

// finish closes the stream, waits for the loop and returns every result produced
func (h *demuxHarness) finish(t *testing.T) []results.Result {
	t.Helper()

	require.NoError(t, h.pw.Close())
	waitDone(t, h.demux.Done())

	return collect(h.queue)
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop")
	}
}

func collect(q *results.Queue) []results.Result {
	var out []results.Result

	for {
		r, ok := q.TryTake()
		if !ok {
			return out
		}

		out = append(out, r)
	}
}

func Test_Demux_Bootstrap(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=123\n")
	got := h.finish(t)

	assert.Empty(t, got)

	pid, ok := h.shared.PID()
	assert.True(t, ok)
	assert.Equal(t, "123", pid)
}

func Test_Demux_LaterPIDLineIsOutput(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=123\n")
	h.write(t, "PID=456\n")
	got := h.finish(t)

	assert.Equal(t, []results.Result{{Kind: results.KindStdout, Text: "PID=456\n"}}, got)

	pid, _ := h.shared.PID()
	assert.Equal(t, "123", pid)
}

func Test_Demux_LinesBeforeBootstrap(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "Welcome\r\nloading\n")
	h.write(t, "PID=77\n")
	got := h.finish(t)

	assert.Equal(t, []results.Result{
		{Kind: results.KindStdout, Text: "Welcome\n"},
		{Kind: results.KindStdout, Text: "loading\n"},
	}, got)

	pid, _ := h.shared.PID()
	assert.Equal(t, "77", pid)
}

func Test_Demux_CharacterModeChunking(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=1\n")
	h.write(t, "abc")
	h.write(t, "def\n")
	got := h.finish(t)

	assert.Equal(t, []results.Result{
		{Kind: results.KindStdout, Text: "abc"},
		{Kind: results.KindStdout, Text: "def\n"},
	}, got)
}

func Test_Demux_ModeSelectors(t *testing.T) {
	tests := []struct {
		selector string
		kind     results.Kind
	}{
		{"A", results.KindWriteln},
		{"B", results.KindPriority},
		{"C", results.KindTracing},
		{"D", results.KindWarning},
		{"E", results.KindError},
		{"F", results.KindDebug},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			h := newDemuxHarness(t)

			h.write(t, "PID=1\n")
			h.write(t, "\x02"+tt.selector+"<payload>\x02.\n")
			h.write(t, "after")
			got := h.finish(t)

			assert.Equal(t, []results.Result{
				{Kind: tt.kind, Text: "<payload>"},
				{Kind: results.KindStdout, Text: "after"},
			}, got)
			assert.True(t, h.demux.mode.IsStdout())
		})
	}
}

func Test_Demux_MessageAtEndOfStream(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=1\n")
	h.write(t, "\x02E<payload>\x02.")
	got := h.finish(t)

	assert.Equal(t, []results.Result{{Kind: results.KindError, Text: "<payload>"}}, got)
}

func Test_Demux_MultiLineMessage(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=1\n")
	h.write(t, "\x02Dline1\nline2\x02.")
	got := h.finish(t)

	assert.Equal(t, []results.Result{{Kind: results.KindWarning, Text: "line1\nline2"}}, got)
}

func Test_Demux_MessageSplitAcrossWrites(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=1\n")
	h.write(t, "\x02A")
	h.write(t, "first\r\n")
	h.write(t, "second\x02.\n")
	got := h.finish(t)

	assert.Equal(t, []results.Result{{Kind: results.KindWriteln, Text: "first\nsecond"}}, got)
}

func Test_Demux_EmptyMessage(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=1\n")
	h.write(t, "\x02A\x02.\n")
	got := h.finish(t)

	assert.Equal(t, []results.Result{{Kind: results.KindWriteln, Text: ""}}, got)
}

func Test_Demux_TextBeforeFrame(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=1\n")
	h.write(t, "plain\x02Bnote\x02.\n")
	got := h.finish(t)

	assert.Equal(t, []results.Result{
		{Kind: results.KindStdout, Text: "plain"},
		{Kind: results.KindPriority, Text: "note"},
	}, got)
}

func Test_Demux_UnknownSelector(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=1\n")
	h.write(t, "\x02Zhello")
	got := h.finish(t)

	assert.Equal(t, []results.Result{{Kind: results.KindStdout, Text: "hello"}}, got)
}

func Test_Demux_FrameBeforeBootstrapIsPlainLine(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "\x02Ahi\x02.\n")
	got := h.finish(t)

	assert.Equal(t, []results.Result{{Kind: results.KindStdout, Text: "\x02Ahi\x02.\n"}}, got)
}

func Test_Demux_NulDropped(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=1\n")
	h.write(t, "ab\x00cd")
	got := h.finish(t)

	assert.Equal(t, []results.Result{
		{Kind: results.KindStdout, Text: "ab"},
		{Kind: results.KindStdout, Text: "cd"},
	}, got)
}

func Test_Demux_SplitUTF8(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=1\n")
	h.write(t, "x\xe2\x88")
	h.write(t, "\x80y")
	got := h.finish(t)

	assert.Equal(t, []results.Result{{Kind: results.KindStdout, Text: "x∀y"}}, got)
}

func Test_Demux_UnterminatedMessageDiscarded(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=1\n")
	h.write(t, "\x02Bpartial\nmore")
	got := h.finish(t)

	assert.Empty(t, got)
	assert.True(t, h.demux.mode.IsStdout())
}

func Test_Demux_STXAtEndOfStream(t *testing.T) {
	h := newDemuxHarness(t)

	h.write(t, "PID=1\n")
	h.write(t, "tail\x02")
	got := h.finish(t)

	assert.Equal(t, []results.Result{{Kind: results.KindStdout, Text: "tail"}}, got)
}

func Test_Demux_EndOfStreamClosesStdout(t *testing.T) {
	h := newDemuxHarness(t)

	h.finish(t)

	assert.False(t, h.shared.Open(state.Stdout))
	assert.True(t, h.shared.Open(state.Stderr))
	assert.Equal(t, int32(0), h.terminated.Load())
}

type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) > 0 {
		n := copy(p, f.data)
		f.data = f.data[n:]

		return n, nil
	}

	return 0, f.err
}

func (f *failingReader) Close() error { return nil }

func Test_Demux_ReadFailure(t *testing.T) {
	queue := results.NewQueue()
	shared := state.New(nil)
	src := &failingReader{data: []byte("PID=9\n"), err: errors.New("broken pipe")}

	d := NewDemux(src, queue, shared, logger.NewNopLogger())
	go d.Run()
	waitDone(t, d.Done())

	got := collect(queue)
	assert.Equal(t, []results.Result{{Kind: results.KindFailure, Text: "broken pipe"}}, got)
	assert.False(t, shared.Open(state.Stdout))
}

func Test_Demux_ClosedPipeIsEndOfStream(t *testing.T) {
	queue := results.NewQueue()
	shared := state.New(nil)
	src := &failingReader{err: io.ErrClosedPipe}

	d := NewDemux(src, queue, shared, logger.NewNopLogger())
	go d.Run()
	waitDone(t, d.Done())

	assert.Empty(t, collect(queue))
	assert.False(t, shared.Open(state.Stdout))
}
