package state

import (
	"sync/atomic"
)

// Stream identifies one of the child's output streams
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

// String returns the stream name used in logs
func (s Stream) String() string {
	switch s {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Shared is the state observed across the engine's I/O loops. Every field is
// atomic; no loop holds a lock while touching it.
type Shared struct {
	pid         atomic.Pointer[string]
	closing     atomic.Bool
	stdoutOpen  atomic.Bool
	stderrOpen  atomic.Bool
	terminating atomic.Bool
	onTerminate func()
}

// New creates the state for a freshly spawned process. onTerminate runs
// exactly once, after both output streams have closed.
func New(onTerminate func()) *Shared {
	s := &Shared{onTerminate: onTerminate}
	s.stdoutOpen.Store(true)
	s.stderrOpen.Store(true)

	return s
}

// PID returns the process id announced by the child, if any
func (s *Shared) PID() (string, bool) {
	if p := s.pid.Load(); p != nil {
		return *p, true
	}

	return "", false
}

// SetPID records the announced process id; only the first call has effect
func (s *Shared) SetPID(pid string) bool {
	return s.pid.CompareAndSwap(nil, &pid)
}

// Closing reports whether a close has been requested
func (s *Shared) Closing() bool {
	return s.closing.Load()
}

// MarkClosing sets the closing flag, reporting true only for the caller that set it
func (s *Shared) MarkClosing() bool {
	return s.closing.CompareAndSwap(false, true)
}

// Open reports whether the given stream is still open
func (s *Shared) Open(stream Stream) bool {
	switch stream {
	case Stdout:
		return s.stdoutOpen.Load()
	case Stderr:
		return s.stderrOpen.Load()
	default:
		return false
	}
}

// StreamClosed marks a stream closed and triggers termination once both are closed
func (s *Shared) StreamClosed(stream Stream) {
	switch stream {
	case Stdout:
		s.stdoutOpen.Store(false)
	case Stderr:
		s.stderrOpen.Store(false)
	default:
		return
	}

	s.checkTermination()
}

// Terminating reports whether termination has been triggered
func (s *Shared) Terminating() bool {
	return s.terminating.Load()
}

func (s *Shared) checkTermination() {
	if s.stdoutOpen.Load() || s.stderrOpen.Load() {
		return
	}

	if !s.terminating.CompareAndSwap(false, true) {
		return
	}

	if s.onTerminate != nil {
		s.onTerminate()
	}
}
