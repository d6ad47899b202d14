package stream

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"prover/internal/app/results"
	"prover/internal/config/logger"
)

// Mode states
const (
	ModeStdout   = "stdout"
	ModeWriteln  = "writeln"
	ModePriority = "priority"
	ModeTracing  = "tracing"
	ModeWarning  = "warning"
	ModeError    = "error"
	ModeDebug    = "debug"
)

// Mode events
const (
	eventSelect   = "select_"
	eventSentinel = "sentinel"
	eventReset    = "reset"
	eventEOF      = "eof"
)

var modeKinds = map[string]results.Kind{
	ModeStdout:   results.KindStdout,
	ModeWriteln:  results.KindWriteln,
	ModePriority: results.KindPriority,
	ModeTracing:  results.KindTracing,
	ModeWarning:  results.KindWarning,
	ModeError:    results.KindError,
	ModeDebug:    results.KindDebug,
}

var selectors = map[byte]string{
	'A': ModeWriteln,
	'B': ModePriority,
	'C': ModeTracing,
	'D': ModeWarning,
	'E': ModeError,
	'F': ModeDebug,
}

var protocolModes = []string{ModeWriteln, ModePriority, ModeTracing, ModeWarning, ModeError, ModeDebug}

// Mode tracks which result kind the demultiplexer is currently reading
type Mode struct {
	fsm *fsm.FSM
}

// NewMode creates a mode machine in the stdout state
func NewMode(log logger.Logger) *Mode {
	allModes := append([]string{ModeStdout}, protocolModes...)

	events := fsm.Events{
		{Name: eventSentinel, Src: protocolModes, Dst: ModeStdout},
		{Name: eventReset, Src: allModes, Dst: ModeStdout},
		{Name: eventEOF, Src: allModes, Dst: ModeStdout},
	}

	for _, m := range protocolModes {
		events = append(events, fsm.EventDesc{Name: eventSelect + m, Src: []string{ModeStdout}, Dst: m})
	}

	return &Mode{
		fsm: fsm.NewFSM(
			ModeStdout,
			events,
			fsm.Callbacks{
				"after_event": func(ctx context.Context, e *fsm.Event) {
					log.Debug().Msgf("MODE %s → %s (trigger: %s)", e.Src, e.Dst, e.Event)
				},
			},
		),
	}
}

// Current returns the current state name
func (m *Mode) Current() string {
	return m.fsm.Current()
}

// Kind returns the result kind being accumulated
func (m *Mode) Kind() results.Kind {
	return modeKinds[m.fsm.Current()]
}

// IsStdout reports whether no protocol message is in progress
func (m *Mode) IsStdout() bool {
	return m.fsm.Current() == ModeStdout
}

// Select applies the byte following STX; unknown selectors fall back to stdout
func (m *Mode) Select(selector byte) error {
	if mode, ok := selectors[selector]; ok {
		return m.fire(eventSelect + mode)
	}

	return m.fire(eventReset)
}

// Sentinel ends the current protocol message
func (m *Mode) Sentinel() error {
	return m.fire(eventSentinel)
}

// EOF returns to stdout when the stream ends
func (m *Mode) EOF() error {
	return m.fire(eventEOF)
}

func (m *Mode) fire(event string) error {
	err := m.fsm.Event(context.Background(), event)

	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}

	return err
}
