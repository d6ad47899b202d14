package results

import (
	"context"
	"fmt"

	"prover/internal/app/queue"
)

// Kind classifies a result produced by the prover process or its wrapper
type Kind int

const (
	KindStdout Kind = iota
	KindStderr
	KindExit
	KindWriteln
	KindPriority
	KindTracing
	KindWarning
	KindError
	KindDebug
	KindFailure
)

var kindNames = map[Kind]string{
	KindStdout:   "STDOUT",
	KindStderr:   "STDERR",
	KindExit:     "EXIT",
	KindWriteln:  "WRITELN",
	KindPriority: "PRIORITY",
	KindTracing:  "TRACING",
	KindWarning:  "WARNING",
	KindError:    "ERROR",
	KindDebug:    "DEBUG",
	KindFailure:  "FAILURE",
}

// String returns the upper-case kind name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("KIND(%d)", int(k))
}

// IsProtocol reports whether the kind is a framed prover message rather than raw process output
func (k Kind) IsProtocol() bool {
	return k >= KindWriteln && k <= KindDebug
}

// Result is one fully formed, classified record
type Result struct {
	Kind Kind
	Text string
}

// New creates a result
func New(kind Kind, text string) Result {
	return Result{Kind: kind, Text: text}
}

// String renders the result as KIND [[text]]
func (r Result) String() string {
	return fmt.Sprintf("%s [[%s]]", r.Kind, r.Text)
}

// Queue is the unbounded FIFO through which every result leaves the engine
type Queue struct {
	fifo *queue.Fifo[Result]
}

// NewQueue creates an empty result queue
func NewQueue() *Queue {
	return &Queue{fifo: queue.New[Result]()}
}

// Put enqueues a result; results put after Close are dropped
func (q *Queue) Put(kind Kind, text string) {
	q.fifo.Put(New(kind, text))
}

// Take blocks until a result is available
func (q *Queue) Take(ctx context.Context) (Result, error) {
	return q.fifo.Take(ctx)
}

// TryTake returns the next result without blocking
func (q *Queue) TryTake() (Result, bool) {
	return q.fifo.TryTake()
}

// Len returns the number of undelivered results
func (q *Queue) Len() int {
	return q.fifo.Len()
}

// Close marks the end of the result stream
func (q *Queue) Close() {
	q.fifo.Close()
}
