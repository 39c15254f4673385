// Package output implements the "external" WriteOutput collaborator
// spec.md §5/§6 describes: a serialized sink for car/connector events, a
// fan-out bus so more than one sink can observe the same stream, and an
// optional durable journal.
package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/haricheung/coshell/internal/tcc/event"
)

// StdoutWriter is the simplest event.Writer: one mutex-guarded line per
// event written to an io.Writer. spec.md §5 requires WriteOutput to behave
// as though internally serialized; internal/ui/display.go gets away
// without its own write mutex because every terminal write there already
// happens from its single Run goroutine, but cars call WriteOutput
// directly from their own goroutines here, so the mutex is load-bearing.
type StdoutWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdoutWriter wraps w as an event.Writer.
func NewStdoutWriter(w io.Writer) *StdoutWriter {
	return &StdoutWriter{w: w}
}

func (s *StdoutWriter) WriteOutput(carID string, connType string, connID int, action event.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "car %s %s%d %s\n", carID, connType, connID, action)
}
