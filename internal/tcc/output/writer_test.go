package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/haricheung/coshell/internal/tcc/event"
)

func TestStdoutWriter_FormatsOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	w := NewStdoutWriter(&buf)

	w.WriteOutput("3", "N", 2, event.Arrive)
	w.WriteOutput("3", "N", 2, event.StartPassing)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "ARRIVE") || !strings.Contains(lines[0], "N2") {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "START_PASSING") {
		t.Fatalf("unexpected second line: %q", lines[1])
	}
}

func TestStdoutWriter_ConcurrentWritesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	w := NewStdoutWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			w.WriteOutput("car", "N", n, event.Travel)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 50 {
		t.Fatalf("got %d lines, want 50 (a torn write would corrupt the count)", len(lines))
	}
}
