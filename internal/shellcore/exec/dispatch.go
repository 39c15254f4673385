// Package exec implements the Shell Core executor strategies described in
// spec.md §4.2–§4.6: single command, sequential, parallel, pipeline (pure
// and top-level-with-subshell-stages), isolated subshell, and broadcast
// parallel subshell. One function, Dispatch, is reused at every nesting
// level exactly as spec.md §9 describes: "the dispatcher is the same
// function reused at each level, with the same table from §4.2."
package exec

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/haricheung/coshell/internal/shellcore"
	"github.com/haricheung/coshell/internal/shellcore/parse"
)

// IO bundles the three standard streams a dispatched construct runs with.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// lockedWriter serializes writes from concurrently running children that
// share one output stream.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// Dispatch runs one parsed line (or one re-parsed subshell body) against
// the §4.2 table. It returns an error only for infrastructure failures
// such as pipe creation; a subshell body that fails to re-parse is logged
// and skipped, and spawn/exec failures for individual commands are logged
// and swallowed per spec.md §7, since a single failing command never
// aborts the surrounding construct.
func Dispatch(ctx context.Context, pi shellcore.ParsedInput, io_ IO) error {
	if _, ok := io_.Stdout.(*lockedWriter); !ok {
		io_ = IO{Stdin: io_.Stdin, Stdout: &lockedWriter{w: io_.Stdout}, Stderr: &lockedWriter{w: io_.Stderr}}
	}
	switch pi.Sep {
	case shellcore.SepPipe:
		return runPipelineStages(ctx, pi.Inputs, io_)
	case shellcore.SepSeq:
		return runSequential(ctx, pi.Inputs, io_)
	case shellcore.SepPara:
		return runParallel(ctx, pi.Inputs, io_)
	default:
		return runStage(ctx, pi.Inputs[0], io_)
	}
}

// runStage dispatches one SingleInput by its tagged kind. It is the shared
// leaf used by every strategy below — sequential, parallel, and pipeline
// stages all bottom out here.
func runStage(ctx context.Context, single shellcore.SingleInput, io_ IO) error {
	switch single.Kind {
	case shellcore.KindSubshell:
		return runSubshell(ctx, single.Subshell, io_)
	case shellcore.KindPipeline:
		return runCommandPipeline(ctx, single.Pipeline, io_)
	default:
		return runCommand(ctx, single.Command, io_)
	}
}

// runSequential implements spec.md §4.2's SEQ row: run each single input to
// completion in order.
func runSequential(ctx context.Context, inputs []shellcore.SingleInput, io_ IO) error {
	for _, single := range inputs {
		if err := runStage(ctx, single, io_); err != nil {
			log.Printf("[SEQUENTIAL] %v", err)
		}
	}
	return nil
}

// runParallel implements spec.md §4.5: fork one child per single input,
// all sharing the parent's streams so their output may interleave freely,
// then wait for all.
func runParallel(ctx context.Context, inputs []shellcore.SingleInput, io_ IO) error {
	done := make(chan struct{}, len(inputs))
	for _, single := range inputs {
		single := single
		go func() {
			defer func() { done <- struct{}{} }()
			if err := runStage(ctx, single, io_); err != nil {
				log.Printf("[PARALLEL] %v", err)
			}
		}()
	}
	for range inputs {
		<-done
	}
	return nil
}

// runSubshell re-parses a subshell's raw text and dispatches the result.
// A PARA-separated subshell body is always a broadcast parallel subshell
// (spec.md §4.6) — that operator is reachable only through parenthesized
// text, so reaching it here is exactly the trigger condition.
func runSubshell(ctx context.Context, text string, io_ IO) error {
	pi, err := parse.Parse(text)
	if err != nil {
		log.Printf("[SUBSHELL] re-parse failed: %v", err)
		return nil
	}
	if pi.Sep == shellcore.SepPara {
		return runBroadcast(ctx, pi.Inputs, io_)
	}
	return Dispatch(ctx, pi, io_)
}
