package exec

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/haricheung/coshell/internal/shellcore"
)

// runCommandPipeline implements the pure-command variant of spec.md §4.4:
// every stage is a plain Command, used for a pipeline nested inside a SEQ
// or PARA single input (e.g. the first half of "echo a | tr a b ; echo c").
func runCommandPipeline(ctx context.Context, cmds []shellcore.Command, io_ IO) error {
	stages := make([]shellcore.SingleInput, len(cmds))
	for i, c := range cmds {
		stages[i] = shellcore.SingleInput{Kind: shellcore.KindCommand, Command: c}
	}
	return runPipelineStages(ctx, stages, io_)
}

// runPipelineStages implements both variants of spec.md §4.4 uniformly: a
// stage may be a Command or (for a top-level pipeline) a Subshell, which
// re-enters Dispatch through runStage/runSubshell in its own goroutine, so
// that e.g. "(a ; b) | c" runs a then b with their combined stdout piped to
// c. n-1 anonymous pipes are created for n stages; each stage runs
// concurrently and, on completion, closes exactly the pipe ends it alone
// was handed — the read end from the stage before it and the write end
// feeding the stage after it — so every pipe end is closed exactly once and
// before the pipeline's goroutines all exit.
func runPipelineStages(ctx context.Context, stages []shellcore.SingleInput, io_ IO) error {
	n := len(stages)
	if n == 0 {
		return fmt.Errorf("pipeline: no stages")
	}
	if n == 1 {
		return runStage(ctx, stages[0], io_)
	}

	type pipe struct{ r, w *os.File }
	pipes := make([]pipe, n-1)
	for i := range pipes {
		r, w, err := os.Pipe()
		if err != nil {
			for j := 0; j < i; j++ {
				pipes[j].r.Close()
				pipes[j].w.Close()
			}
			return fmt.Errorf("pipeline: create pipe %d: %w", i, err)
		}
		pipes[i] = pipe{r: r, w: w}
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i, stage := range stages {
		i, stage := i, stage
		go func() {
			defer wg.Done()

			stdin := io_.Stdin
			if i > 0 {
				stdin = pipes[i-1].r
			}
			stdout := io_.Stdout
			if i < n-1 {
				stdout = pipes[i].w
			}

			if err := runStage(ctx, stage, IO{Stdin: stdin, Stdout: stdout, Stderr: io_.Stderr}); err != nil {
				log.Printf("[PIPELINE] stage %d: %v", i, err)
			}

			if i > 0 {
				pipes[i-1].r.Close()
			}
			if i < n-1 {
				pipes[i].w.Close()
			}
		}()
	}
	wg.Wait()
	return nil
}
