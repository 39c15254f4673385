package exec

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"

	"github.com/haricheung/coshell/internal/shellcore"
)

// SpawnError reports a fork/exec failure for one command. Per spec.md §7 it
// is reported to standard error and the command is considered finished — it
// never aborts the surrounding sequential/parallel/pipeline construct.
type SpawnError struct {
	Argv []string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%s: %v", e.Argv[0], e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// runCommand runs argv[0] (searched via PATH, exactly like the teacher's
// internal/tools.RunShell wrapper around os/exec) with argv[1:] as
// arguments, per spec.md §4.3. It blocks until the child exits or is
// signaled; the child's exit status is not propagated beyond "returned".
func runCommand(ctx context.Context, cmd shellcore.Command, io_ IO) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("runCommand: empty argv")
	}

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Stdin = io_.Stdin
	c.Stdout = io_.Stdout
	c.Stderr = io_.Stderr

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		se := &SpawnError{Argv: cmd.Args, Err: err}
		log.Printf("[EXEC] %v", se)
		fmt.Fprintf(io_.Stderr, "eshell: %s: %v\n", cmd.Args[0], err)
	}
	return nil
}
