// Package repl implements the eshell read-eval-print loop described in
// spec.md §4.2 and §6: a fixed prompt, one line at a time, dispatched on
// its top-level separator via internal/shellcore/exec.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/haricheung/coshell/internal/shellcore/exec"
	"github.com/haricheung/coshell/internal/shellcore/parse"
)

const prompt = "/> "

// inputBufferSize mirrors the original's fixed INPUT_BUFFER_SIZE bound on
// fgets; Go's bufio.Reader does not truncate overlong logical lines the way
// a fixed C buffer would, so this only sizes the initial read chunk.
const inputBufferSize = 4096

// Run drives the REPL against in/out/errOut until the "quit" line, an EOF,
// or ctx cancellation. The same buffered reader is used both for reading
// REPL lines and, when a broadcast parallel subshell is dispatched, for the
// raw byte stream the repeater forwards — so no stdin bytes are ever
// silently absorbed into a line-scanner's read-ahead buffer and lost to the
// construct that needs them next.
func Run(ctx context.Context, in io.Reader, out, errOut io.Writer) {
	reader := bufio.NewReaderSize(in, inputBufferSize)
	writer := bufio.NewWriter(out)

	for {
		fmt.Fprint(writer, prompt)
		writer.Flush()

		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\n")

		if err != nil {
			if err == io.EOF {
				if line == "quit" {
					return
				}
				if line != "" {
					dispatchLine(ctx, line, reader, writer, errOut)
				}
				fmt.Fprint(writer, "\nEOF detected. Exiting eshell.\n")
				writer.Flush()
				return
			}
			log.Printf("[REPL] read error: %v", err)
			fmt.Fprintf(errOut, "eshell: %v\n", err)
			return
		}

		if line == "quit" {
			return
		}

		dispatchLine(ctx, line, reader, writer, errOut)
	}
}

// dispatchLine parses one line and, on success, dispatches it. A parse
// failure reprompts silently, per spec.md §4.1/§4.2.
func dispatchLine(ctx context.Context, line string, in io.Reader, out *bufio.Writer, errOut io.Writer) {
	if line == "" {
		return
	}
	pi, err := parse.Parse(line)
	if err != nil {
		log.Printf("[REPL] parse: %v", err)
		return
	}

	out.Flush()
	if err := exec.Dispatch(ctx, pi, exec.IO{Stdin: in, Stdout: out, Stderr: errOut}); err != nil {
		log.Printf("[REPL] dispatch: %v", err)
		fmt.Fprintf(errOut, "eshell: %v\n", err)
	}
	out.Flush()
}
