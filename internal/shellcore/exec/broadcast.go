package exec

import (
	"context"
	"io"
	"log"
	"os"
	"sync"

	"github.com/haricheung/coshell/internal/shellcore"
)

// broadcastBufSize mirrors the 256 KiB read buffer spec.md §4.6 specifies
// for the repeater loop.
const broadcastBufSize = 256 * 1024

// runBroadcast implements spec.md §4.6: for each of k single inputs xᵢ, a
// pipe is created and a child is started with its stdin dup'd from the
// read end; the parent (this goroutine) then repeats every buffer it reads
// from its own stdin to every write end still alive, until its stdin
// reaches end-of-file, at which point it closes every write end and waits
// for all children.
//
// Per spec.md §9's resolved open question, a slow or dead child is handled
// by looping a full short-write retry for that child alone and dropping it
// (closing its write end) only on a write error — bytes already delivered
// to surviving children are never held back by one stuck child, matching
// the invariant in spec.md §8 that "bytes beyond the death of some subset
// of children are still delivered to surviving children." Go never raises
// SIGPIPE as a process-terminating signal for writes to a pipe we created
// ourselves (only writes to fd 1/2 interact with the process's signal
// disposition at all), so there is no analogue needed to the original's
// explicit SIGPIPE-ignore.
func runBroadcast(ctx context.Context, xs []shellcore.SingleInput, io_ IO) error {
	writers := make([]*os.File, 0, len(xs))

	var wg sync.WaitGroup
	for _, x := range xs {
		r, w, err := os.Pipe()
		if err != nil {
			log.Printf("[BROADCAST] create pipe: %v", err)
			continue
		}
		writers = append(writers, w)

		wg.Add(1)
		x := x
		go func() {
			defer wg.Done()
			defer r.Close()
			if err := runStage(ctx, x, IO{Stdin: r, Stdout: io_.Stdout, Stderr: io_.Stderr}); err != nil {
				log.Printf("[BROADCAST] child: %v", err)
			}
		}()
	}

	repeat(io_.Stdin, writers)
	wg.Wait()
	return nil
}

// repeat reads from stdin until EOF (or a read error), broadcasting every
// chunk to every writer still alive, then closes whichever writers
// survived.
func repeat(stdin io.Reader, writers []*os.File) {
	alive := append([]*os.File(nil), writers...)
	buf := make([]byte, broadcastBufSize)
	for {
		n, err := stdin.Read(buf)
		if n > 0 {
			alive = broadcastChunk(buf[:n], alive)
		}
		if err != nil {
			break
		}
		if len(alive) == 0 {
			break
		}
	}
	for _, w := range alive {
		w.Close()
	}
}

// broadcastChunk writes chunk in full to every writer, dropping (and
// closing) any writer a full-buffer write fails on, and returns the
// writers that survived.
func broadcastChunk(chunk []byte, writers []*os.File) []*os.File {
	survivors := writers[:0]
	for _, w := range writers {
		if writeFull(w, chunk) {
			survivors = append(survivors, w)
		} else {
			w.Close()
		}
	}
	return survivors
}

// writeFull loops until chunk is fully written or a write errors, handling
// the short-write case the broadcast repeater must tolerate.
func writeFull(w *os.File, chunk []byte) bool {
	for len(chunk) > 0 {
		n, err := w.Write(chunk)
		if err != nil {
			return false
		}
		chunk = chunk[n:]
	}
	return true
}
