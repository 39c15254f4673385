// Command eshell is the Shell Core entrypoint: a REPL that composes
// external programs via pipelines, sequential execution, parallel
// execution, and recursive subshell groups.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/haricheung/coshell/internal/config"
	"github.com/haricheung/coshell/internal/repl"
)

func main() {
	config.LoadDotenv()

	homeDir, _ := os.UserHomeDir()
	cacheDir := filepath.Join(homeDir, ".cache", "eshell")
	_ = os.MkdirAll(cacheDir, 0755)

	// Redirect debug logs to file so they don't interfere with the
	// interactive terminal.
	if f, err := os.OpenFile(filepath.Join(cacheDir, "debug.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Printf("[ESHELL] SIGTERM received, cancelling in-flight commands")
		cancel()
	}()

	repl.Run(ctx, os.Stdin, os.Stdout, os.Stderr)
}
