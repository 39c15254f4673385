// Command tcsim runs a traffic connector simulation read from stdin
// (spec.md §6's grammar), writing car/connector events to stdout and
// persisting them to a local event journal.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/haricheung/coshell/internal/config"
	"github.com/haricheung/coshell/internal/tcc/output"
	"github.com/haricheung/coshell/internal/tcc/scenario"
)

func main() {
	config.LoadDotenv()
	tier := config.NewTier("TCSIM")

	homeDir, _ := os.UserHomeDir()
	defaultCacheDir := filepath.Join(homeDir, ".cache", "tcsim")
	cacheDir := tier.GetDefault("CACHE_DIR", "CACHE_DIR", defaultCacheDir)
	_ = os.MkdirAll(cacheDir, 0755)

	if f, err := os.OpenFile(filepath.Join(cacheDir, "debug.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	// A simulation's car goroutines can run arbitrarily long; on SIGTERM exit
	// immediately rather than waiting for them to finish their routes, so
	// container orchestration shutdown stays responsive.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		os.Exit(0)
	}()

	runID := uuid.New().String()
	passDelayMs := tier.GetIntDefault("PASS_DELAY_MS", "PASS_DELAY_MS", int(scenario.DefaultPassDelay/time.Millisecond))
	passDelay := time.Duration(passDelayMs) * time.Millisecond

	journalDir := tier.GetDefault("JOURNAL_DIR", "JOURNAL_DIR", filepath.Join(cacheDir, "events"))
	journal := output.NewJournal(journalDir, runID)
	defer journal.Close()

	bus := output.NewBus(output.NewStdoutWriter(os.Stdout), journal)
	defer bus.Close()

	log.Printf("[TCSIM] run=%s starting, journal=%s", runID, journalDir)

	sc, err := scenario.Parse(os.Stdin, bus, passDelay, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tcsim: %v\n", err)
		os.Exit(1)
	}

	sc.Run()
	log.Printf("[TCSIM] run=%s complete", runID)
}
