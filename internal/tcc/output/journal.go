package output

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/haricheung/coshell/internal/tcc/event"
)

// journalEntry is one persisted record, keyed by (runID, seq) so iteration
// over the leveldb keyspace replays one run's events in write order and
// concurrent runs sharing a database never collide.
type journalEntry struct {
	RunID    string       `json:"run_id"`
	Seq      uint64       `json:"seq"`
	At       time.Time    `json:"at"`
	CarID    string       `json:"car_id"`
	ConnType string       `json:"conn_type"`
	ConnID   int          `json:"conn_id"`
	Action   event.Action `json:"action"`
}

const journalWriteQueueSize = 256

// Journal persists every car event to an on-disk leveldb database, the way
// internal/roles/memory/memory.go persists Megrams: a buffered channel fed
// by WriteOutput, drained by one background goroutine so a slow disk never
// blocks a car's own goroutine, with package-style bracket-tagged slog
// calls (internal/roles/memory/memory.go's "[R5] ..." texture, here
// "[TCC/JOURNAL] ...") in place of internal/tasklog/tasklog.go's per-task
// JSONL file, since TCC has exactly one long-lived event stream rather
// than tasklog's per-task file-per-registry-entry model.
type Journal struct {
	db      *leveldb.DB
	writeCh chan journalEntry
	seq     uint64
	runID   string
	done    chan struct{}
}

// NewJournal opens (or creates) the leveldb database at dbPath and starts
// its writer goroutine. runID tags every entry this Journal writes, so a
// database shared by more than one run (or reopened across runs) keeps
// each run's events distinguishable. Mirrors
// internal/roles/memory/memory.go's New: a failure to open the store is
// fatal, reported directly to stderr rather than through log.Fatalf since
// callers redirect the debug log to a file before this runs and a
// log.Fatalf message would never reach the user.
func NewJournal(dbPath string, runID string) *Journal {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mfatal: could not open event journal at %s: %v\033[0m\n", dbPath, err)
		os.Exit(1)
	}
	j := &Journal{db: db, writeCh: make(chan journalEntry, journalWriteQueueSize), runID: runID, done: make(chan struct{})}
	go j.run()
	return j
}

func (j *Journal) run() {
	defer close(j.done)
	for e := range j.writeCh {
		key := append([]byte(e.RunID+"|"), make([]byte, 8)...)
		binary.BigEndian.PutUint64(key[len(key)-8:], e.Seq)
		val, err := json.Marshal(e)
		if err != nil {
			slog.Warn("[TCC/JOURNAL] failed to marshal event", "car", e.CarID, "err", err)
			continue
		}
		if err := j.db.Put(key, val, nil); err != nil {
			slog.Warn("[TCC/JOURNAL] failed to persist event", "car", e.CarID, "err", err)
			continue
		}
		slog.Info("[TCC/JOURNAL] persisted event", "car", e.CarID, "conn", fmt.Sprintf("%s%d", e.ConnType, e.ConnID), "action", e.Action)
	}
}

// WriteOutput implements event.Writer. Cars call this concurrently from
// their own goroutines, so the sequence counter is bumped atomically.
func (j *Journal) WriteOutput(carID string, connType string, connID int, action event.Action) {
	seq := atomic.AddUint64(&j.seq, 1)
	entry := journalEntry{RunID: j.runID, Seq: seq, At: time.Now(), CarID: carID, ConnType: connType, ConnID: connID, Action: action}
	select {
	case j.writeCh <- entry:
	default:
		slog.Warn("[TCC/JOURNAL] write queue full — dropping event", "car", carID, "action", action)
	}
}

// Close stops the writer goroutine and closes the underlying database.
func (j *Journal) Close() error {
	close(j.writeCh)
	<-j.done
	return j.db.Close()
}
