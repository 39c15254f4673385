package output

import (
	"log"
	"sync"

	"github.com/haricheung/coshell/internal/tcc/event"
)

const subscriberBufSize = 256

// record is one fanned-out WriteOutput call.
type record struct {
	carID    string
	connType string
	connID   int
	action   event.Action
}

// Bus fans a single event.Writer stream out to a required sink plus any
// number of optional ones. The required sink is spec.md §5's mandatory
// stdout stream: §8's "exactly one ARRIVE/START_PASSING/FINISH_PASSING per
// connector visit" invariant means it can never silently lose an event, so
// it is called synchronously and is left to block the reporting car
// goroutine under backpressure rather than drop anything. Optional sinks
// (the journal) are "purely additive" per SPEC_FULL.md, so they get the
// teacher's internal/bus/bus.go non-blocking, drop-with-warning fan-out
// instead, generalized from one map-of-subscriber-channels keyed by
// message type to a flat list, since TCC has only one event stream rather
// than bus.go's many MessageTypes.
type Bus struct {
	required event.Writer

	mu   sync.RWMutex
	subs []chan record
	wg   sync.WaitGroup
}

// NewBus creates a Bus whose required sink is required and whose optional
// sinks are optional — each gets its own delivery goroutine and may drop
// events under backpressure.
func NewBus(required event.Writer, optional ...event.Writer) *Bus {
	b := &Bus{required: required}
	for _, sink := range optional {
		b.addOptionalSink(sink)
	}
	return b
}

func (b *Bus) addOptionalSink(sink event.Writer) {
	ch := make(chan record, subscriberBufSize)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for r := range ch {
			sink.WriteOutput(r.carID, r.connType, r.connID, r.action)
		}
	}()
}

// WriteOutput implements event.Writer. The required sink is written
// synchronously and unconditionally; every optional sink gets the event on
// a best-effort, non-blocking basis — a sink whose channel is full has this
// event dropped for it, with a warning, rather than stalling the caller.
func (b *Bus) WriteOutput(carID string, connType string, connID int, action event.Action) {
	b.required.WriteOutput(carID, connType, connID, action)

	r := record{carID, connType, connID, action}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- r:
		default:
			log.Printf("[TCC/BUS] WARNING: optional sink channel full — event dropped car=%s conn=%s%d action=%s", carID, connType, connID, action)
		}
	}
}

// Close stops optional-sink delivery once every already-queued event has
// drained. The required sink has no queue to drain since it is written
// synchronously.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, ch := range subs {
		close(ch)
	}
	b.wg.Wait()
}
