package car

import (
	"sync"
	"testing"
	"time"

	"github.com/haricheung/coshell/internal/tcc/connector"
	"github.com/haricheung/coshell/internal/tcc/event"
)

// fakePasser records every Pass call it receives.
type fakePasser struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakePasser) Pass(carID string, direction int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, carID)
}

// fakeRegistry maps (kind, id) to a single shared fakePasser per test.
type fakeRegistry struct {
	conns map[connector.Kind]*fakePasser
}

func (r *fakeRegistry) Lookup(kind connector.Kind, id int) Passer {
	p, ok := r.conns[kind]
	if !ok {
		return nil
	}
	return p
}

// fakeWriter records events in arrival order.
type fakeWriter struct {
	mu     sync.Mutex
	events []event.Action
}

func (w *fakeWriter) WriteOutput(carID string, connType string, connID int, action event.Action) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, action)
}

func TestCar_OperateWalksEveryHopInOrder(t *testing.T) {
	bridgePasser := &fakePasser{}
	ferryPasser := &fakePasser{}
	reg := &fakeRegistry{conns: map[connector.Kind]*fakePasser{
		connector.KindBridge: bridgePasser,
		connector.KindFerry:  ferryPasser,
	}}
	w := &fakeWriter{}

	c := &Car{
		ID:         "7",
		TravelTime: time.Millisecond,
		Writer:     w,
		Registry:   reg,
		Path: []PathSegment{
			{Kind: connector.KindBridge, ID: 0, From: 0, To: 1},
			{Kind: connector.KindFerry, ID: 0, From: 1, To: 0},
		},
	}

	c.Operate()

	if len(bridgePasser.calls) != 1 || bridgePasser.calls[0] != "7" {
		t.Fatalf("bridge passer calls = %v, want one call from car 7", bridgePasser.calls)
	}
	if len(ferryPasser.calls) != 1 || ferryPasser.calls[0] != "7" {
		t.Fatalf("ferry passer calls = %v, want one call from car 7", ferryPasser.calls)
	}
	want := []event.Action{event.Travel, event.Travel}
	if len(w.events) != len(want) {
		t.Fatalf("writer events = %v, want %v", w.events, want)
	}
}

func TestCar_MissingConnectorSkipsHopWithoutPanicking(t *testing.T) {
	reg := &fakeRegistry{conns: map[connector.Kind]*fakePasser{}}
	w := &fakeWriter{}

	c := &Car{
		ID:         "1",
		TravelTime: time.Millisecond,
		Writer:     w,
		Registry:   reg,
		Path:       []PathSegment{{Kind: connector.KindCrossroad, ID: 5, From: 0, To: 2}},
	}

	c.Operate() // must not panic
}
