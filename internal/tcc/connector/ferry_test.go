package connector

import (
	"sync"
	"testing"
	"time"

	"github.com/haricheung/coshell/internal/tcc/event"
)

func TestFerry_BatchDepartsOnceCapacityReached(t *testing.T) {
	rec := &recorder{}
	f := NewFerry(ID{Kind: KindFerry, Num: 1}, 10*time.Millisecond, 5000, 2, rec)

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b"} {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Pass(id, 0)
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("batch never departed")
	}

	for _, id := range []string{"a", "b"} {
		got := rec.forCar(id)
		want := []event.Action{event.Arrive, event.StartPassing, event.FinishPassing}
		if !equalActions(got, want) {
			t.Fatalf("%s events = %v, want %v", id, got, want)
		}
	}
}

func TestFerry_SoleLoaderDepartsAfterTimeout(t *testing.T) {
	rec := &recorder{}
	f := NewFerry(ID{Kind: KindFerry, Num: 1}, 5*time.Millisecond, 20, 4, rec)

	start := time.Now()
	f.Pass("lonely", 1)
	elapsed := time.Since(start)

	if elapsed < 20*time.Millisecond {
		t.Fatalf("departed before its deadline elapsed: %v", elapsed)
	}
	got := rec.forCar("lonely")
	want := []event.Action{event.Arrive, event.StartPassing, event.FinishPassing}
	if !equalActions(got, want) {
		t.Fatalf("lonely events = %v, want %v", got, want)
	}
}

func TestFerry_BothSidesIndependent(t *testing.T) {
	rec := &recorder{}
	f := NewFerry(ID{Kind: KindFerry, Num: 1}, 5*time.Millisecond, 15, 1, rec)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); f.Pass("left", 0) }()
	go func() { defer wg.Done(); f.Pass("right", 1) }()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("both sides never completed")
	}
}
