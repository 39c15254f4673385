package monitor

import (
	"testing"
	"time"
)

func TestCond_NotifyWakesWaiter(t *testing.T) {
	var m Monitor
	cond := m.NewCond()
	ready := make(chan struct{})
	woke := make(chan struct{})

	go func() {
		m.Lock()
		defer m.Unlock()
		close(ready)
		cond.Wait()
		close(woke)
	}()

	<-ready
	time.Sleep(10 * time.Millisecond)

	m.Lock()
	cond.Notify()
	m.Unlock()

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken by Notify")
	}
}

func TestCond_TimedWaitExpiresWithoutNotify(t *testing.T) {
	var m Monitor
	cond := m.NewCond()

	m.Lock()
	deadline := Deadline(20)
	timedOut := cond.TimedWait(deadline)
	m.Unlock()

	if !timedOut {
		t.Fatal("expected TimedWait to report a timeout")
	}
	if time.Now().Before(deadline) {
		t.Fatal("TimedWait returned before its deadline")
	}
}

func TestCond_TimedWaitWokenEarlyByNotify(t *testing.T) {
	var m Monitor
	cond := m.NewCond()
	ready := make(chan struct{})

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Lock()
		cond.NotifyAll()
		m.Unlock()
	}()

	m.Lock()
	close(ready)
	start := time.Now()
	deadline := Deadline(5000)
	cond.TimedWait(deadline)
	m.Unlock()

	if time.Since(start) > time.Second {
		t.Fatal("TimedWait did not wake early on notify")
	}
}

func TestDeadline_IsInTheFuture(t *testing.T) {
	d := Deadline(100)
	if !d.After(time.Now()) {
		t.Fatal("Deadline(100) should be in the future")
	}
}
