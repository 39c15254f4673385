package connector

import (
	"time"

	"github.com/haricheung/coshell/internal/tcc/event"
	"github.com/haricheung/coshell/internal/tcc/monitor"
)

// Ferry implements spec.md §4.9: a two-side loading connector that departs
// a whole batch of cars together, either once a side fills to capacity or
// once its first loader's departure deadline elapses. side is always 0 or
// 1, same convention as Bridge's direction.
type Ferry struct {
	id         ID
	travelTime time.Duration
	maxWaitMs  int
	capacity   int
	writer     event.Writer

	mon  monitor.Monitor
	cond [2]*monitor.Cond

	carsLoaded [2]int
	deadline   [2]time.Time
}

// NewFerry constructs a Ferry. travelTime is the crossing duration once a
// batch departs; maxWaitMs bounds how long a side's first loader waits for
// the side to fill before departing partially full; capacity is the number
// of cars a single crossing carries.
func NewFerry(id ID, travelTime time.Duration, maxWaitMs int, capacity int, w event.Writer) *Ferry {
	f := &Ferry{
		id:         id,
		travelTime: travelTime,
		maxWaitMs:  maxWaitMs,
		capacity:   capacity,
		writer:     w,
	}
	f.cond[0] = f.mon.NewCond()
	f.cond[1] = f.mon.NewCond()
	return f
}

func (f *Ferry) emit(carID string, action event.Action) {
	f.writer.WriteOutput(carID, KindFerry.Letter(), f.id.Num, action)
}

// Pass loads carID onto side and runs its crossing, implementing spec.md
// §4.9 steps 1-4. A loader that fills the side to capacity departs
// immediately; every other loader waits once on the side's shared deadline
// and then departs regardless of whether it woke by timeout or by
// another loader's notify — all loaders share one absolute deadline per
// side, so a timeout wakes every one of them in the same instant, which is
// what keeps a whole batch departing together without any extra
// bookkeeping beyond the load counter and the deadline itself.
func (f *Ferry) Pass(carID string, side int) {
	f.mon.Lock()
	defer f.mon.Unlock()

	f.emit(carID, event.Arrive)
	f.carsLoaded[side]++
	if f.carsLoaded[side] == 1 {
		f.deadline[side] = monitor.Deadline(f.maxWaitMs)
	}

	if f.carsLoaded[side] < f.capacity {
		if f.cond[side].TimedWait(f.deadline[side]) {
			f.carsLoaded[side] = 0
			f.cond[side].NotifyAll()
		}
	} else {
		f.carsLoaded[side] = 0
		f.cond[side].NotifyAll()
	}

	f.emit(carID, event.StartPassing)
	f.mon.Unlock()
	time.Sleep(f.travelTime)
	f.mon.Lock()
	f.emit(carID, event.FinishPassing)
}
