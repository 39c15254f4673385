package connector

import (
	"time"

	"github.com/haricheung/coshell/internal/tcc/event"
	"github.com/haricheung/coshell/internal/tcc/monitor"
)

// Bridge implements spec.md §4.8: a two-direction bidirectional connector
// with a FIFO queue per direction and a timed direction switch. direction
// is always 0 or 1.
type Bridge struct {
	id         ID
	travelTime time.Duration // crossing duration, configured per connector
	maxWaitMs  int
	passDelay  time.Duration
	writer     event.Writer

	mon  monitor.Monitor
	cond [2]*monitor.Cond

	queues           [2][]string
	currentDirection int // -1 idle
	carsOnBridge     int
	deadline         [2]time.Time
}

// NewBridge constructs a Bridge. travelTime is the time a car spends
// crossing; maxWaitMs is the per-direction timeout before a switch is
// forced; passDelay is the platoon-spacing delay of spec.md §4.8 step 4.
func NewBridge(id ID, travelTime time.Duration, maxWaitMs int, passDelay time.Duration, w event.Writer) *Bridge {
	b := &Bridge{
		id:               id,
		travelTime:       travelTime,
		maxWaitMs:        maxWaitMs,
		passDelay:        passDelay,
		writer:           w,
		currentDirection: -1,
	}
	b.cond[0] = b.mon.NewCond()
	b.cond[1] = b.mon.NewCond()
	return b
}

func (b *Bridge) emit(carID string, action event.Action) {
	b.writer.WriteOutput(carID, KindBridge.Letter(), b.id.Num, action)
}

func (b *Bridge) isFront(direction int, carID string) bool {
	q := b.queues[direction]
	return len(q) > 0 && q[0] == carID
}

// Pass runs carID's crossing toward direction, implementing spec.md §4.8
// steps 1-6.
func (b *Bridge) Pass(carID string, direction int) {
	b.mon.Lock()
	defer b.mon.Unlock()

	b.emit(carID, event.Arrive)
	b.queues[direction] = append(b.queues[direction], carID)
	if b.currentDirection == -1 {
		b.currentDirection = direction
	}
	if b.isFront(direction, carID) {
		b.deadline[direction] = monitor.Deadline(b.maxWaitMs)
	}

retry:
	for !(b.currentDirection == direction && b.isFront(direction, carID)) {
		if direction == b.currentDirection {
			b.cond[direction].Wait()
			continue
		}
		timedOut := b.cond[direction].TimedWait(b.deadline[direction])
		if timedOut && direction != b.currentDirection && b.isFront(direction, carID) {
			b.currentDirection = direction
			for b.carsOnBridge > 0 {
				b.cond[direction].Wait()
			}
			opp := 1 - direction
			b.deadline[opp] = monitor.Deadline(b.maxWaitMs)
			b.cond[0].NotifyAll()
			b.cond[1].NotifyAll()
		}
	}

	if b.carsOnBridge > 0 {
		b.mon.Unlock()
		time.Sleep(b.passDelay)
		b.mon.Lock()
		if direction != b.currentDirection {
			goto retry
		}
	}

	b.queues[direction] = b.queues[direction][1:]
	b.cond[direction].NotifyAll()
	b.emit(carID, event.StartPassing)
	b.carsOnBridge++
	b.mon.Unlock()
	time.Sleep(b.travelTime)
	b.mon.Lock()
	b.carsOnBridge--
	b.emit(carID, event.FinishPassing)

	b.succeed()
}

// succeed implements spec.md §4.8 step 6's direction-succession rule. It
// runs with the monitor already held, and always consults the *live*
// currentDirection rather than the direction this particular car happened
// to cross in — a concurrent timeout-triggered flip may have already
// changed it while this car was asleep mid-crossing.
func (b *Bridge) succeed() {
	cur := b.currentDirection
	if cur == -1 {
		return
	}
	opp := 1 - cur
	activeEmpty := len(b.queues[cur]) == 0
	oppHasCars := len(b.queues[opp]) > 0

	switch {
	case activeEmpty && oppHasCars:
		b.currentDirection = opp
		b.deadline[opp] = monitor.Deadline(b.maxWaitMs)
		b.cond[0].NotifyAll()
		b.cond[1].NotifyAll()
	case activeEmpty:
		b.currentDirection = -1
	default:
		b.cond[cur].NotifyAll()
	}
}
