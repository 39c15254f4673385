package connector

import (
	"log"
	"time"

	"github.com/haricheung/coshell/internal/tcc/event"
	"github.com/haricheung/coshell/internal/tcc/monitor"
)

// Crossroad implements spec.md §4.10: a four-direction generalization of
// Bridge. Only one direction is active ("has right of way") at a time;
// succession cycles through the other three in order (current+1)%4,
// (current+2)%4, (current+3)%4, picking the first with waiters. Unlike
// Bridge, only a single car at a time — timingOutCar — owns the running
// deadline; the other two non-active directions' front cars wait
// untimed until a direction change wakes them.
type Crossroad struct {
	id         ID
	travelTime time.Duration
	maxWaitMs  int
	passDelay  time.Duration
	writer     event.Writer

	mon      monitor.Monitor
	cond     [4]*monitor.Cond
	drainCtl *monitor.Cond // woken whenever carsOnCross decrements

	queues           [4][]string
	currentDirection int // -1 idle
	carsOnCross      int
	deadline         time.Time
	timingOutCar     string
}

// NewCrossroad constructs a Crossroad.
func NewCrossroad(id ID, travelTime time.Duration, maxWaitMs int, passDelay time.Duration, w event.Writer) *Crossroad {
	cr := &Crossroad{
		id:               id,
		travelTime:       travelTime,
		maxWaitMs:        maxWaitMs,
		passDelay:        passDelay,
		writer:           w,
		currentDirection: -1,
	}
	for d := range cr.cond {
		cr.cond[d] = cr.mon.NewCond()
	}
	cr.drainCtl = cr.mon.NewCond()
	return cr
}

func (cr *Crossroad) emit(carID string, action event.Action) {
	cr.writer.WriteOutput(carID, KindCrossroad.Letter(), cr.id.Num, action)
}

func (cr *Crossroad) isFront(direction int, carID string) bool {
	q := cr.queues[direction]
	return len(q) > 0 && q[0] == carID
}

// succession order for the direction currently holding right of way.
func (cr *Crossroad) order() [3]int {
	return [3]int{(cr.currentDirection + 1) % 4, (cr.currentDirection + 2) % 4, (cr.currentDirection + 3) % 4}
}

// Pass runs carID's crossing toward direction, implementing spec.md §4.10.
func (cr *Crossroad) Pass(carID string, direction int) {
	cr.mon.Lock()
	defer cr.mon.Unlock()

	cr.emit(carID, event.Arrive)
	cr.queues[direction] = append(cr.queues[direction], carID)
	if cr.currentDirection == -1 {
		cr.currentDirection = direction
	}
	if direction != cr.currentDirection && cr.timingOutCar == "" && cr.isFront(direction, carID) {
		log.Printf("[CROSSROAD] %s: %s becomes timing-out car for direction %d", cr.id, carID, direction)
		cr.timingOutCar = carID
		cr.deadline = monitor.Deadline(cr.maxWaitMs)
	}

retry:
	for !(cr.currentDirection == direction && cr.isFront(direction, carID)) {
		if direction == cr.currentDirection {
			cr.cond[direction].Wait()
			continue
		}
		if carID == cr.timingOutCar {
			timedOut := cr.cond[direction].TimedWait(cr.deadline)
			if timedOut && carID == cr.timingOutCar {
				cr.advance()
			}
		} else {
			cr.cond[direction].Wait()
		}
	}

	if cr.carsOnCross > 0 {
		cr.mon.Unlock()
		time.Sleep(cr.passDelay)
		cr.mon.Lock()
		if direction != cr.currentDirection {
			goto retry
		}
	}

	cr.queues[direction] = cr.queues[direction][1:]
	cr.cond[direction].NotifyAll()
	cr.emit(carID, event.StartPassing)
	cr.carsOnCross++
	cr.mon.Unlock()
	time.Sleep(cr.travelTime)
	cr.mon.Lock()
	cr.carsOnCross--
	cr.drainCtl.NotifyAll()
	cr.emit(carID, event.FinishPassing)

	cr.succeed()
}

// advance implements the timeout branch of spec.md §4.10: select the
// successor direction by the cyclic rule, drain any cars still physically
// on the crossroad from the old direction, then hand off. Runs with the
// monitor held; called only by the timingOutCar itself, right after its own
// TimedWait reports expiry.
func (cr *Crossroad) advance() {
	next := -1
	for _, d := range cr.order() {
		if len(cr.queues[d]) > 0 {
			next = d
			break
		}
	}
	log.Printf("[CROSSROAD] %s: timeout, direction %d -> %d", cr.id, cr.currentDirection, next)
	cr.currentDirection = next
	for cr.carsOnCross > 0 {
		cr.drainCtl.Wait()
	}
	cr.refreshTimer()
	for d := 0; d < 4; d++ {
		cr.cond[d].NotifyAll()
	}
}

// succeed implements normal-completion succession: if the direction that
// just finished is now empty, hand off to the next non-empty direction (or
// go idle); otherwise just wake the active direction's next car. Runs with
// the monitor held, consulting the live currentDirection since a
// concurrent timeout may already have changed it while this car crossed.
func (cr *Crossroad) succeed() {
	cur := cr.currentDirection
	if cur == -1 {
		return
	}
	if len(cr.queues[cur]) > 0 || cr.carsOnCross > 0 {
		if len(cr.queues[cur]) > 0 {
			cr.cond[cur].NotifyAll()
		}
		return
	}
	next := -1
	for _, d := range cr.order() {
		if len(cr.queues[d]) > 0 {
			next = d
			break
		}
	}
	cr.currentDirection = next
	cr.refreshTimer()
	for d := 0; d < 4; d++ {
		cr.cond[d].NotifyAll()
	}
}

// refreshTimer assigns timingOutCar to the head of the first non-active
// direction, in plain ascending index order, that has waiters, resetting
// the shared deadline. This scans 0,1,2,3 rather than the cyclic
// succession order of order() — the two pick different cars when more
// than one non-active direction has waiters, and the ascending scan is
// what decides who owns the timeout. Runs with the monitor held.
func (cr *Crossroad) refreshTimer() {
	if cr.currentDirection == -1 {
		cr.timingOutCar = ""
		return
	}
	for d := 0; d < 4; d++ {
		if d == cr.currentDirection {
			continue
		}
		if len(cr.queues[d]) > 0 {
			cr.timingOutCar = cr.queues[d][0]
			cr.deadline = monitor.Deadline(cr.maxWaitMs)
			return
		}
	}
	cr.timingOutCar = ""
}
