// Package car implements the Car agent of spec.md §4: one goroutine per
// car, walking its fixed path of connector hops and reporting TRAVEL
// before each one.
package car

import (
	"log"
	"time"

	"github.com/haricheung/coshell/internal/tcc/connector"
	"github.com/haricheung/coshell/internal/tcc/event"
)

// PathSegment is one hop of a car's route: cross connector Kind/ID, in
// direction/side To, having arrived from From. From is the side fed to
// Ferry.Pass and Crossroad.Pass (they key off origin); To is the side fed
// to Bridge.Pass (it keys off destination) — this mirrors the original
// program's per-connector-kind argument choice exactly.
type PathSegment struct {
	Kind connector.Kind
	ID   int
	From int
	To   int
}

// Passer is the subset of Bridge/Ferry/Crossroad's API a Car needs, so
// tests can substitute a fake without spinning up real monitors.
type Passer interface {
	Pass(carID string, direction int)
}

// Registry resolves a path segment's (kind, id) to the live connector
// instance that owns it, shared across every car that crosses it.
type Registry interface {
	Lookup(kind connector.Kind, id int) Passer
}

// Car is one simulated vehicle: its own per-hop travel time (distinct from
// any connector's own internal crossing-duration travelTime) and its fixed
// route.
type Car struct {
	ID         string
	TravelTime time.Duration
	Path       []PathSegment
	Writer     event.Writer
	Registry   Registry

	// RunID tags which simulation run this car belongs to, so log lines
	// from concurrent tcsim runs sharing a debug log never get confused
	// with each other. It plays no part in the car's externally observable
	// behavior or in the events it emits.
	RunID string
}

// Operate walks the car's whole path in order, implementing spec.md §4's
// car loop: for each hop, emit TRAVEL, sleep the car's own travel time,
// then hand off to whatever connector owns that hop's (kind, id), passing
// it the direction argument that connector kind expects.
func (c *Car) Operate() {
	for _, seg := range c.Path {
		c.Writer.WriteOutput(c.ID, seg.Kind.Letter(), seg.ID, event.Travel)
		time.Sleep(c.TravelTime)

		conn := c.Registry.Lookup(seg.Kind, seg.ID)
		if conn == nil {
			log.Printf("[CAR] run=%s car=%s: no connector registered for %s%d, skipping hop", c.RunID, c.ID, seg.Kind.Letter(), seg.ID)
			continue
		}

		switch seg.Kind {
		case connector.KindBridge:
			conn.Pass(c.ID, seg.To)
		default: // Ferry, Crossroad
			conn.Pass(c.ID, seg.From)
		}
	}
}
