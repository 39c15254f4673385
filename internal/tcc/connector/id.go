// Package connector implements the three monitor-based coordination
// protocols of spec.md §4.8–§4.10: NarrowBridge, Ferry, and Crossroad. Each
// is a monitor (internal/tcc/monitor) guarding FIFO per-direction queues
// and a timed direction/departure switch.
package connector

import "fmt"

// Kind is a connector's type tag, per spec.md §3's "(type ∈ {N, F, C}, id)".
type Kind int

const (
	KindBridge Kind = iota
	KindFerry
	KindCrossroad
)

// Letter returns the single-letter token the stdin grammar and output
// events use for this kind.
func (k Kind) Letter() string {
	switch k {
	case KindFerry:
		return "F"
	case KindCrossroad:
		return "C"
	default:
		return "N"
	}
}

// ID uniquely identifies one connector: its kind plus a dense per-kind
// integer id.
type ID struct {
	Kind Kind
	Num  int
}

func (id ID) String() string {
	return fmt.Sprintf("%s%d", id.Kind.Letter(), id.Num)
}
