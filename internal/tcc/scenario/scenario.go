// Package scenario parses the stdin grammar of spec.md §6 and runs the
// resulting traffic simulation: constructing every connector, then one
// goroutine per car, joined with a WaitGroup before the process exits.
package scenario

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/haricheung/coshell/internal/tcc/car"
	"github.com/haricheung/coshell/internal/tcc/connector"
	"github.com/haricheung/coshell/internal/tcc/event"
)

// DefaultPassDelay is the fixed, small inter-car spacing delay spec.md's
// GLOSSARY describes as "implementation-defined" — the original program
// reads it from a header constant never itself present in its kept
// source, so it is fixed here rather than read from stdin.
const DefaultPassDelay = 50 * time.Millisecond

// registry implements car.Registry over the three connector slices a
// Scenario owns.
type registry struct {
	bridges    []*connector.Bridge
	ferries    []*connector.Ferry
	crossroads []*connector.Crossroad
}

func (r *registry) Lookup(kind connector.Kind, id int) car.Passer {
	switch kind {
	case connector.KindBridge:
		if id < 0 || id >= len(r.bridges) {
			return nil
		}
		return r.bridges[id]
	case connector.KindFerry:
		if id < 0 || id >= len(r.ferries) {
			return nil
		}
		return r.ferries[id]
	case connector.KindCrossroad:
		if id < 0 || id >= len(r.crossroads) {
			return nil
		}
		return r.crossroads[id]
	default:
		return nil
	}
}

// Scenario is a fully parsed simulation: every connector constructed and
// every car's fixed route, ready to run.
type Scenario struct {
	reg   *registry
	cars  []*car.Car
	runID string
}

// RunID is the run ID the caller passed to Parse, shared by every car in the
// scenario and suitable for tagging a journal or debug log so concurrent
// runs never collide — spec.md's expansion calls for this purely as log
// correlation, not as part of the externally observable event stream.
func (s *Scenario) RunID() string { return s.runID }

// Parse reads the stdin grammar of spec.md §6:
//
//	NN
//	NN lines of: travelTime maxWaitTime             (NarrowBridge)
//	NF
//	NF lines of: travelTime maxWaitTime capacity    (Ferry)
//	NC
//	NC lines of: travelTime maxWaitTime             (Crossroad)
//	N
//	N blocks of: travelTime pathLength
//	            pathLength lines of: typeID from to (e.g. "N2 0 1")
//
// passDelay is used for every Bridge/Crossroad's platoon-spacing delay.
// runID tags every car built from this parse (see Scenario.RunID); pass
// uuid.New().String() for a fresh run, or a caller-supplied ID to let a
// test or a resumed run pick its own.
func Parse(r io.Reader, w event.Writer, passDelay time.Duration, runID string) (*Scenario, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	toks := &tokenStream{sc: sc}

	reg := &registry{}

	nn, err := toks.int()
	if err != nil {
		return nil, fmt.Errorf("reading NN: %w", err)
	}
	for i := 0; i < nn; i++ {
		travel, err := toks.int()
		if err != nil {
			return nil, fmt.Errorf("bridge %d travelTime: %w", i, err)
		}
		maxWait, err := toks.int()
		if err != nil {
			return nil, fmt.Errorf("bridge %d maxWaitTime: %w", i, err)
		}
		id := connector.ID{Kind: connector.KindBridge, Num: i}
		reg.bridges = append(reg.bridges, connector.NewBridge(id, time.Duration(travel)*time.Millisecond, maxWait, passDelay, w))
	}

	nf, err := toks.int()
	if err != nil {
		return nil, fmt.Errorf("reading NF: %w", err)
	}
	for i := 0; i < nf; i++ {
		travel, err := toks.int()
		if err != nil {
			return nil, fmt.Errorf("ferry %d travelTime: %w", i, err)
		}
		maxWait, err := toks.int()
		if err != nil {
			return nil, fmt.Errorf("ferry %d maxWaitTime: %w", i, err)
		}
		capacity, err := toks.int()
		if err != nil {
			return nil, fmt.Errorf("ferry %d capacity: %w", i, err)
		}
		id := connector.ID{Kind: connector.KindFerry, Num: i}
		reg.ferries = append(reg.ferries, connector.NewFerry(id, time.Duration(travel)*time.Millisecond, maxWait, capacity, w))
	}

	nc, err := toks.int()
	if err != nil {
		return nil, fmt.Errorf("reading NC: %w", err)
	}
	for i := 0; i < nc; i++ {
		travel, err := toks.int()
		if err != nil {
			return nil, fmt.Errorf("crossroad %d travelTime: %w", i, err)
		}
		maxWait, err := toks.int()
		if err != nil {
			return nil, fmt.Errorf("crossroad %d maxWaitTime: %w", i, err)
		}
		id := connector.ID{Kind: connector.KindCrossroad, Num: i}
		reg.crossroads = append(reg.crossroads, connector.NewCrossroad(id, time.Duration(travel)*time.Millisecond, maxWait, passDelay, w))
	}

	n, err := toks.int()
	if err != nil {
		return nil, fmt.Errorf("reading N: %w", err)
	}
	var cars []*car.Car
	for i := 0; i < n; i++ {
		travel, err := toks.int()
		if err != nil {
			return nil, fmt.Errorf("car %d travelTime: %w", i, err)
		}
		pathLen, err := toks.int()
		if err != nil {
			return nil, fmt.Errorf("car %d pathLength: %w", i, err)
		}
		path := make([]car.PathSegment, 0, pathLen)
		for j := 0; j < pathLen; j++ {
			typeID, err := toks.word()
			if err != nil {
				return nil, fmt.Errorf("car %d hop %d typeID: %w", i, j, err)
			}
			kind, id, err := parseTypeID(typeID)
			if err != nil {
				return nil, fmt.Errorf("car %d hop %d: %w", i, j, err)
			}
			from, err := toks.int()
			if err != nil {
				return nil, fmt.Errorf("car %d hop %d from: %w", i, j, err)
			}
			to, err := toks.int()
			if err != nil {
				return nil, fmt.Errorf("car %d hop %d to: %w", i, j, err)
			}
			path = append(path, car.PathSegment{Kind: kind, ID: id, From: from, To: to})
		}
		cars = append(cars, &car.Car{
			ID:         strconv.Itoa(i),
			TravelTime: time.Duration(travel) * time.Millisecond,
			Path:       path,
			Writer:     w,
			Registry:   reg,
			RunID:      runID,
		})
	}

	return &Scenario{reg: reg, cars: cars, runID: runID}, nil
}

func parseTypeID(typeID string) (connector.Kind, int, error) {
	if len(typeID) < 2 {
		return 0, 0, fmt.Errorf("malformed connector id %q", typeID)
	}
	var kind connector.Kind
	switch typeID[0] {
	case 'N':
		kind = connector.KindBridge
	case 'F':
		kind = connector.KindFerry
	case 'C':
		kind = connector.KindCrossroad
	default:
		return 0, 0, fmt.Errorf("unknown connector type %q", typeID)
	}
	id, err := strconv.Atoi(typeID[1:])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed connector id %q: %w", typeID, err)
	}
	return kind, id, nil
}

// Run starts every car's Operate in its own goroutine and blocks until all
// have finished their whole route, per spec.md §6's "Exit: 0 after all car
// threads complete."
func (s *Scenario) Run() {
	var wg sync.WaitGroup
	for _, c := range s.cars {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Operate()
		}()
	}
	wg.Wait()
}

// tokenStream reads whitespace-separated tokens (including across line
// breaks) off a bufio.Scanner, the way the original C++ source's
// `std::cin >>` extraction operator does.
type tokenStream struct {
	sc   *bufio.Scanner
	toks []string
}

func (t *tokenStream) next() (string, error) {
	for len(t.toks) == 0 {
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		t.toks = strings.Fields(t.sc.Text())
	}
	tok := t.toks[0]
	t.toks = t.toks[1:]
	return tok, nil
}

func (t *tokenStream) word() (string, error) {
	return t.next()
}

func (t *tokenStream) int() (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("expected integer, got %q: %w", tok, err)
	}
	return n, nil
}
