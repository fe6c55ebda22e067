// Package traingen implements the per-line train dispatch policy: headway,
// service hours, fleet cap, and the per-direction last-departure guard.
package traingen

import (
	"math"

	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/network"
)

// MakeEvent requests that the loop construct a new train.
type MakeEvent struct {
	TrainID     int
	LineID      string
	Direction   int
	CurrentTime float64
	MaxCapacity int
}

// Generator is one line's dispatcher.
type Generator struct {
	LineID          string
	fleetSize       int
	activeIDs       map[int]struct{}
	idlePool        []int
	trainIDCounter  int
	lastDeparture   map[int]float64 // keyed by direction
	log             logctx.Context
}

// New creates a dispatcher for a line with the given fleet size. Both
// directions start eligible immediately (last departure at -inf).
func New(lineID string, fleetSize int, log logctx.Context) *Generator {
	return &Generator{
		LineID:    lineID,
		fleetSize: fleetSize,
		activeIDs: make(map[int]struct{}),
		lastDeparture: map[int]float64{
			1:  math.Inf(-1),
			-1: math.Inf(-1),
		},
		log: log,
	}
}

// Tick evaluates dispatch for both directions, in the fixed order +1 then
// -1, against the line's service-hours window and headway/fleet-cap
// policy.
func (g *Generator) Tick(currentTime float64, l *network.Line) []MakeEvent {
	h := math.Mod(currentTime/3600.0, 24.0)
	if h < l.Schedule.ServiceStartHour || h >= l.Schedule.ServiceEndHour {
		return nil
	}
	var events []MakeEvent
	for _, d := range [2]int{1, -1} {
		if len(g.activeIDs) >= g.fleetSize {
			continue
		}
		if currentTime-g.lastDeparture[d] < l.Schedule.HeadwaySeconds {
			continue
		}
		id := g.allocateID()
		g.activeIDs[id] = struct{}{}
		g.lastDeparture[d] = currentTime
		events = append(events, MakeEvent{
			TrainID:     id,
			LineID:      g.LineID,
			Direction:   d,
			CurrentTime: currentTime,
			MaxCapacity: l.Schedule.Capacity,
		})
		g.log.Log().Info().Int("train_id", id).Int("direction", d).Msg("train dispatched")
	}
	return events
}

func (g *Generator) allocateID() int {
	if n := len(g.idlePool); n > 0 {
		id := g.idlePool[n-1]
		g.idlePool = g.idlePool[:n-1]
		return id
	}
	g.trainIDCounter++
	return g.trainIDCounter
}

// Release moves trainID from the active set to the idle pool for reuse.
func (g *Generator) Release(trainID int) {
	delete(g.activeIDs, trainID)
	g.idlePool = append(g.idlePool, trainID)
}

// ActiveCount returns the number of currently active trains on this line.
func (g *Generator) ActiveCount() int { return len(g.activeIDs) }
