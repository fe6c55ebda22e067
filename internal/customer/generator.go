// Package customer implements the per-station passenger arrival source:
// Poisson-sampled demand against a time-of-day rate profile, writing
// freshly spawned rows into the record store.
package customer

import (
	"math"
	"math/rand"

	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/record"
)

// RateProfile returns the arrival rate (passengers/second) at simulation
// time t. A constant profile (ConstantRate) is the degenerate case; any
// function of simulation time can serve as a time-of-day profile.
type RateProfile func(t float64) float64

// ConstantRate returns a RateProfile with a fixed rate regardless of t.
func ConstantRate(rate float64) RateProfile {
	return func(float64) float64 { return rate }
}

// Generator is one station's arrival source.
type Generator struct {
	StationID int
	Rate      RateProfile
	rng       *rand.Rand
	log       logctx.Context
}

// New creates a generator for stationID, sampled with the given seed.
func New(stationID int, rate RateProfile, seed int64, log logctx.Context) *Generator {
	return &Generator{
		StationID: stationID,
		Rate:      rate,
		rng:       rand.New(rand.NewSource(seed)),
		log:       log,
	}
}

// Generate draws n ~ Poisson(rate(t)*dt) new passengers, excludes
// StationID from the candidate destination set, and writes freshly
// allocated rows into store. Returns the allocated indices (empty, not
// nil, when no arrivals occur this tick).
func (g *Generator) Generate(t, dt float64, candidateDestinations []int, store *record.Store) ([]int, error) {
	mean := g.Rate(t) * dt
	n := g.poisson(mean)
	if n == 0 {
		return []int{}, nil
	}
	dests := excluding(candidateDestinations, g.StationID)
	if len(dests) == 0 {
		g.log.Log().Warn().Int("station", g.StationID).Msg("no reachable destinations, skipping arrivals")
		return []int{}, nil
	}

	indices, err := store.Allocate(n)
	if err != nil {
		return nil, err
	}
	for _, idx := range indices {
		row := store.Get(idx)
		row.ID = store.NextID()
		row.Origin = g.StationID
		row.Dest = dests[g.rng.Intn(len(dests))]
		row.CurrentStation = g.StationID
		row.OnTrainID = 0
		row.State = record.Waiting
		row.SpawnTS = t
		row.TapOnTS = 0
		row.TapOffTS = 0
		row.PathID = 0
		row.TotalWaitTime = 0
		row.TotalTravelTime = 0
		row.MovementSpeed = 1.0 + g.rng.Float64()*0.5
		row.SegmentCursor = 0
	}
	g.log.Log().Debug().Int("station", g.StationID).Int("count", n).Msg("customers generated")
	return indices, nil
}

func excluding(all []int, skip int) []int {
	out := make([]int, 0, len(all))
	for _, id := range all {
		if id != skip {
			out = append(out, id)
		}
	}
	return out
}

// poisson draws one sample with the given mean using Knuth's algorithm
// for moderate means and a normal approximation for large ones.
func (g *Generator) poisson(mean float64) int {
	if mean <= 0 {
		return 0
	}
	if mean > 30 {
		std := math.Sqrt(mean)
		val := int(math.Round(g.rng.NormFloat64()*std + mean))
		if val < 0 {
			return 0
		}
		return val
	}
	l := math.Exp(-mean)
	k := 0
	p := 1.0
	for p > l {
		k++
		p *= g.rng.Float64()
	}
	return k - 1
}
