// Package sim implements the fixed-step simulation loop that composes the
// record store, network, generators, train generators, stations, and
// trains into a single deterministic tick.
package sim

import (
	"github.com/jwmdev/railedsim/internal/customer"
	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/network"
	"github.com/jwmdev/railedsim/internal/pathtable"
	"github.com/jwmdev/railedsim/internal/record"
	"github.com/jwmdev/railedsim/internal/station"
	"github.com/jwmdev/railedsim/internal/train"
	"github.com/jwmdev/railedsim/internal/traingen"
)

// Metrics is one tick's operational snapshot.
type Metrics struct {
	Tick              uint64
	BoardingRate      float64
	AlightRate        float64
	// AvgWaitTimeS averages TotalWaitTime over rows currently in the Waiting
	// state only; completed journeys do not contribute, so a tick with nobody
	// waiting reports 0.0.
	AvgWaitTimeS      float64
	ActiveTrains      uint32
	WaitingPassengers uint32
}

// Config holds the loop's fixed parameters.
type Config struct {
	DTSeconds            float64
	SnapshotIntervalTicks uint64
	SnapshotPath         string // empty disables snapshot writing
	StartTime            float64 // simulation clock value before the first Step
}

// Loop is the simulation engine: owns the record store, network, and the
// derived per-station/per-line subsystems, and drives them through
// Run/Step in the exact phase order the contract requires.
type Loop struct {
	store *record.Store
	net   *network.Network
	tbl   *pathtable.Table
	cfg   Config

	generators []*customer.Generator
	trainGens  map[string]*traingen.Generator
	stations   map[int]*station.Queue
	trains     []*train.Train

	// pendingTrains holds trains dispatched this tick. They are merged into
	// trains only at the end of Step, so a train made on tick T has its
	// Step method called for the first time on tick T+1, per the ordering
	// guarantee in spec.md section 5.
	pendingTrains []*train.Train

	currentTick uint64
	currentTime float64

	metrics []Metrics
	log     logctx.Context
}

// New builds a Loop over a frozen network: a station queue is created for
// every registered station and a dispatcher for every registered line.
func New(store *record.Store, net *network.Network, tbl *pathtable.Table, cfg Config, log logctx.Context) *Loop {
	l := &Loop{
		store:       store,
		net:         net,
		tbl:         tbl,
		cfg:         cfg,
		currentTime: cfg.StartTime,
		trainGens:   make(map[string]*traingen.Generator),
		stations:    make(map[int]*station.Queue),
		log:         log,
	}
	for _, line := range net.Lines() {
		l.trainGens[line.ID] = traingen.New(line.ID, line.FleetSize, log.With("line", line.ID))
	}
	for _, id := range net.StationIDs() {
		l.ensureStation(id)
	}
	return l
}

// AddGenerator registers a customer generator. The loop creates a station
// queue for its origin on demand if the network didn't already declare one
// (defensive; normally every generator targets a network-registered
// station).
func (l *Loop) AddGenerator(g *customer.Generator) {
	l.generators = append(l.generators, g)
	l.ensureStation(g.StationID)
}

func (l *Loop) ensureStation(id int) *station.Queue {
	if q, ok := l.stations[id]; ok {
		return q
	}
	q := station.New(id, l.log.WithInt("station_id", id))
	l.stations[id] = q
	return q
}

// Metrics returns the recorded per-tick metrics, in tick order.
func (l *Loop) Metrics() []Metrics { return l.metrics }

// CurrentTime returns the simulation clock.
func (l *Loop) CurrentTime() float64 { return l.currentTime }

// CurrentTick returns the number of ticks executed so far.
func (l *Loop) CurrentTick() uint64 { return l.currentTick }

// ActiveTrains returns the live train list, in creation order. Exposed for
// tests and snapshot/report code; callers must not mutate it.
func (l *Loop) ActiveTrains() []*train.Train { return l.trains }

// Run executes exactly n ticks in order and flushes the record store.
// A CapacityExceeded error from the record store during generation is
// fatal and aborts the run, per spec.
func (l *Loop) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := l.Step(); err != nil {
			return err
		}
	}
	l.store.Flush()
	return nil
}

// Step advances the simulation by exactly one tick, in the fixed phase
// order: generation, path assignment, dispatch, train update, wait
// accumulation, metrics, snapshot, events.
func (l *Loop) Step() error {
	l.currentTick++
	l.currentTime += l.cfg.DTSeconds
	dt := l.cfg.DTSeconds

	if err := l.phaseGeneration(dt); err != nil {
		return err
	}
	l.phaseDispatch()
	boarded, alighted := l.phaseTrainUpdate(dt)
	l.phaseWaitAccumulator(dt)
	l.phaseMetrics(boarded, alighted, dt)
	l.phaseSnapshot()
	// Events: reserved for externally injected disruption events; a no-op
	// hook in this implementation.

	// Trains dispatched this tick become steppable starting next tick.
	if len(l.pendingTrains) > 0 {
		l.trains = append(l.trains, l.pendingTrains...)
		l.pendingTrains = nil
	}
	return nil
}

func (l *Loop) phaseGeneration(dt float64) error {
	allStations := l.net.StationIDs()
	for _, g := range l.generators {
		candidates := excludeStation(allStations, g.StationID)
		indices, err := g.Generate(l.currentTime, dt, candidates, l.store)
		if err != nil {
			return err
		}
		for _, idx := range indices {
			l.net.AssignPathToRecord(l.store, l.tbl, idx)
			row := l.store.Get(idx)
			l.ensureStation(row.Origin).Enqueue(idx)
		}
	}
	return nil
}

func excludeStation(all []int, skip int) []int {
	out := make([]int, 0, len(all))
	for _, id := range all {
		if id != skip {
			out = append(out, id)
		}
	}
	return out
}

func (l *Loop) phaseDispatch() {
	for _, line := range l.net.Lines() {
		tg := l.trainGens[line.ID]
		if tg == nil {
			continue
		}
		for _, ev := range tg.Tick(l.currentTime, line) {
			tt := line.BuildTimetable(l.currentTime, ev.Direction)
			tr := train.New(ev.TrainID, ev.LineID, ev.Direction, ev.MaxCapacity, tt, l.log.With("line", line.ID).WithInt("train_id", ev.TrainID))
			l.pendingTrains = append(l.pendingTrains, tr)
		}
	}
}

func (l *Loop) phaseTrainUpdate(dt float64) (boarded, alighted int) {
	for _, tr := range l.trains {
		arrived := tr.Step(dt, l.currentTime)
		if !arrived && tr.DwellRemaining <= 0 {
			continue
		}

		if arrived {
			arrivedIdx, transferIdx := tr.Alight(l.store, l.tbl)
			for _, idx := range arrivedIdx {
				row := l.store.Get(idx)
				row.TapOffTS = l.currentTime
				row.TotalTravelTime = l.currentTime - row.SpawnTS
				l.store.Release(idx)
			}
			for _, idx := range transferIdx {
				avgChange := 0.0
				if st, ok := l.net.Station(tr.CurrentStationID); ok {
					avgChange = st.AvgChangeTime
				}
				l.ensureStation(tr.CurrentStationID).TransferPassenger(idx, l.currentTime, avgChange, l.store)
			}
			alighted += len(arrivedIdx) + len(transferIdx)
		}

		if arrived && tr.AtTerminal() {
			tr.ReverseDirection()
			if line, ok := l.net.Line(tr.LineID); ok {
				tr.SetTimetable(line.BuildTimetable(l.currentTime, tr.Direction))
			}
			tr.Status = train.InService
			continue // skip boarding this tick
		}

		if tr.DwellRemaining > 0 {
			q := l.ensureStation(tr.CurrentStationID)
			candidates := q.DequeueForBoarding(tr, l.store, l.tbl, l.currentTime)
			admitted, rejected := tr.Board(candidates, l.store)
			for _, idx := range admitted {
				l.store.Get(idx).TapOnTS = l.currentTime
			}
			q.Requeue(rejected)
			boarded += len(admitted)
		}
	}
	return boarded, alighted
}

func (l *Loop) phaseWaitAccumulator(dt float64) {
	l.store.Scan(func(_ int, row *record.Row) {
		if row.State == record.Waiting {
			row.TotalWaitTime += dt
		}
	})
}

func (l *Loop) phaseMetrics(boarded, alighted int, dt float64) {
	var waitSum float64
	var waitCount, waiting uint32
	l.store.Scan(func(_ int, row *record.Row) {
		if row.State == record.Waiting {
			waitSum += row.TotalWaitTime
			waitCount++
			waiting++
		}
	})
	avgWait := 0.0
	if waitCount > 0 {
		avgWait = waitSum / float64(waitCount)
	}
	m := Metrics{
		Tick:              l.currentTick,
		BoardingRate:      float64(boarded) / dt,
		AlightRate:        float64(alighted) / dt,
		AvgWaitTimeS:      avgWait,
		ActiveTrains:      uint32(len(l.trains) + len(l.pendingTrains)),
		WaitingPassengers: waiting,
	}
	l.metrics = append(l.metrics, m)
	l.log.Log().Debug().Uint64("tick", m.Tick).Uint32("waiting", m.WaitingPassengers).Uint32("trains", m.ActiveTrains).Msg("tick metrics")
}

func (l *Loop) phaseSnapshot() {
	if l.cfg.SnapshotPath == "" || l.cfg.SnapshotIntervalTicks == 0 {
		return
	}
	if l.currentTick%l.cfg.SnapshotIntervalTicks != 0 {
		return
	}
	if err := WriteSnapshot(l.cfg.SnapshotPath, l.currentTick, l.store); err != nil {
		l.log.Log().Error().Err(err).Msg("snapshot write failed")
	}
}
