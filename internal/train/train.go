// Package train implements the per-train state machine: timetable
// traversal, dwell, boarding, alighting, and terminal reversal.
package train

import (
	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/network"
	"github.com/jwmdev/railedsim/internal/pathtable"
	"github.com/jwmdev/railedsim/internal/record"
)

// Status is a train's service state.
type Status int

const (
	Idle Status = iota
	InService
	OutOfService
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case InService:
		return "in_service"
	case OutOfService:
		return "out_of_service"
	default:
		return "unknown"
	}
}

// Train is one vehicle in service on a line.
type Train struct {
	ID         int
	LineID     string
	Direction  int // +1 forward, -1 reverse
	Status     Status
	Capacity   int

	Timetable    []network.TimetableEntry
	TimetableIdx int

	CurrentStationID int
	NextStationID    *int
	DwellRemaining   float64
	PositionRatio    float64

	Onboard []int // record store indices

	log logctx.Context
}

// New creates a train entering service on timetable tt, starting at its
// first stop with a full dwell.
func New(id int, lineID string, direction int, capacity int, tt []network.TimetableEntry, log logctx.Context) *Train {
	t := &Train{
		ID:        id,
		LineID:    lineID,
		Direction: direction,
		Status:    InService,
		Capacity:  capacity,
		log:       log,
	}
	t.SetTimetable(tt)
	return t
}

// SetTimetable installs a fresh timetable (used both on creation and on
// terminal reversal, where the loop rebuilds the run rather than reversing
// the existing entries in place) and resets traversal state to its start.
func (t *Train) SetTimetable(tt []network.TimetableEntry) {
	t.Timetable = tt
	t.TimetableIdx = 0
	t.DwellRemaining = network.DwellSeconds
	t.PositionRatio = 0
	if len(tt) == 0 {
		return
	}
	t.CurrentStationID = tt[0].StationID
	if len(tt) > 1 {
		next := tt[1].StationID
		t.NextStationID = &next
	} else {
		t.NextStationID = nil
	}
}

// AtTerminal reports whether the train has reached the last stop of its
// current timetable.
func (t *Train) AtTerminal() bool {
	return len(t.Timetable) > 0 && t.TimetableIdx == len(t.Timetable)-1
}

// ReverseDirection flips the train's running direction. It changes nothing
// else; the caller installs the return run's timetable via SetTimetable.
func (t *Train) ReverseDirection() {
	t.Direction = -t.Direction
}

// Step advances the train by dt seconds at the given simulation clock
// time. It returns true if the train arrived at a new station this step
// (the signal the loop uses to run alight/board for that stop).
func (t *Train) Step(dt, currentTime float64) bool {
	if t.Status != InService || len(t.Timetable) == 0 {
		return false
	}
	if t.DwellRemaining > 0 {
		t.DwellRemaining -= dt
		if t.DwellRemaining < 0 {
			t.DwellRemaining = 0
		}
		return false
	}
	if t.AtTerminal() {
		return false
	}
	next := t.Timetable[t.TimetableIdx+1]
	if currentTime < next.ArrivalTime {
		cur := t.Timetable[t.TimetableIdx]
		span := next.ArrivalTime - cur.ArrivalTime
		if span > 0 {
			t.PositionRatio = (currentTime - cur.ArrivalTime) / span
		}
		return false
	}
	t.TimetableIdx++
	t.CurrentStationID = next.StationID
	if t.AtTerminal() {
		t.NextStationID = nil
	} else {
		ns := t.Timetable[t.TimetableIdx+1].StationID
		t.NextStationID = &ns
	}
	t.DwellRemaining = network.DwellSeconds
	t.PositionRatio = 0
	return true
}

// Board admits as many of candidates as capacity allows, in order, and
// returns the boarded and rejected subsets. Rejected indices are the
// caller's responsibility to requeue.
func (t *Train) Board(candidates []int, store *record.Store) (boarded []int, rejected []int) {
	avail := t.Capacity - len(t.Onboard)
	if avail <= 0 {
		return nil, candidates
	}
	n := len(candidates)
	if n > avail {
		n = avail
	}
	boarded = candidates[:n]
	rejected = candidates[n:]
	for _, idx := range boarded {
		row := store.Get(idx)
		row.State = record.Onboard
		row.OnTrainID = t.ID
	}
	t.Onboard = append(t.Onboard, boarded...)
	return boarded, rejected
}

// Alight partitions onboard passengers into those who have reached their
// final destination (arrived), those who must change lines here
// (transferring), and those who remain onboard. A path is a sequence of
// one segment per station pair, so a direct multi-stop ride on a single
// line crosses several segment boundaries without ever requiring a
// transfer; only a boundary where the next segment runs a different line
// is a real line change. Distinguishing the three cases requires the
// per-record segment cursor against the planned path, since a train only
// ever checks its own current station, not a passenger's full itinerary.
func (t *Train) Alight(store *record.Store, tbl *pathtable.Table) (arrived []int, transferring []int) {
	remaining := t.Onboard[:0]
	for _, idx := range t.Onboard {
		row := store.Get(idx)
		switch {
		case row.Dest == t.CurrentStationID:
			row.State = record.Arrived
			row.OnTrainID = 0
			row.CurrentStation = t.CurrentStationID
			arrived = append(arrived, idx)
		case lineChangesHere(row, t.CurrentStationID, tbl):
			row.OnTrainID = 0
			row.CurrentStation = t.CurrentStationID
			transferring = append(transferring, idx)
		default:
			advancePastStop(row, t.CurrentStationID, tbl)
			remaining = append(remaining, idx)
		}
	}
	t.Onboard = remaining
	return arrived, transferring
}

// lineChangesHere reports whether stationID is a segment boundary where
// the next segment runs a different line than the current one, meaning
// the passenger must detrain and re-board rather than ride straight
// through on the same train's line.
func lineChangesHere(row *record.Row, stationID int, tbl *pathtable.Table) bool {
	segs, ok := tbl.Expand(row.PathID)
	if !ok || row.SegmentCursor >= len(segs) || segs[row.SegmentCursor].To != stationID {
		return false
	}
	next := row.SegmentCursor + 1
	return next < len(segs) && segs[next].LineCode != segs[row.SegmentCursor].LineCode
}

// advancePastStop moves the segment cursor past an intermediate stop on
// the same line, so a later genuine transfer or arrival check still lines
// up against the right segment.
func advancePastStop(row *record.Row, stationID int, tbl *pathtable.Table) {
	segs, ok := tbl.Expand(row.PathID)
	if !ok || row.SegmentCursor >= len(segs) {
		return
	}
	if segs[row.SegmentCursor].To == stationID {
		row.SegmentCursor++
	}
}
