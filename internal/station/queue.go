// Package station implements the per-station waiting set: ordered,
// path-aware boarding eligibility, overflow requeueing, and transfers.
package station

import (
	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/pathtable"
	"github.com/jwmdev/railedsim/internal/record"
	"github.com/jwmdev/railedsim/internal/train"
)

// Queue is one station's waiting set of passenger record indices, kept in
// arrival order except where Requeue reinserts overflow at the head.
type Queue struct {
	StationID int
	waiting   []int
	log       logctx.Context
}

// New creates an empty waiting set for stationID.
func New(stationID int, log logctx.Context) *Queue {
	return &Queue{StationID: stationID, log: log}
}

// Len returns the number of passengers currently waiting.
func (q *Queue) Len() int { return len(q.waiting) }

// Enqueue appends idx to the tail of the waiting set.
func (q *Queue) Enqueue(idx int) {
	q.waiting = append(q.waiting, idx)
}

// DequeueForBoarding scans the waiting set for passengers whose current
// path segment departs this station on tr's line, in order, and removes
// them from the set. A row is eligible only when its planned path's
// segment at SegmentCursor starts here and matches tr's line id — it does
// not scan the full path, so a passenger mid-journey to a later transfer
// is not mistakenly offered a boarding at an earlier, already-passed stop.
func (q *Queue) DequeueForBoarding(tr *train.Train, store *record.Store, tbl *pathtable.Table, currentTime float64) []int {
	var eligible []int
	remaining := q.waiting[:0]
	for _, idx := range q.waiting {
		row := store.Get(idx)
		if currentTime < row.TransferReadyAt {
			remaining = append(remaining, idx)
			continue
		}
		if q.segmentMatches(row, tr.LineID, tbl) {
			eligible = append(eligible, idx)
		} else {
			remaining = append(remaining, idx)
		}
	}
	q.waiting = remaining
	return eligible
}

func (q *Queue) segmentMatches(row *record.Row, lineID string, tbl *pathtable.Table) bool {
	segs, ok := tbl.Expand(row.PathID)
	if !ok || row.SegmentCursor >= len(segs) {
		return false
	}
	seg := segs[row.SegmentCursor]
	return seg.From == q.StationID && seg.LineCode == lineID
}

// Requeue reinserts indices (typically boarding candidates rejected for
// lack of capacity) at the head of the waiting set, so they are the first
// considered for the next train on their line rather than losing their
// place to passengers who arrived later (SPEC_FULL.md's Open Question
// Decision on boarding overflow).
func (q *Queue) Requeue(indices []int) {
	if len(indices) == 0 {
		return
	}
	q.waiting = append(append([]int{}, indices...), q.waiting...)
}

// TransferPassenger marks idx as changing lines at this station: advances
// its segment cursor to the next leg of its planned path, stamps
// tap-off bookkeeping, holds it ineligible for boarding until
// avgChangeTime seconds have passed (the station's minimum change time),
// sets it back to Waiting, and re-enqueues it at the tail.
func (q *Queue) TransferPassenger(idx int, currentTime, avgChangeTime float64, store *record.Store) {
	row := store.Get(idx)
	row.State = record.Waiting
	row.CurrentStation = q.StationID
	row.TapOffTS = currentTime
	row.SegmentCursor++
	row.TransferReadyAt = currentTime + avgChangeTime
	q.Enqueue(idx)
}
