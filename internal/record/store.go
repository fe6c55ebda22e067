// Package record implements the columnar passenger-record store: a
// fixed-capacity arena of passenger rows with LIFO index recycling and a
// monotonic identity counter, independent of slot reuse.
package record

import (
	"errors"
	"fmt"

	"github.com/jwmdev/railedsim/internal/logctx"
)

// State is a passenger's lifecycle stage.
type State uint8

const (
	Waiting State = iota
	Onboard
	Arrived
	Transferring
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Onboard:
		return "onboard"
	case Arrived:
		return "arrived"
	case Transferring:
		return "transferring"
	default:
		return "unknown"
	}
}

// Row is one passenger record. Field types follow spec.md section 3.
//
// SegmentCursor and TransferReadyAt are not part of the original columnar
// schema; they are store-side bookkeeping for the transfer open question
// (see SPEC_FULL.md). SegmentCursor advances each time the passenger
// reaches the end station of the segment at the cursor (riding through or
// transferring); TransferReadyAt holds the earliest time
// a transferring passenger may board again, enforcing a station's
// avg_change_time.
type Row struct {
	ID               uint64
	Origin           int
	Dest             int
	CurrentStation   int
	OnTrainID        int
	State            State
	SpawnTS          float64
	TapOnTS          float64
	TapOffTS         float64
	PathID           uint32
	TotalWaitTime    float64
	TotalTravelTime  float64
	MovementSpeed    float64
	SegmentCursor    int
	TransferReadyAt  float64
}

// ErrCapacityExceeded is returned by Allocate when the arena is full.
var ErrCapacityExceeded = errors.New("record: capacity exceeded")

// Store is the fixed-capacity passenger record arena.
type Store struct {
	rows     []Row
	free     []int // LIFO stack of released indices
	nextUsed int    // first never-allocated index
	nextID   uint64
	log      logctx.Context
}

// New creates a Store with the given capacity. Capacity is fixed for the
// lifetime of the Store; Allocate fails with ErrCapacityExceeded once both
// the free stack and the never-used range are exhausted.
func New(capacity int, log logctx.Context) *Store {
	return &Store{
		rows:   make([]Row, capacity),
		free:   make([]int, 0, capacity),
		nextID: 1,
		log:    log,
	}
}

// Capacity returns the arena's fixed size.
func (s *Store) Capacity() int { return len(s.rows) }

// Len returns the number of live (id > 0) rows. O(capacity); intended for
// tests and metrics, not the hot path.
func (s *Store) Len() int {
	n := 0
	for i := range s.rows {
		if s.rows[i].ID > 0 {
			n++
		}
	}
	return n
}

// NextID returns the next monotonic passenger identity and advances the
// counter. Identity is never reused even when a slot is recycled.
func (s *Store) NextID() uint64 {
	id := s.nextID
	s.nextID++
	return id
}

// Allocate returns n freshly claimed indices, draining the free stack
// first (LIFO) and then the never-used range. Rows at returned indices are
// zeroed (including ID) and it is the caller's responsibility to populate
// them — matching the teacher's pattern of allocate-then-fill seen in
// CustomerGenerator.generate_customers.
func (s *Store) Allocate(n int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]int, 0, n)
	for len(out) < n && len(s.free) > 0 {
		idx := s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
		s.rows[idx] = Row{}
		out = append(out, idx)
	}
	for len(out) < n && s.nextUsed < len(s.rows) {
		idx := s.nextUsed
		s.nextUsed++
		s.rows[idx] = Row{}
		out = append(out, idx)
	}
	if len(out) < n {
		s.log.Log().Error().Int("requested", n).Int("granted", len(out)).Msg("record store capacity exceeded")
		// Roll back: indices already claimed above (from either source)
		// go back onto the free stack rather than being stranded, so a
		// failed Allocate leaves capacity accounting unchanged.
		s.free = append(s.free, out...)
		return nil, fmt.Errorf("%w: requested %d, granted %d", ErrCapacityExceeded, n, len(out))
	}
	return out, nil
}

// Release zeroes the row at idx (setting ID to 0, marking the slot free)
// and pushes idx onto the free stack for LIFO reuse.
func (s *Store) Release(idx int) {
	s.rows[idx] = Row{}
	s.free = append(s.free, idx)
}

// Get returns a pointer to the row at idx for in-place mutation by the
// owning subsystem (station waiting set, train onboard list, or the loop).
func (s *Store) Get(idx int) *Row {
	return &s.rows[idx]
}

// IsFree reports whether idx currently holds no live record.
func (s *Store) IsFree(idx int) bool {
	return s.rows[idx].ID == 0
}

// Scan calls fn for every live row (id > 0), in index order. Used by the
// simulation loop's wait-accumulator and metrics collection passes.
func (s *Store) Scan(fn func(idx int, row *Row)) {
	for i := range s.rows {
		if s.rows[i].ID > 0 {
			fn(i, &s.rows[i])
		}
	}
}

// FreeCount returns the number of indices currently on the free stack.
func (s *Store) FreeCount() int { return len(s.free) }

// Flush is the persistence hook. This module specifies only the snapshot
// schema and triggering rule (spec.md section 6); on-disk mechanics are an
// external collaborator's concern, so Flush here only logs completion the
// way the teacher's batch driver logs a finished run.
func (s *Store) Flush() {
	s.log.Log().Debug().Int("live", s.Len()).Int("free", len(s.free)).Msg("record store flush")
}
