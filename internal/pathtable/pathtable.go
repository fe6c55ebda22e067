// Package pathtable deduplicates planned passenger paths behind a small
// integer handle, so record rows carry a 32-bit path_id instead of a
// variable-length segment list.
package pathtable

import (
	"crypto/md5"
	"encoding/binary"
	"strings"

	"github.com/jwmdev/railedsim/internal/logctx"
)

// Segment is the atomic unit of a path: travel on one line between two
// adjacent stations on that line's route.
type Segment struct {
	LineCode string
	From     int
	To       int
}

// Table is an append-only dedup store: plan() never mutates an existing
// entry, only adds new ones. expand() is a pure read. path_id 0 means
// "no path" / unassigned and is never issued by Plan.
type Table struct {
	segments map[uint32][]Segment
	byKey    map[[md5.Size]byte]uint32
	nextID   uint32
	log      logctx.Context
}

// New creates an empty path table.
func New(log logctx.Context) *Table {
	return &Table{
		segments: make(map[uint32][]Segment),
		byKey:    make(map[[md5.Size]byte]uint32),
		nextID:   1,
		log:      log,
	}
}

// canonicalKey produces a stable byte representation of a segment
// sequence: structurally identical sequences (same line codes and station
// ids, in the same order) hash to the same key regardless of how they
// were constructed.
func canonicalKey(segments []Segment) [md5.Size]byte {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.LineCode)
		b.WriteByte(0)
		var buf [8]byte
		binary.BigEndian.PutUint32(buf[0:4], uint32(seg.From))
		binary.BigEndian.PutUint32(buf[4:8], uint32(seg.To))
		b.Write(buf[:])
	}
	return md5.Sum([]byte(b.String()))
}

// Plan interns a segment sequence and returns its path_id. Two calls with
// structurally identical segments return the same id.
func (t *Table) Plan(origin, dest int, segments []Segment) uint32 {
	key := canonicalKey(segments)
	if id, ok := t.byKey[key]; ok {
		return id
	}
	id := t.nextID
	t.nextID++
	stored := make([]Segment, len(segments))
	copy(stored, segments)
	t.segments[id] = stored
	t.byKey[key] = id
	t.log.Log().Debug().Uint32("path_id", id).Int("origin", origin).Int("dest", dest).Int("segments", len(segments)).Msg("path planned")
	return id
}

// Expand returns the segments for path_id, or (nil, false) if unassigned
// or unknown. Expand(0) always returns (nil, false).
func (t *Table) Expand(pathID uint32) ([]Segment, bool) {
	if pathID == 0 {
		return nil, false
	}
	segs, ok := t.segments[pathID]
	return segs, ok
}

// Len returns the number of distinct planned paths.
func (t *Table) Len() int { return len(t.segments) }
