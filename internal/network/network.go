// Package network builds the station/line multigraph and plans shortest
// paths over it, interning the result through the path table.
package network

import (
	"fmt"
	"math"
	"sort"

	"github.com/RyanCarrier/dijkstra/v2"
	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/pathtable"
	"github.com/jwmdev/railedsim/internal/record"
)

type edge struct {
	lineCode string
	weight   float64
}

// Network owns the stations, lines, and the weighted multigraph derived
// from them. It is frozen once the simulation loop's Run begins; all
// construction (AddStation/AddLine) must happen beforehand.
type Network struct {
	stations map[int]*Station
	lines    map[string]*Line
	// edges[from][to] holds every parallel edge (one per line) between an
	// adjacent station pair. Multiple lines sharing a pair produce
	// distinct entries here even though the routing graph below collapses
	// them to a single minimum-weight arc.
	edges map[int]map[int][]edge

	graph    *dijkstra.Graph[int]
	graphOK  bool

	log logctx.Context
}

// New creates an empty network.
func New(log logctx.Context) *Network {
	return &Network{
		stations: make(map[int]*Station),
		lines:    make(map[string]*Line),
		edges:    make(map[int]map[int][]edge),
		log:      log,
	}
}

// AddStation registers a station. Re-adding the same id is a no-op on the
// existing station record (first registration wins), matching the
// teacher's idempotent add_station guard in model construction.
func (n *Network) AddStation(s *Station) {
	if _, exists := n.stations[s.ID]; exists {
		return
	}
	n.stations[s.ID] = s
	n.graphOK = false
}

// Station looks up a registered station by id.
func (n *Network) Station(id int) (*Station, bool) {
	s, ok := n.stations[id]
	return s, ok
}

// AddLine registers a line, fails with ErrUnknownStation if any of its
// stations has not been added via AddStation (the explicit-failure
// policy chosen in SPEC_FULL.md over synthetic auto-registration), and
// fails with ErrInvalidSchedule if the line's schedule or segment times
// are malformed. On success it appends the line's id to each referenced
// station's declared-line list (if not already present) and adds the
// corresponding multigraph edges.
func (n *Network) AddLine(l *Line) error {
	if err := l.validate(); err != nil {
		return err
	}
	for _, sid := range l.Stations {
		if _, ok := n.stations[sid]; !ok {
			return fmt.Errorf("%w: line %q references station %d", ErrUnknownStation, l.ID, sid)
		}
	}
	n.lines[l.ID] = l
	for _, sid := range l.Stations {
		st := n.stations[sid]
		if !st.hasLineCode(l.ID) {
			st.LineCodes = append(st.LineCodes, l.ID)
		}
	}
	for i := 0; i < len(l.Stations)-1; i++ {
		u, v := l.Stations[i], l.Stations[i+1]
		w := l.TravelTime(i)
		n.addEdge(u, v, l.ID, w)
		if l.Bidirectional {
			n.addEdge(v, u, l.ID, w)
		}
	}
	n.graphOK = false
	n.log.Log().Debug().Str("line", l.ID).Int("stops", len(l.Stations)).Msg("line added")
	return nil
}

func (n *Network) addEdge(u, v int, lineCode string, weight float64) {
	if n.edges[u] == nil {
		n.edges[u] = make(map[int][]edge)
	}
	n.edges[u][v] = append(n.edges[u][v], edge{lineCode: lineCode, weight: weight})
}

// bestEdge returns the parallel edge from u to v chosen by the spec's
// tie-break rule: minimum weight first, then lexicographically smallest
// line code.
func (n *Network) bestEdge(u, v int) (edge, bool) {
	es := n.edges[u][v]
	if len(es) == 0 {
		return edge{}, false
	}
	best := es[0]
	for _, e := range es[1:] {
		if e.weight < best.weight || (e.weight == best.weight && e.lineCode < best.lineCode) {
			best = e
		}
	}
	return best, true
}

// ensureGraph (re)builds the dijkstra graph from the current edge set.
// Parallel edges are collapsed to their minimum weight per (u,v) pair so
// the library's own shortest-path run is correct; the per-hop line choice
// for segment reconstruction is resolved separately via bestEdge, which
// applies the full tie-break rule (including the line-code ordering) the
// collapse here ignores.
func (n *Network) ensureGraph() {
	if n.graphOK {
		return
	}
	g := dijkstra.NewGraph[int]()
	for id := range n.stations {
		g.AddVertex(id)
	}
	stationIDs := make([]int, 0, len(n.stations))
	for id := range n.stations {
		stationIDs = append(stationIDs, id)
	}
	sort.Ints(stationIDs)
	for _, u := range stationIDs {
		tos := make([]int, 0, len(n.edges[u]))
		for v := range n.edges[u] {
			tos = append(tos, v)
		}
		sort.Ints(tos)
		for _, v := range tos {
			best, ok := n.bestEdge(u, v)
			if !ok {
				continue
			}
			// dijkstra's arc weights are int64; round rather than truncate so
			// sub-second travel times don't get silently shortened. bestEdge's
			// own reconstruction below still uses the true float weight, this
			// rounding only affects which route the shortest-path run picks.
			_ = g.AddArc(u, v, int64(math.Round(best.weight)))
		}
	}
	n.graph = g
	n.graphOK = true
}

// FindPath computes the single-pair shortest path from origin to dest by
// summed segment travel time, resolves it to segments via the line-code
// tie-break rule, and interns the result in tbl. Returns path_id 0 with no
// error if no route exists (UnreachableDestination, recovered locally per
// spec.md section 7).
func (n *Network) FindPath(origin, dest int, tbl *pathtable.Table) uint32 {
	if origin == dest {
		return 0
	}
	n.ensureGraph()
	best, err := n.graph.Shortest(origin, dest)
	if err != nil {
		n.log.Log().Debug().Int("origin", origin).Int("dest", dest).Msg("unreachable destination")
		return 0
	}
	segments := make([]pathtable.Segment, 0, len(best.Path)-1)
	for i := 0; i+1 < len(best.Path); i++ {
		u, v := best.Path[i], best.Path[i+1]
		e, ok := n.bestEdge(u, v)
		if !ok {
			// Shouldn't happen: the library only returns edges that exist.
			return 0
		}
		segments = append(segments, pathtable.Segment{LineCode: e.lineCode, From: u, To: v})
	}
	return tbl.Plan(origin, dest, segments)
}

// AssignPathToRecord reads origin/dest from the record store row at idx,
// plans a path, and writes the resulting path_id back onto the row.
func (n *Network) AssignPathToRecord(store *record.Store, tbl *pathtable.Table, idx int) {
	row := store.Get(idx)
	row.PathID = n.FindPath(row.Origin, row.Dest, tbl)
}

// StationIDs returns every registered station id, sorted ascending for
// deterministic iteration (e.g. building a generator's candidate
// destination set).
func (n *Network) StationIDs() []int {
	ids := make([]int, 0, len(n.stations))
	for id := range n.stations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Line looks up a registered line by id.
func (n *Network) Line(id string) (*Line, bool) {
	l, ok := n.lines[id]
	return l, ok
}

// Lines returns all registered lines, ordered by id for deterministic
// iteration (dispatch order matters per spec.md section 5).
func (n *Network) Lines() []*Line {
	ids := make([]string, 0, len(n.lines))
	for id := range n.lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Line, 0, len(ids))
	for _, id := range ids {
		out = append(out, n.lines[id])
	}
	return out
}
