package train

import (
	"testing"

	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/network"
	"github.com/jwmdev/railedsim/internal/pathtable"
	"github.com/jwmdev/railedsim/internal/record"
	"github.com/stretchr/testify/require"
)

func threeStopTimetable() []network.TimetableEntry {
	return []network.TimetableEntry{
		{ArrivalTime: 0, StationID: 1},
		{ArrivalTime: 60, StationID: 2},
		{ArrivalTime: 180, StationID: 3},
	}
}

func TestStepDwellThenAdvance(t *testing.T) {
	tr := New(1, "T1", 1, 50, threeStopTimetable(), logctx.Discard())
	require.Equal(t, 1, tr.CurrentStationID)
	require.Equal(t, network.DwellSeconds, tr.DwellRemaining)

	// Burn off the initial dwell.
	for tr.DwellRemaining > 0 {
		tr.Step(1, 0)
	}
	require.Equal(t, 0.0, tr.DwellRemaining)

	arrived := tr.Step(30, 40)
	require.False(t, arrived)
	require.InDelta(t, 40.0/60.0, tr.PositionRatio, 1e-9)

	arrived = tr.Step(30, 70)
	require.True(t, arrived)
	require.Equal(t, 2, tr.CurrentStationID)
	require.NotNil(t, tr.NextStationID)
	require.Equal(t, 3, *tr.NextStationID)
}

func TestStepAtTerminalStaysPut(t *testing.T) {
	tr := New(1, "T1", 1, 50, threeStopTimetable(), logctx.Discard())
	tr.TimetableIdx = 2
	tr.DwellRemaining = 0
	require.True(t, tr.AtTerminal())
	require.False(t, tr.Step(10, 1000))
}

func TestBoardRespectsCapacity(t *testing.T) {
	store := record.New(10, logctx.Discard())
	idxs, err := store.Allocate(5)
	require.NoError(t, err)

	tr := New(1, "T1", 1, 3, threeStopTimetable(), logctx.Discard())
	boarded, rejected := tr.Board(idxs, store)
	require.Len(t, boarded, 3)
	require.Len(t, rejected, 2)
	for _, idx := range boarded {
		require.Equal(t, record.Onboard, store.Get(idx).State)
		require.Equal(t, 1, store.Get(idx).OnTrainID)
	}

	boarded2, rejected2 := tr.Board(rejected, store)
	require.Empty(t, boarded2)
	require.Equal(t, rejected, rejected2)
}

func TestAlightArrivedVsTransferring(t *testing.T) {
	store := record.New(10, logctx.Discard())
	idxs, err := store.Allocate(2)
	require.NoError(t, err)
	tbl := pathtable.New(logctx.Discard())

	arrivingIdx, transferIdx := idxs[0], idxs[1]

	arrivingRow := store.Get(arrivingIdx)
	arrivingRow.Dest = 2

	transferRow := store.Get(transferIdx)
	transferRow.Dest = 3
	transferRow.PathID = tbl.Plan(1, 3, []pathtable.Segment{
		{LineCode: "T1", From: 1, To: 2},
		{LineCode: "T2", From: 2, To: 3},
	})
	transferRow.SegmentCursor = 0

	tr := New(1, "T1", 1, 10, threeStopTimetable(), logctx.Discard())
	tr.Onboard = []int{arrivingIdx, transferIdx}
	tr.CurrentStationID = 2

	arrived, transferring := tr.Alight(store, tbl)
	require.Equal(t, []int{arrivingIdx}, arrived)
	require.Equal(t, []int{transferIdx}, transferring)
	require.Empty(t, tr.Onboard)
	require.Equal(t, record.Arrived, store.Get(arrivingIdx).State)
}

func TestAlightSameLineIntermediateStopStaysOnboard(t *testing.T) {
	store := record.New(10, logctx.Discard())
	idxs, err := store.Allocate(1)
	require.NoError(t, err)
	tbl := pathtable.New(logctx.Discard())

	idx := idxs[0]
	row := store.Get(idx)
	row.Dest = 3
	row.PathID = tbl.Plan(1, 3, []pathtable.Segment{
		{LineCode: "T1", From: 1, To: 2},
		{LineCode: "T1", From: 2, To: 3},
	})
	row.SegmentCursor = 0

	tr := New(1, "T1", 1, 10, threeStopTimetable(), logctx.Discard())
	tr.Onboard = []int{idx}
	tr.CurrentStationID = 2

	arrived, transferring := tr.Alight(store, tbl)
	require.Empty(t, arrived)
	require.Empty(t, transferring)
	require.Equal(t, []int{idx}, tr.Onboard)
	require.Equal(t, 1, store.Get(idx).SegmentCursor)
}

func TestReverseDirectionResetsViaSetTimetable(t *testing.T) {
	tr := New(1, "T1", 1, 50, threeStopTimetable(), logctx.Discard())
	tr.TimetableIdx = 2
	tr.CurrentStationID = 3
	tr.ReverseDirection()
	require.Equal(t, -1, tr.Direction)

	reversed := []network.TimetableEntry{
		{ArrivalTime: 1000, StationID: 3},
		{ArrivalTime: 1120, StationID: 2},
		{ArrivalTime: 1240, StationID: 1},
	}
	tr.SetTimetable(reversed)
	require.Equal(t, 0, tr.TimetableIdx)
	require.Equal(t, 3, tr.CurrentStationID)
	require.Equal(t, network.DwellSeconds, tr.DwellRemaining)
}
