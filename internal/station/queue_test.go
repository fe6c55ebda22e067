package station

import (
	"testing"

	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/network"
	"github.com/jwmdev/railedsim/internal/pathtable"
	"github.com/jwmdev/railedsim/internal/record"
	"github.com/jwmdev/railedsim/internal/train"
	"github.com/stretchr/testify/require"
)

func newTrain(id int, lineID string, stationID int) *train.Train {
	tt := []network.TimetableEntry{
		{ArrivalTime: 0, StationID: stationID},
		{ArrivalTime: 60, StationID: stationID + 1},
	}
	tr := train.New(id, lineID, 1, 10, tt, logctx.Discard())
	tr.CurrentStationID = stationID
	return tr
}

func TestDequeueForBoardingMatchesCurrentSegmentOnly(t *testing.T) {
	store := record.New(10, logctx.Discard())
	tbl := pathtable.New(logctx.Discard())
	q := New(1, logctx.Discard())

	idxs, err := store.Allocate(2)
	require.NoError(t, err)
	direct, transfer := idxs[0], idxs[1]

	store.Get(direct).PathID = tbl.Plan(1, 2, []pathtable.Segment{{LineCode: "T1", From: 1, To: 2}})
	store.Get(transfer).PathID = tbl.Plan(1, 3, []pathtable.Segment{
		{LineCode: "T2", From: 1, To: 2},
		{LineCode: "T1", From: 2, To: 3},
	})
	store.Get(transfer).SegmentCursor = 1 // already past the first leg

	q.Enqueue(direct)
	q.Enqueue(transfer)

	tr := newTrain(1, "T1", 1)
	eligible := q.DequeueForBoarding(tr, store, tbl, 0)
	require.Equal(t, []int{direct}, eligible)
	require.Equal(t, 1, q.Len()) // transfer row stays: its segment starts at station 2, not here
}

func TestRequeuePrependsAtHead(t *testing.T) {
	q := New(1, logctx.Discard())
	q.Enqueue(10)
	q.Enqueue(11)
	q.Requeue([]int{20, 21})
	require.Equal(t, []int{20, 21, 10, 11}, q.waiting)
}

func TestTransferPassengerAdvancesCursorAndRequeues(t *testing.T) {
	store := record.New(10, logctx.Discard())
	q := New(2, logctx.Discard())
	idxs, err := store.Allocate(1)
	require.NoError(t, err)
	idx := idxs[0]
	store.Get(idx).State = record.Onboard
	store.Get(idx).SegmentCursor = 0

	q.TransferPassenger(idx, 500, 45, store)

	row := store.Get(idx)
	require.Equal(t, record.Waiting, row.State)
	require.Equal(t, 1, row.SegmentCursor)
	require.Equal(t, 500.0, row.TapOffTS)
	require.Equal(t, 545.0, row.TransferReadyAt)
	require.Equal(t, 2, row.CurrentStation)
	require.Equal(t, 1, q.Len())
}

func TestDequeueForBoardingRespectsTransferReadyAt(t *testing.T) {
	store := record.New(10, logctx.Discard())
	tbl := pathtable.New(logctx.Discard())
	q := New(2, logctx.Discard())

	idxs, err := store.Allocate(1)
	require.NoError(t, err)
	idx := idxs[0]
	store.Get(idx).PathID = tbl.Plan(1, 3, []pathtable.Segment{
		{LineCode: "T2", From: 1, To: 2},
		{LineCode: "T1", From: 2, To: 3},
	})
	store.Get(idx).SegmentCursor = 1
	store.Get(idx).TransferReadyAt = 100

	q.Enqueue(idx)
	tr := newTrain(1, "T1", 2)

	require.Empty(t, q.DequeueForBoarding(tr, store, tbl, 50))
	require.Equal(t, 1, q.Len())

	eligible := q.DequeueForBoarding(tr, store, tbl, 100)
	require.Equal(t, []int{idx}, eligible)
}
