package traingen

import (
	"testing"

	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/network"
	"github.com/stretchr/testify/require"
)

func testLine() *network.Line {
	return &network.Line{
		ID:                  "T1",
		Stations:            []int{1, 2, 3},
		TimeBetweenStations: []float64{60, 120},
		Schedule:            network.Schedule{HeadwaySeconds: 180, ServiceStartHour: 6, ServiceEndHour: 22, Capacity: 1000},
		FleetSize:           2,
		Bidirectional:       true,
	}
}

func TestTickDispatchesBothDirectionsInFixedOrder(t *testing.T) {
	g := New("T1", 4, logctx.Discard())
	l := testLine()
	events := g.Tick(6*3600, l)
	require.Len(t, events, 2)
	require.Equal(t, 1, events[0].Direction)
	require.Equal(t, -1, events[1].Direction)
	require.Equal(t, 2, g.ActiveCount())
}

func TestTickOutsideServiceHoursEmitsNothing(t *testing.T) {
	g := New("T1", 4, logctx.Discard())
	l := testLine()
	require.Empty(t, g.Tick(5*3600, l))
	require.Empty(t, g.Tick(22*3600, l))
}

func TestTickRespectsHeadway(t *testing.T) {
	g := New("T1", 4, logctx.Discard())
	l := testLine()
	g.Tick(6*3600, l)
	events := g.Tick(6*3600+100, l) // < 180s headway
	require.Empty(t, events)
	events = g.Tick(6*3600+200, l)
	require.Len(t, events, 2)
}

func TestTickRespectsFleetCap(t *testing.T) {
	g := New("T1", 2, logctx.Discard())
	l := testLine()
	events := g.Tick(6*3600, l)
	require.Len(t, events, 2)
	require.Equal(t, 2, g.ActiveCount())

	events = g.Tick(6*3600+1000, l)
	require.Empty(t, events)
}

func TestReleaseReusesIdleID(t *testing.T) {
	g := New("T1", 4, logctx.Discard())
	l := testLine()
	events := g.Tick(6*3600, l)
	firstID := events[0].TrainID
	g.Release(firstID)
	require.Equal(t, 1, g.ActiveCount())

	events2 := g.Tick(6*3600+200, l)
	ids := []int{events2[0].TrainID, events2[1].TrainID}
	require.Contains(t, ids, firstID)
}
