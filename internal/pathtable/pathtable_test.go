package pathtable

import (
	"testing"

	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/stretchr/testify/require"
)

func TestPlanDedup(t *testing.T) {
	tb := New(logctx.Discard())
	segs := []Segment{{LineCode: "T1", From: 1, To: 2}, {LineCode: "T1", From: 2, To: 3}}

	id1 := tb.Plan(1, 3, segs)
	id2 := tb.Plan(1, 3, segs)
	require.Equal(t, id1, id2)
	require.Equal(t, uint32(1), id1)

	got1, ok1 := tb.Expand(id1)
	got2, ok2 := tb.Expand(id2)
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, got1, got2)
}

func TestPlanDistinctSequencesGetDistinctIDs(t *testing.T) {
	tb := New(logctx.Discard())
	a := tb.Plan(1, 3, []Segment{{LineCode: "T1", From: 1, To: 2}, {LineCode: "T1", From: 2, To: 3}})
	b := tb.Plan(1, 4, []Segment{{LineCode: "T1", From: 1, To: 2}, {LineCode: "T1", From: 2, To: 4}})
	require.NotEqual(t, a, b)
}

func TestExpandZeroIsNone(t *testing.T) {
	tb := New(logctx.Discard())
	segs, ok := tb.Expand(0)
	require.False(t, ok)
	require.Nil(t, segs)
}

func TestExpandUnknownIsNone(t *testing.T) {
	tb := New(logctx.Discard())
	segs, ok := tb.Expand(999)
	require.False(t, ok)
	require.Nil(t, segs)
}
