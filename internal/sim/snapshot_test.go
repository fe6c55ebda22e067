package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/record"
	"github.com/stretchr/testify/require"
)

func TestWriteSnapshotProducesOneRowPerLiveRecord(t *testing.T) {
	store := record.New(5, logctx.Discard())
	idxs, err := store.Allocate(2)
	require.NoError(t, err)
	for i, idx := range idxs {
		row := store.Get(idx)
		row.ID = uint64(i + 1)
		row.Origin = 1
		row.Dest = 2
		row.State = record.Waiting
	}

	dir := t.TempDir()
	require.NoError(t, WriteSnapshot(dir, 10, store))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	lines := splitLines(string(content))
	require.Len(t, lines, 3) // header + 2 rows
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
