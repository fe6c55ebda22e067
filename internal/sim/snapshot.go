package sim

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jwmdev/railedsim/internal/record"
)

// WriteSnapshot writes one CSV row per live passenger record to a
// timestamped path derived from dirOrFile, mirroring the teacher's
// timestamp-suffixed report convention. The on-disk format is an
// implementation choice; the schema and trigger are the part of the
// contract (spec.md section 6).
func WriteSnapshot(dirOrFile string, tick uint64, store *record.Store) error {
	ts := time.Now().Format("20060102-150405")
	outPath := dirOrFile
	if fi, err := os.Stat(outPath); err == nil && fi.IsDir() {
		outPath = filepath.Join(outPath, fmt.Sprintf("snapshot-%06d-%s.csv", tick, ts))
	} else {
		ext := filepath.Ext(outPath)
		base := outPath[:len(outPath)-len(ext)]
		outPath = fmt.Sprintf("%s-%06d-%s%s", base, tick, ts, ext)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "id,origin_station_id,dest_station_id,current_station_id,on_train_id,state,total_wait_time,total_travel_time")
	store.Scan(func(_ int, row *record.Row) {
		fmt.Fprintf(f, "%d,%d,%d,%d,%d,%s,%.3f,%.3f\n",
			row.ID, row.Origin, row.Dest, row.CurrentStation, row.OnTrainID,
			row.State, row.TotalWaitTime, row.TotalTravelTime)
	})
	return nil
}
