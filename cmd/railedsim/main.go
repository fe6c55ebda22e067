// Command railedsim drives a fixed-step rail transit simulation from a
// JSON network definition. It is a thin external collaborator over the
// internal packages: parse flags, build the network and loop, run n
// ticks, print a report.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/rs/zerolog"

	"github.com/jwmdev/railedsim/internal/config"
	"github.com/jwmdev/railedsim/internal/customer"
	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/pathtable"
	"github.com/jwmdev/railedsim/internal/record"
	"github.com/jwmdev/railedsim/internal/sim"
)

func main() {
	networkPath := flag.String("network", "data/network.json", "path to the network definition JSON")
	capacity := flag.Int("capacity", 10000, "record store capacity (max concurrent passengers)")
	ticks := flag.Int("ticks", 3600, "number of simulation ticks to run")
	dt := flag.Float64("dt", 1.0, "seconds of simulation time per tick")
	startHour := flag.Float64("start_hour", 6.0, "simulation clock start, in hours since midnight")
	rate := flag.Float64("rate", 0.05, "constant passenger arrival rate per station, in passengers/second")
	seed := flag.Int64("seed", 1, "base RNG seed; each station generator derives its own from this")
	snapshotDir := flag.String("snapshot_dir", "", "if set, periodically write record-store CSV snapshots here")
	snapshotInterval := flag.Int("snapshot_interval", 0, "ticks between snapshots (0 disables snapshotting)")
	logLevel := flag.String("log_level", "info", "zerolog level: debug, info, warn, error")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("bad log_level %q: %v", *logLevel, err)
	}
	baseLog := logctx.New(os.Stderr, level)

	f, err := os.Open(*networkPath)
	if err != nil {
		log.Fatalf("open network file: %v", err)
	}
	defer f.Close()

	net, err := config.LoadNetworkFromReader(f, baseLog.With("component", "config"))
	if err != nil {
		log.Fatalf("load network: %v", err)
	}

	store := record.New(*capacity, baseLog.With("component", "record"))
	tbl := pathtable.New(baseLog.With("component", "pathtable"))

	cfg := sim.Config{
		DTSeconds:             *dt,
		SnapshotIntervalTicks: uint64(*snapshotInterval),
		SnapshotPath:          *snapshotDir,
		StartTime:             *startHour * 3600.0,
	}
	loop := sim.New(store, net, tbl, cfg, baseLog.With("component", "sim"))

	stationIDs := net.StationIDs()
	for i, id := range stationIDs {
		gen := customer.New(id, customer.ConstantRate(*rate), *seed+int64(i), baseLog.With("component", "customer").WithInt("station_id", id))
		loop.AddGenerator(gen)
	}

	log.Printf("starting run: stations=%d ticks=%d dt=%.2fs rate=%.3f/s", len(stationIDs), *ticks, *dt, *rate)
	if err := loop.Run(*ticks); err != nil {
		log.Fatalf("run: %v", err)
	}

	printReport(loop, store)
}

func printReport(loop *sim.Loop, store *record.Store) {
	metrics := loop.Metrics()
	var last sim.Metrics
	if len(metrics) > 0 {
		last = metrics[len(metrics)-1]
	}

	round2 := func(x float64) float64 { return math.Round(x*100) / 100 }

	fmt.Println("=== Simulation Report ===")
	fmt.Printf("Ticks run: %d\n", loop.CurrentTick())
	fmt.Printf("Simulation time: %.1f s\n", loop.CurrentTime())
	fmt.Printf("Active trains: %d\n", len(loop.ActiveTrains()))
	fmt.Printf("Waiting passengers: %d\n", last.WaitingPassengers)
	fmt.Printf("Average wait (last tick): %.2f s\n", round2(last.AvgWaitTimeS))

	fmt.Printf("Passengers still in system: %d\n", store.Len())
	fmt.Printf("Free slots awaiting reuse: %d\n", store.FreeCount())
}
