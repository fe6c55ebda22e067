package network

// TimetableEntry is one scheduled stop in a train's run: the time the
// train is due and the station it is due at.
type TimetableEntry struct {
	ArrivalTime float64
	StationID   int
}

// MinIntervalSeconds is the floor applied to any inter-station hop when
// building a timetable, preventing degenerate zero-length segments.
const MinIntervalSeconds = 10.0

// DwellSeconds is the default dwell duration at every stop, including the
// terminal.
const DwellSeconds = 30.0

// BuildTimetable constructs the ordered (arrival_time, station_id)
// sequence for one run of the line starting at startTime in the given
// direction (+1 forward, -1 reverse).
func (l *Line) BuildTimetable(startTime float64, direction int) []TimetableEntry {
	stations := l.Stations
	times := l.TimeBetweenStations
	if direction < 0 {
		stations = reverseInts(l.Stations)
		times = reverseFloats(l.TimeBetweenStations)
	}
	entries := make([]TimetableEntry, len(stations))
	entries[0] = TimetableEntry{ArrivalTime: startTime, StationID: stations[0]}
	t := startTime
	for i, dt := range times {
		if dt < MinIntervalSeconds {
			dt = MinIntervalSeconds
		}
		t += dt
		entries[i+1] = TimetableEntry{ArrivalTime: t, StationID: stations[i+1]}
	}
	return entries
}

func reverseInts(in []int) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func reverseFloats(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
