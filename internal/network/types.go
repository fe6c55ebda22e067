package network

import "fmt"

// Station is a static node in the rail network. LineCodes is augmented by
// AddLine when a line references the station; callers should not mutate
// it directly.
type Station struct {
	ID                  int
	Name                string
	LineCodes           []string
	TheoreticalCapacity int
	MaximumCapacity     int
	AvgChangeTime       float64 // seconds; minimum time before a transfer re-boards
}

func (s *Station) hasLineCode(code string) bool {
	for _, c := range s.LineCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Schedule is a line's dispatch policy: minimum headway between
// consecutive departures in the same direction, the hours of day service
// runs, and per-train capacity.
type Schedule struct {
	HeadwaySeconds   float64
	ServiceStartHour float64
	ServiceEndHour   float64
	Capacity         int
}

// Line is a stable, ordered sequence of stations with per-segment travel
// times and a dispatch policy.
type Line struct {
	ID                  string // stable id, doubles as the line code used in segments
	Stations            []int  // ordered station ids, length >= 2
	TimeBetweenStations []float64
	Schedule            Schedule
	FleetSize           int
	Bidirectional       bool
}

// validate enforces spec.md section 7's InvalidSchedule condition: the
// per-segment travel time list must have exactly len(Stations)-1 entries,
// and the schedule must describe a usable dispatch policy.
func (l *Line) validate() error {
	if len(l.Stations) < 2 {
		return fmt.Errorf("%w: line %q needs at least 2 stations, got %d", ErrInvalidSchedule, l.ID, len(l.Stations))
	}
	if len(l.TimeBetweenStations) != len(l.Stations)-1 {
		return fmt.Errorf("%w: line %q time_between_stations length %d, want %d", ErrInvalidSchedule, l.ID, len(l.TimeBetweenStations), len(l.Stations)-1)
	}
	for i, t := range l.TimeBetweenStations {
		if t <= 0 {
			return fmt.Errorf("%w: line %q segment %d travel time must be > 0, got %v", ErrInvalidSchedule, l.ID, i, t)
		}
	}
	if l.Schedule.HeadwaySeconds <= 0 {
		return fmt.Errorf("%w: line %q headway must be > 0", ErrInvalidSchedule, l.ID)
	}
	if l.Schedule.Capacity <= 0 {
		return fmt.Errorf("%w: line %q capacity must be > 0", ErrInvalidSchedule, l.ID)
	}
	if l.Schedule.ServiceStartHour < 0 || l.Schedule.ServiceEndHour > 24 || l.Schedule.ServiceStartHour >= l.Schedule.ServiceEndHour {
		return fmt.Errorf("%w: line %q service hours [%v,%v) invalid", ErrInvalidSchedule, l.ID, l.Schedule.ServiceStartHour, l.Schedule.ServiceEndHour)
	}
	if l.FleetSize <= 0 {
		return fmt.Errorf("%w: line %q fleet_size must be > 0", ErrInvalidSchedule, l.ID)
	}
	return nil
}

// StopIndex returns the index of stationID in the line's station list, or
// -1 if not present.
func (l *Line) StopIndex(stationID int) int {
	for i, id := range l.Stations {
		if id == stationID {
			return i
		}
	}
	return -1
}

// TravelTime returns the segment travel time from the stop at index i to
// i+1 (forward) regardless of direction; callers traversing backward use
// the same value since segment duration is symmetric in this model.
func (l *Line) TravelTime(i int) float64 {
	return l.TimeBetweenStations[i]
}
