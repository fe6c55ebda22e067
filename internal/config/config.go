// Package config loads the network's programmatic construction surface
// (stations, lines, schedules) from JSON, mirroring the teacher's
// route/fleet JSON loaders.
package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jwmdev/railedsim/internal/logctx"
	"github.com/jwmdev/railedsim/internal/network"
)

// rawNetwork mirrors the JSON shape: a flat list of stations and lines.
type rawNetwork struct {
	Stations []rawStation `json:"stations"`
	Lines    []rawLine    `json:"lines"`
}

type rawStation struct {
	ID                  int     `json:"id"`
	Name                string  `json:"name"`
	TheoreticalCapacity int     `json:"theoretical_capacity"`
	MaximumCapacity     int     `json:"maximum_capacity"`
	AvgChangeTime       float64 `json:"avg_change_time"`
}

type rawLine struct {
	ID                  string      `json:"id"`
	Stations            []int       `json:"stations"`
	TimeBetweenStations []float64   `json:"time_between_stations"`
	Schedule            rawSchedule `json:"schedule"`
	FleetSize           int         `json:"fleet_size"`
	Bidirectional       bool        `json:"bidirectional"`
}

type rawSchedule struct {
	HeadwaySeconds   float64 `json:"headway_seconds"`
	ServiceStartHour float64 `json:"service_start_hour"`
	ServiceEndHour   float64 `json:"service_end_hour"`
	Capacity         int     `json:"capacity"`
}

// LoadNetworkFromReader decodes a network definition and builds a
// network.Network from it. Stations are registered before lines so
// AddLine's UnknownStation validation runs against a fully populated
// station set, matching the construction order spec.md section 4.3
// requires.
func LoadNetworkFromReader(r io.Reader, log logctx.Context) (*network.Network, error) {
	dec := json.NewDecoder(r)
	var raw rawNetwork
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode network: %w", err)
	}

	n := network.New(log)
	for _, s := range raw.Stations {
		n.AddStation(&network.Station{
			ID:                  s.ID,
			Name:                s.Name,
			TheoreticalCapacity: s.TheoreticalCapacity,
			MaximumCapacity:     s.MaximumCapacity,
			AvgChangeTime:       s.AvgChangeTime,
		})
	}
	for _, l := range raw.Lines {
		line := &network.Line{
			ID:                  l.ID,
			Stations:            l.Stations,
			TimeBetweenStations: l.TimeBetweenStations,
			Schedule: network.Schedule{
				HeadwaySeconds:   l.Schedule.HeadwaySeconds,
				ServiceStartHour: l.Schedule.ServiceStartHour,
				ServiceEndHour:   l.Schedule.ServiceEndHour,
				Capacity:         l.Schedule.Capacity,
			},
			FleetSize:     l.FleetSize,
			Bidirectional: l.Bidirectional,
		}
		if err := n.AddLine(line); err != nil {
			return nil, fmt.Errorf("add line %q: %w", l.ID, err)
		}
	}
	return n, nil
}
