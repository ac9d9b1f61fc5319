// Package config loads the simulation's tunable parameters from JSON,
// using pointer fields so a partial override file only changes the keys it
// names. Grounded on internal/config/tuning.go's TuningConfig/Get*/Validate
// pattern.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SimulationConfig is the root configuration for one simulation run.
type SimulationConfig struct {
	MaxVehicles *int `json:"max_vehicles,omitempty"`
	MaxStations *int `json:"max_stations,omitempty"`
	MaxJobs     *int `json:"max_jobs,omitempty"`

	SchedulerMode          *string  `json:"scheduler_mode,omitempty"` // informational only; see SPEC_FULL §10
	SchedulerIntervalTicks *int64   `json:"scheduler_interval_ticks,omitempty"`
	HotLotPriority         *int     `json:"hotlot_priority,omitempty"`
	HotLotTimeoutSeconds   *float64 `json:"hotlot_timeout_seconds,omitempty"`

	BumpDistance         *float64 `json:"bump_distance,omitempty"`
	DispatchDistance     *float64 `json:"dispatch_distance,omitempty"`
	BranchDistance       *float64 `json:"branch_distance,omitempty"`
	CommunicationTimeout *float64 `json:"communication_timeout,omitempty"`
	StatusReportInterval *float64 `json:"status_report_interval,omitempty"`

	LayoutWidth  *float64 `json:"layout_width,omitempty"`
	LayoutHeight *float64 `json:"layout_height,omitempty"`
	Scale        *float64 `json:"scale,omitempty"`

	JunctionEntryOffset *float64 `json:"junction_entry_offset,omitempty"`
	JunctionExitOffset  *float64 `json:"junction_exit_offset,omitempty"`
}

// Empty returns a SimulationConfig with every field nil; Get* accessors
// fall back to the vendor defaults below.
func Empty() *SimulationConfig { return &SimulationConfig{} }

// Load reads a SimulationConfig from a JSON file. Missing keys retain
// their defaults, so partial override files are safe.
func Load(path string) (*SimulationConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that any set values are in range.
func (c *SimulationConfig) Validate() error {
	if c.MaxVehicles != nil && *c.MaxVehicles < 0 {
		return fmt.Errorf("max_vehicles must be non-negative, got %d", *c.MaxVehicles)
	}
	if c.MaxStations != nil && *c.MaxStations < 0 {
		return fmt.Errorf("max_stations must be non-negative, got %d", *c.MaxStations)
	}
	if c.MaxJobs != nil && *c.MaxJobs < 0 {
		return fmt.Errorf("max_jobs must be non-negative, got %d", *c.MaxJobs)
	}
	if c.BumpDistance != nil && *c.BumpDistance <= 0 {
		return fmt.Errorf("bump_distance must be positive, got %f", *c.BumpDistance)
	}
	if c.DispatchDistance != nil && c.BumpDistance != nil && *c.DispatchDistance < *c.BumpDistance {
		return fmt.Errorf("dispatch_distance (%f) must be >= bump_distance (%f)", *c.DispatchDistance, *c.BumpDistance)
	}
	return nil
}

func (c *SimulationConfig) GetMaxVehicles() int {
	if c.MaxVehicles == nil {
		return 50
	}
	return *c.MaxVehicles
}

func (c *SimulationConfig) GetMaxStations() int {
	if c.MaxStations == nil {
		return 500
	}
	return *c.MaxStations
}

func (c *SimulationConfig) GetMaxJobs() int {
	if c.MaxJobs == nil {
		return 1000
	}
	return *c.MaxJobs
}

func (c *SimulationConfig) GetSchedulerMode() string {
	if c.SchedulerMode == nil {
		return "priority"
	}
	return *c.SchedulerMode
}

func (c *SimulationConfig) GetSchedulerIntervalTicks() int64 {
	if c.SchedulerIntervalTicks == nil {
		return 10
	}
	return *c.SchedulerIntervalTicks
}

func (c *SimulationConfig) GetHotLotPriority() int {
	if c.HotLotPriority == nil {
		return 99
	}
	return *c.HotLotPriority
}

func (c *SimulationConfig) GetHotLotTimeoutSeconds() float64 {
	if c.HotLotTimeoutSeconds == nil {
		return 120
	}
	return *c.HotLotTimeoutSeconds
}

func (c *SimulationConfig) GetBumpDistance() float64 {
	if c.BumpDistance == nil {
		return 2.0
	}
	return *c.BumpDistance
}

func (c *SimulationConfig) GetDispatchDistance() float64 {
	if c.DispatchDistance == nil {
		return 10.0
	}
	return *c.DispatchDistance
}

func (c *SimulationConfig) GetBranchDistance() float64 {
	if c.BranchDistance == nil {
		return 5.0
	}
	return *c.BranchDistance
}

func (c *SimulationConfig) GetCommunicationTimeout() float64 {
	if c.CommunicationTimeout == nil {
		return 5.0
	}
	return *c.CommunicationTimeout
}

func (c *SimulationConfig) GetStatusReportInterval() float64 {
	if c.StatusReportInterval == nil {
		return 1.0
	}
	return *c.StatusReportInterval
}

func (c *SimulationConfig) GetScale() float64 {
	if c.Scale == nil {
		return 1.0
	}
	return *c.Scale
}

func (c *SimulationConfig) GetJunctionEntryOffset() float64 {
	if c.JunctionEntryOffset == nil {
		return 0.5
	}
	return *c.JunctionEntryOffset
}

func (c *SimulationConfig) GetJunctionExitOffset() float64 {
	if c.JunctionExitOffset == nil {
		return 0.5
	}
	return *c.JunctionExitOffset
}
