package simcore

// VehicleSummary is one vehicle's projection in a Snapshot.
type VehicleSummary struct {
	ID             int
	Name           string
	State          VehicleState
	X, Y           float64
	Speed          float64
	HasFOUP        bool
	CurrentJob     *int
	CurrentAddress int
}

// StationSummary is one station's projection in a Snapshot.
type StationSummary struct {
	ID          int // vendor port Number
	Name        string
	Type        int // layout.StationKind, duplicated here to avoid importing layout
	X, Y        float64
	HasFOUP     bool
	IsAvailable bool
}

// JobCounts is the aggregate pending/active/completed job tally.
type JobCounts struct {
	Pending   int
	Active    int
	Completed int
}

// SchedulerStats mirrors scheduler.Statistics without importing the
// scheduler package (which itself imports simcore for TransportJob/Vehicle).
type SchedulerStats struct {
	AvgCompletionTime float64
	HotLotCount       int
}

// Snapshot is the serializable record a registered Observer receives every
// tick, and that the HTTP layer's /state endpoint projects directly: the
// tick and simulation time, a vehicle summary, a station summary capped at
// the first 100, aggregate job counts, and scheduler statistics.
type Snapshot struct {
	Tick           int64
	SimTimeSeconds float64
	Vehicles       []VehicleSummary
	Stations       []StationSummary
	JobCounts      JobCounts
	SchedulerStats SchedulerStats
}
