// Package simcore implements the OHT Simulation Core: vehicles, transport
// jobs, and the fixed-tick SimulationEngine that drives them over a routed
// address graph. Grounded on OHT2/simulator/core/{models, engine}.py and,
// structurally, on internal/lidar/pipeline's composition-root shape (a
// config struct of injected interfaces driving one tick method).
package simcore

// VehicleState is the lifecycle state of an OHT vehicle.
type VehicleState int

const (
	VehicleIdle VehicleState = iota
	VehicleMoving
	VehicleLoading
	VehicleUnloading
	VehicleCharging
	VehicleMaintenance
	VehicleError
)

func (s VehicleState) String() string {
	switch s {
	case VehicleIdle:
		return "idle"
	case VehicleMoving:
		return "moving"
	case VehicleLoading:
		return "loading"
	case VehicleUnloading:
		return "unloading"
	case VehicleCharging:
		return "charging"
	case VehicleMaintenance:
		return "maintenance"
	case VehicleError:
		return "error"
	default:
		return "unknown"
	}
}

// JobStatus is the lifecycle state of a TransportJob.
type JobStatus int

const (
	JobPending JobStatus = iota
	JobAssigned
	JobPickup
	JobTransfer
	JobDropoff
	JobCompleted
	JobCancelled
	JobError
)

func (s JobStatus) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobAssigned:
		return "assigned"
	case JobPickup:
		return "pickup"
	case JobTransfer:
		return "transfer"
	case JobDropoff:
		return "dropoff"
	case JobCompleted:
		return "completed"
	case JobCancelled:
		return "cancelled"
	case JobError:
		return "error"
	default:
		return "unknown"
	}
}

// JobPriority is the enumerated priority level; the numeric value is the
// sort key (higher first).
type JobPriority int

const (
	PriorityNormal JobPriority = 1
	PriorityHigh   JobPriority = 50
	PriorityUrgent JobPriority = 90
	PriorityHotLot JobPriority = 99
)

// Vehicle is a single OHT fleet member.
type Vehicle struct {
	ID             int
	Name           string
	State          VehicleState
	X, Y           float64
	CurrentAddress int
	TargetAddress  *int
	Speed          float64 // m/min
	MaxSpeed       float64
	HasFOUP        bool
	CurrentJob     *int
	Battery        float64 // percent

	Path      []int
	PathIndex int

	// segmentProgress is the fraction (0..1) of the current Path edge
	// traveled so far; position is linearly interpolated from it.
	segmentProgress float64

	// dwellTicks counts ticks spent in Loading/Unloading, reset on entry and
	// on completion of the dwell.
	dwellTicks int
}

// TransportJob is a single pickup→dropoff request.
type TransportJob struct {
	ID              int
	SourceStation   int
	DestStation     int
	Priority        JobPriority
	Status          JobStatus
	AssignedVehicle *int
	CarrierID       string
	CreatedAt       int64 // nanos on the scheduler's clock (simulated time when driven by Engine)
	StartedAt       *int64
	CompletedAt     *int64
	IsHotLot        bool
	TimeoutSeconds  float64
}

// SpeedTable maps the vendor's 1-32 speed index to m/min, restored from the
// original source (OHT2/simulator/core/models.py SPEED_TABLE) — the
// distilled spec keeps only the raw vendor speed code on Edge. SpeedForCode
// resolves a code through it; the engine does not apply it to vehicle speed,
// which is capped by Vehicle.MaxSpeed and CollisionAvoidance only.
var SpeedTable = map[int]float64{
	1: 1.5, 2: 3, 3: 5, 4: 10, 5: 15,
	6: 20, 7: 25, 8: 30, 9: 35, 10: 40,
	11: 45, 12: 50, 13: 55, 14: 60, 15: 65,
	16: 70, 17: 75, 18: 80, 19: 90, 20: 100,
	21: 110, 22: 120, 23: 130, 24: 140, 25: 150,
	26: 160, 27: 170, 28: 180, 29: 190, 30: 200,
	31: 200, 32: 200,
}

// SpeedForCode resolves a vendor speed code to m/min, defaulting to
// maxSpeed when the code is unrecognized.
func SpeedForCode(code int, maxSpeed float64) float64 {
	if v, ok := SpeedTable[code]; ok {
		return v
	}
	return maxSpeed
}
