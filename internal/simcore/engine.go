package simcore

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/junryge/ASAS/internal/graph"
	"github.com/junryge/ASAS/internal/layout"
	"github.com/junryge/ASAS/internal/scheduler"
)

// EngineConfig carries the tick-timing and dwell constants, mirrored from
// OHT2/simulator/core/engine.py's module-level constants.
type EngineConfig struct {
	TickIntervalSeconds      float64
	AssignmentIntervalTicks  int64
	HotLotCheckIntervalTicks int64
	DwellTicks               int
}

// DefaultEngineConfig matches the vendor simulator's defaults: a 100ms
// tick, an assignment pass every 10 ticks, a HotLot timeout sweep every 100
// ticks, and a 30-tick (3s) loading/unloading dwell.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TickIntervalSeconds:      0.1,
		AssignmentIntervalTicks:  10,
		HotLotCheckIntervalTicks: 100,
		DwellTicks:               30,
	}
}

// Engine is the fixed-tick, single-threaded cooperative SimulationEngine.
// One Tick call performs, in order: the scheduled assignment pass, HotLot
// timeout supervision, then per-vehicle motion and job-phase advancement,
// followed by observer callbacks. Grounded on
// OHT2/simulator/core/engine.py's SimulationEngine.tick, restructured as a
// Go composition root the way internal/lidar/pipeline wires its stage
// callbacks through one config struct.
type Engine struct {
	mu sync.Mutex

	model      *layout.Model
	pathFinder *graph.PathFinder
	sched      *scheduler.Scheduler
	stations   *LayoutStations
	collision  scheduler.CollisionAvoidance
	cfg        EngineConfig

	vehicles map[int]*Vehicle

	// stationFOUP tracks each station's current FOUP occupancy, keyed by
	// vendor port Number. Touched only by the engine's own loading/unloading
	// transitions, per the model's read-only-after-init graph/adjacency
	// but mutable station state.
	stationFOUP map[int]bool

	tick          int64
	running       bool
	lastHotLotIDs []int

	observers multiObserver

	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine wires a simulation engine over an ingested, post-processed
// layout.
func NewEngine(model *layout.Model, cfg EngineConfig, schedCfg scheduler.Config, ca scheduler.CollisionAvoidance) *Engine {
	pf := graph.Build(model)
	sched := scheduler.New(schedCfg)
	sched.SetPathFinder(pf)
	return &Engine{
		model:       model,
		pathFinder:  pf,
		sched:       sched,
		stations:    NewLayoutStations(model),
		collision:   ca,
		cfg:         cfg,
		vehicles:    make(map[int]*Vehicle),
		stationFOUP: make(map[int]bool),
	}
}

// AddObserver registers an Observer for tick/job/vehicle callbacks.
func (e *Engine) AddObserver(o Observer) {
	if o == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// AddVehicle registers a vehicle at its starting address.
func (e *Engine) AddVehicle(v *Vehicle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if addr := e.model.AddressByID(v.CurrentAddress); addr != nil {
		v.X, v.Y = addr.DrawX, addr.DrawY
	}
	e.vehicles[v.ID] = v
}

// Vehicles returns a snapshot slice of the current vehicle set.
func (e *Engine) Vehicles() []*Vehicle {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Vehicle, 0, len(e.vehicles))
	for _, v := range e.vehicles {
		cp := *v
		out = append(out, &cp)
	}
	return out
}

// Scheduler exposes the underlying scheduler for job submission; AddJob is
// driven from outside the tick loop.
func (e *Engine) Scheduler() *scheduler.Scheduler { return e.sched }

// Tick count and elapsed simulated time.
func (e *Engine) Tick() int64 { return e.tick }

func (e *Engine) SimTimeSeconds() float64 { return float64(e.tick) * e.cfg.TickIntervalSeconds }

// Step advances the simulation by exactly one tick. Safe to call directly
// in tests without Start/Run.
//
// OnTick is delivered after the engine lock is released, so an observer may
// call back into the engine (e.g. Vehicles) without deadlocking.
func (e *Engine) Step() {
	e.mu.Lock()
	snap, notify := e.step()
	observers := e.observers
	e.mu.Unlock()
	if notify {
		observers.OnTick(snap)
	}
}

func (e *Engine) step() (Snapshot, bool) {
	e.tick++
	nowNanos := int64(e.SimTimeSeconds() * 1e9)

	if e.tick%e.cfg.AssignmentIntervalTicks == 0 {
		assignments := e.sched.AssignJobs(e.vehicles, e.stations, nowNanos)
		for _, a := range assignments {
			e.startJob(a, nowNanos)
		}
	}

	if e.tick%e.cfg.HotLotCheckIntervalTicks == 0 {
		e.lastHotLotIDs = e.sched.CheckHotLotTimeout(nowNanos)
	}

	for _, v := range e.vehicles {
		e.advanceVehicle(v, nowNanos)
	}

	if len(e.observers) == 0 {
		return Snapshot{}, false
	}
	return e.snapshot(), true
}

// LastHotLotTimeouts returns the job ids flagged by the most recent HotLot
// supervision sweep; advisory only.
func (e *Engine) LastHotLotTimeouts() []int { return e.lastHotLotIDs }

// Snapshot returns the current getState record: tick, simulation time, a
// vehicle summary, a station summary capped at the first 100, aggregate job
// counts, and scheduler statistics.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Engine) snapshot() Snapshot {
	vehicles := make([]VehicleSummary, 0, len(e.vehicles))
	for _, v := range e.vehicles {
		vehicles = append(vehicles, VehicleSummary{
			ID: v.ID, Name: v.Name, State: v.State, X: v.X, Y: v.Y, Speed: v.Speed,
			HasFOUP: v.HasFOUP, CurrentJob: v.CurrentJob, CurrentAddress: v.CurrentAddress,
		})
	}

	stationLimit := len(e.model.Stations)
	if stationLimit > 100 {
		stationLimit = 100
	}
	stations := make([]StationSummary, 0, stationLimit)
	for _, st := range e.model.Stations[:stationLimit] {
		hasFOUP := e.stationFOUP[st.Number]
		stations = append(stations, StationSummary{
			ID: st.Number, Name: st.PortID, Type: int(st.Kind), X: st.X, Y: st.Y,
			HasFOUP: hasFOUP, IsAvailable: !hasFOUP,
		})
	}

	stats := e.sched.Stats()
	return Snapshot{
		Tick:           e.tick,
		SimTimeSeconds: e.SimTimeSeconds(),
		Vehicles:       vehicles,
		Stations:       stations,
		JobCounts: JobCounts{
			Pending: stats.PendingJobs, Active: stats.ActiveJobs, Completed: stats.CompletedJobs,
		},
		SchedulerStats: SchedulerStats{
			AvgCompletionTime: stats.AvgCompletionTime, HotLotCount: stats.HotLotCount,
		},
	}
}

func (e *Engine) startJob(a scheduler.Assignment, nowNanos int64) {
	v, ok := e.vehicles[a.VehicleID]
	if !ok {
		return
	}
	job, ok := e.sched.ActiveJob(a.JobID)
	if !ok {
		return
	}
	addrID, _, _, ok := e.stations.StationAddress(job.SourceStation)
	if !ok {
		return
	}
	path, cost := e.pathFinder.FindPath(v.CurrentAddress, addrID)
	if math.IsInf(cost, 1) {
		return // unreachable pickup: leave job active, vehicle idle
	}

	job.Status = JobPickup
	jobID := job.ID
	v.CurrentJob = &jobID
	v.Path = path
	v.PathIndex = 0
	v.segmentProgress = 0
	v.TargetAddress = &addrID
	e.setVehicleState(v, VehicleMoving)
}

func (e *Engine) advanceVehicle(v *Vehicle, nowNanos int64) {
	switch v.State {
	case VehicleMoving:
		e.advanceMotion(v, nowNanos)
	case VehicleLoading, VehicleUnloading:
		e.advanceDwell(v, nowNanos)
	}
}

func (e *Engine) advanceMotion(v *Vehicle, nowNanos int64) {
	if len(v.Path) == 0 || v.PathIndex >= len(v.Path)-1 {
		e.arrive(v, nowNanos)
		return
	}

	curAddr := e.model.AddressByID(v.Path[v.PathIndex])
	nextAddr := e.model.AddressByID(v.Path[v.PathIndex+1])
	if curAddr == nil || nextAddr == nil {
		e.arrive(v, nowNanos)
		return
	}

	edgeDist := math.Hypot(nextAddr.DrawX-curAddr.DrawX, nextAddr.DrawY-curAddr.DrawY)
	if edgeDist <= 0 {
		v.PathIndex++
		v.segmentProgress = 0
		v.CurrentAddress = nextAddr.ID
		v.X, v.Y = nextAddr.DrawX, nextAddr.DrawY
		return
	}

	effSpeed := v.MaxSpeed
	if leaderX, leaderY, leaderSpeed, ok := e.nearestLeader(v); ok {
		effSpeed = e.collision.SafeSpeed(v.X, v.Y, leaderX, leaderY, leaderSpeed, v.MaxSpeed)
	}
	v.Speed = effSpeed

	stepDistance := effSpeed / 60.0 * e.cfg.TickIntervalSeconds * 1000 // m/min -> mm/tick
	v.segmentProgress += stepDistance / edgeDist

	if v.segmentProgress >= 1.0 {
		v.segmentProgress = 0
		v.PathIndex++
		v.CurrentAddress = nextAddr.ID
		v.X, v.Y = nextAddr.DrawX, nextAddr.DrawY
		if v.PathIndex >= len(v.Path)-1 {
			e.arrive(v, nowNanos)
		}
	} else {
		v.X = curAddr.DrawX + (nextAddr.DrawX-curAddr.DrawX)*v.segmentProgress
		v.Y = curAddr.DrawY + (nextAddr.DrawY-curAddr.DrawY)*v.segmentProgress
	}
}

// nearestLeader finds the closest other vehicle to v and its current
// speed, used to modulate v's speed via CollisionAvoidance.
func (e *Engine) nearestLeader(v *Vehicle) (x, y, speed float64, ok bool) {
	var xs, ys, speeds []float64
	for _, other := range e.vehicles {
		if other.ID == v.ID {
			continue
		}
		xs = append(xs, other.X)
		ys = append(ys, other.Y)
		speeds = append(speeds, other.Speed)
	}
	idx := scheduler.NearestLeader(v.X, v.Y, xs, ys)
	if idx < 0 {
		return 0, 0, 0, false
	}
	return xs[idx], ys[idx], speeds[idx], true
}

func (e *Engine) arrive(v *Vehicle, nowNanos int64) {
	if v.CurrentJob == nil {
		e.setVehicleState(v, VehicleIdle)
		return
	}
	job, ok := e.sched.ActiveJob(*v.CurrentJob)
	if !ok {
		e.setVehicleState(v, VehicleIdle)
		v.CurrentJob = nil
		return
	}

	switch job.Status {
	case JobPickup:
		// Status stays "pickup" for the whole loading dwell; advanceDwell
		// advances it to "transfer" once loading completes.
		v.dwellTicks = 0
		e.setVehicleState(v, VehicleLoading)
	case JobTransfer:
		v.dwellTicks = 0
		e.setVehicleState(v, VehicleUnloading)
	default:
		e.setVehicleState(v, VehicleIdle)
	}
}

func (e *Engine) advanceDwell(v *Vehicle, nowNanos int64) {
	v.dwellTicks++
	if v.dwellTicks < e.cfg.DwellTicks {
		return
	}
	v.dwellTicks = 0

	if v.CurrentJob == nil {
		e.setVehicleState(v, VehicleIdle)
		return
	}
	job, ok := e.sched.ActiveJob(*v.CurrentJob)
	if !ok {
		e.setVehicleState(v, VehicleIdle)
		v.CurrentJob = nil
		return
	}

	switch v.State {
	case VehicleLoading:
		v.HasFOUP = true
		e.stationFOUP[job.SourceStation] = false
		addrID, _, _, ok := e.stations.StationAddress(job.DestStation)
		if !ok {
			e.setVehicleState(v, VehicleIdle)
			return
		}
		path, cost := e.pathFinder.FindPath(v.CurrentAddress, addrID)
		if math.IsInf(cost, 1) {
			e.setVehicleState(v, VehicleIdle)
			return
		}
		job.Status = JobTransfer
		v.Path = path
		v.PathIndex = 0
		v.segmentProgress = 0
		v.TargetAddress = &addrID
		e.setVehicleState(v, VehicleMoving)
	case VehicleUnloading:
		v.HasFOUP = false
		e.stationFOUP[job.DestStation] = true
		v.Path = nil
		v.PathIndex = 0
		v.TargetAddress = nil
		jobID := *v.CurrentJob
		v.CurrentJob = nil
		e.setVehicleState(v, VehicleIdle)
		if completed, ok := e.sched.CompleteJob(jobID, nowNanos); ok {
			e.observers.OnJobCompleted(completed)
		}
	}
}

func (e *Engine) setVehicleState(v *Vehicle, next VehicleState) {
	if v.State == next {
		return
	}
	prev := v.State
	v.State = next
	e.observers.OnVehicleStateChanged(v, prev)
}

// CancelJob cancels a job, rolling back an active job's vehicle to idle,
// unlike the vendor implementation which left a stale current_job
// reference.
func (e *Engine) CancelJob(jobID int) (*TransportJob, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	job, ok := e.sched.CancelJob(jobID)
	if !ok {
		return nil, false
	}
	for _, v := range e.vehicles {
		if v.CurrentJob != nil && *v.CurrentJob == jobID {
			v.CurrentJob = nil
			v.Path = nil
			v.PathIndex = 0
			v.segmentProgress = 0
			v.TargetAddress = nil
			v.HasFOUP = false
			e.setVehicleState(v, VehicleIdle)
		}
	}
	return job, true
}

// Reset clears tick count, scheduler queues, and every vehicle's job/motion
// state, returning vehicles to idle at their current position.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick = 0
	e.lastHotLotIDs = nil
	e.sched.Reset()
	e.stationFOUP = make(map[int]bool)
	for _, v := range e.vehicles {
		v.State = VehicleIdle
		v.CurrentJob = nil
		v.Path = nil
		v.PathIndex = 0
		v.segmentProgress = 0
		v.Speed = 0
		v.TargetAddress = nil
		v.HasFOUP = false
	}
}

// Run drives Step on a fixed wall-clock ticker until ctx is cancelled or
// Stop is called. Intended for the console/server driver modes; Step can
// be called directly by tests and the demo mode for deterministic control.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true
	e.done = make(chan struct{})
	e.mu.Unlock()

	go func() {
		defer close(e.done)
		ticker := time.NewTicker(time.Duration(e.cfg.TickIntervalSeconds * float64(time.Second)))
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				e.Step()
			}
		}
	}()
}

// Stop halts a Run goroutine and waits for it to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	cancel := e.cancel
	done := e.done
	e.running = false
	e.mu.Unlock()

	cancel()
	<-done
}
