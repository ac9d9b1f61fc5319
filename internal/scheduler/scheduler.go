package scheduler

import (
	"container/heap"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/junryge/ASAS/internal/graph"
	"github.com/junryge/ASAS/internal/simcore"
)

// StationLocator resolves a station id to its attached address id and 2D
// position, decoupling the scheduler from the layout package.
type StationLocator interface {
	StationAddress(stationID int) (addrID int, x, y float64, ok bool)
}

// Config carries the scheduler-relevant subset of the simulation's tuning
// keys.
type Config struct {
	HotLotPriority       simcore.JobPriority
	HotLotTimeoutSeconds float64
}

// DefaultConfig mirrors the vendor's default HotLot priority and timeout.
func DefaultConfig() Config {
	return Config{HotLotPriority: simcore.PriorityHotLot, HotLotTimeoutSeconds: 120}
}

// Assignment is one (job, vehicle) pairing returned by an assignment pass.
type Assignment struct {
	JobID     int
	VehicleID int
}

// Scheduler owns the pending job queue, the active-job map, and the
// completed-job log.
type Scheduler struct {
	cfg Config

	pending    jobQueue
	active     map[int]*simcore.TransportJob
	completed  []*simcore.TransportJob
	pathFinder *graph.PathFinder
}

// New returns an empty Scheduler.
func New(cfg Config) *Scheduler {
	s := &Scheduler{cfg: cfg, active: make(map[int]*simcore.TransportJob)}
	heap.Init(&s.pending)
	return s
}

// SetPathFinder wires the routed-distance source used by the assignment
// pass. A nil PathFinder falls back to straight-line distance.
func (s *Scheduler) SetPathFinder(pf *graph.PathFinder) { s.pathFinder = pf }

// AddJob enqueues a new job, upgrading HotLot jobs to the configured HotLot
// priority and timeout.
func (s *Scheduler) AddJob(job *simcore.TransportJob) {
	if job.IsHotLot {
		job.Priority = s.cfg.HotLotPriority
		job.TimeoutSeconds = s.cfg.HotLotTimeoutSeconds
	}
	heap.Push(&s.pending, job)
}

// PendingJobs returns the pending queue in priority order (read-only
// snapshot).
func (s *Scheduler) PendingJobs() []*simcore.TransportJob { return s.pending.PendingJobs() }

// ActiveJob looks up a job by id in the active map.
func (s *Scheduler) ActiveJob(id int) (*simcore.TransportJob, bool) {
	j, ok := s.active[id]
	return j, ok
}

// CancelJob removes a pending job from the queue, or marks an active job
// cancelled. Returns the job and true if found.
//
// Unlike the vendor implementation, which leaves the assigned vehicle with a
// stale current_job, the caller (SimulationEngine) is expected to roll the
// assigned vehicle back to idle when this returns a job that was active —
// see simcore.Engine.CancelJob.
func (s *Scheduler) CancelJob(id int) (*simcore.TransportJob, bool) {
	for i, j := range s.pending {
		if j.ID == id {
			j.Status = simcore.JobCancelled
			heap.Remove(&s.pending, i)
			return j, true
		}
	}
	if j, ok := s.active[id]; ok {
		j.Status = simcore.JobCancelled
		delete(s.active, id)
		return j, true
	}
	return nil, false
}

// AssignJobs runs one assignment pass: snapshot idle, FOUP-free vehicles,
// then for each pending job (priority order) assign the available vehicle
// with the smallest routed (or straight-line) distance to the job's source
// station.
func (s *Scheduler) AssignJobs(vehicles map[int]*simcore.Vehicle, stations StationLocator, nowUnixNanos int64) []Assignment {
	available := make([]*simcore.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.State == simcore.VehicleIdle && !v.HasFOUP {
			available = append(available, v)
		}
	}
	if len(available) == 0 || s.pending.Len() == 0 {
		return nil
	}

	pending := s.pending.PendingJobs()
	limit := len(pending)
	if len(available) < limit {
		limit = len(available)
	}

	var assignments []Assignment
	for i := 0; i < limit; i++ {
		job := pending[i]
		addrID, sx, sy, ok := stations.StationAddress(job.SourceStation)
		if !ok {
			continue
		}

		bestIdx := -1
		bestDist := math.Inf(1)
		for vi, v := range available {
			var dist float64
			if s.pathFinder != nil {
				_, dist = s.pathFinder.FindPath(v.CurrentAddress, addrID)
			} else {
				dist = euclid(v.X, v.Y, sx, sy)
			}
			if dist < bestDist {
				bestDist = dist
				bestIdx = vi
			}
		}
		if bestIdx < 0 || math.IsInf(bestDist, 1) {
			continue // unreachable: skip this pairing
		}

		best := available[bestIdx]
		available = append(available[:bestIdx], available[bestIdx+1:]...)

		job.Status = simcore.JobAssigned
		vid := best.ID
		job.AssignedVehicle = &vid
		started := nowUnixNanos
		job.StartedAt = &started

		s.removeFromPending(job.ID)
		s.active[job.ID] = job

		assignments = append(assignments, Assignment{JobID: job.ID, VehicleID: best.ID})
	}
	return assignments
}

func (s *Scheduler) removeFromPending(id int) {
	for i, j := range s.pending {
		if j.ID == id {
			heap.Remove(&s.pending, i)
			return
		}
	}
}

func euclid(x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	return math.Sqrt(dx*dx + dy*dy)
}

// CompleteJob moves a job from active to completed.
func (s *Scheduler) CompleteJob(id int, nowUnixNanos int64) (*simcore.TransportJob, bool) {
	job, ok := s.active[id]
	if !ok {
		return nil, false
	}
	delete(s.active, id)
	job.Status = simcore.JobCompleted
	completed := nowUnixNanos
	job.CompletedAt = &completed
	s.completed = append(s.completed, job)
	return job, true
}

// CheckHotLotTimeout reports HotLot jobs in the pending queue whose elapsed
// wall-clock since creation exceeds their timeout. Reporting is advisory
// only.
func (s *Scheduler) CheckHotLotTimeout(nowUnixNanos int64) []int {
	var out []int
	for _, j := range s.pending {
		if !j.IsHotLot {
			continue
		}
		elapsedSeconds := float64(nowUnixNanos-j.CreatedAt) / 1e9
		if elapsedSeconds > j.TimeoutSeconds {
			out = append(out, j.ID)
		}
	}
	return out
}

// Statistics summarizes queue/active/completed counts and timing.
type Statistics struct {
	PendingJobs       int
	ActiveJobs        int
	CompletedJobs     int
	AvgCompletionTime float64 // seconds
	HotLotCount       int
}

// Stats computes the Statistics snapshot. Mean completion time uses
// gonum/stat.Mean over completed jobs with both timestamps set.
func (s *Scheduler) Stats() Statistics {
	var durations []float64
	for _, j := range s.completed {
		if j.StartedAt != nil && j.CompletedAt != nil {
			durations = append(durations, float64(*j.CompletedAt-*j.StartedAt)/1e9)
		}
	}
	var mean float64
	if len(durations) > 0 {
		mean = stat.Mean(durations, nil)
	}

	hotlot := 0
	for _, j := range s.pending {
		if j.IsHotLot {
			hotlot++
		}
	}

	return Statistics{
		PendingJobs:       s.pending.Len(),
		ActiveJobs:        len(s.active),
		CompletedJobs:     len(s.completed),
		AvgCompletionTime: mean,
		HotLotCount:       hotlot,
	}
}

// Reset clears all queues.
func (s *Scheduler) Reset() {
	s.pending = nil
	s.active = make(map[int]*simcore.TransportJob)
	s.completed = nil
}

// CompletedJobs returns the append-only completed-job log.
func (s *Scheduler) CompletedJobs() []*simcore.TransportJob { return s.completed }
