package sqlite

import (
	"log"

	"github.com/junryge/ASAS/internal/simcore"
)

// Recorder is a simcore.Observer that persists a running session's tick
// snapshots and job completions, for console/server runs that want a
// queryable history instead of a state that only ever lives in memory.
type Recorder struct {
	simcore.NoopObserver
	db        *DB
	sessionID int64
	engine    *simcore.Engine
	everyTick int64
}

// NewRecorder builds a Recorder that writes vehicle snapshots every
// everyTick ticks and every completed job, against sessionID. everyTick <= 0
// means every tick.
func NewRecorder(db *DB, sessionID int64, engine *simcore.Engine, everyTick int64) *Recorder {
	if everyTick <= 0 {
		everyTick = 1
	}
	return &Recorder{db: db, sessionID: sessionID, engine: engine, everyTick: everyTick}
}

// OnTick persists one vehicle_snapshot row per vehicle, throttled to every
// r.everyTick ticks so a long run doesn't write one row per vehicle per
// tick.
func (r *Recorder) OnTick(snap simcore.Snapshot) {
	if snap.Tick%r.everyTick != 0 {
		return
	}
	for _, v := range r.engine.Vehicles() {
		if err := r.db.InsertVehicleSnapshot(r.sessionID, snap.Tick, v); err != nil {
			log.Printf("recorder: failed to insert vehicle snapshot for vehicle %d: %v", v.ID, err)
		}
	}
}

// OnJobCompleted upserts the completed job's final state.
func (r *Recorder) OnJobCompleted(job *simcore.TransportJob) {
	if err := r.db.InsertJob(r.sessionID, job); err != nil {
		log.Printf("recorder: failed to insert completed job %d: %v", job.ID, err)
	}
}

// Close closes the underlying database handle.
func (r *Recorder) Close() error {
	return r.db.Close()
}
