package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junryge/ASAS/internal/simcore"
)

type fakeStations map[int][3]float64 // stationID -> {addrID, x, y}

func (f fakeStations) StationAddress(stationID int) (int, float64, float64, bool) {
	v, ok := f[stationID]
	if !ok {
		return 0, 0, 0, false
	}
	return int(v[0]), v[1], v[2], true
}

func TestScheduler_AddAndAssign(t *testing.T) {
	s := New(DefaultConfig())
	s.AddJob(&simcore.TransportJob{ID: 1, SourceStation: 10, Priority: simcore.PriorityNormal})

	vehicles := map[int]*simcore.Vehicle{
		5: {ID: 5, State: simcore.VehicleIdle, X: 0, Y: 0, CurrentAddress: 1},
	}
	stations := fakeStations{10: {1, 100, 0}}

	assigned := s.AssignJobs(vehicles, stations, 0)
	require.Len(t, assigned, 1)
	assert.Equal(t, 1, assigned[0].JobID)
	assert.Equal(t, 5, assigned[0].VehicleID)

	j, ok := s.ActiveJob(1)
	require.True(t, ok)
	assert.Equal(t, simcore.JobAssigned, j.Status)
	assert.Equal(t, 0, s.pending.Len())
}

// S2: a HotLot job added after a normal job is dispatched first.
func TestScheduler_HotLotPreemptsNormal(t *testing.T) {
	s := New(DefaultConfig())
	s.AddJob(&simcore.TransportJob{ID: 1, SourceStation: 10, Priority: simcore.PriorityNormal, CreatedAt: 1})
	s.AddJob(&simcore.TransportJob{ID: 2, SourceStation: 10, Priority: simcore.PriorityNormal, IsHotLot: true, CreatedAt: 2})

	pending := s.PendingJobs()
	require.Len(t, pending, 2)
	assert.Equal(t, 2, pending[0].ID)
	assert.Equal(t, simcore.PriorityHotLot, pending[0].Priority)
	assert.Equal(t, DefaultConfig().HotLotTimeoutSeconds, pending[0].TimeoutSeconds)
}

// S3: a HotLot job that has sat in the queue past its timeout is reported.
func TestScheduler_HotLotTimeout(t *testing.T) {
	s := New(DefaultConfig())
	s.AddJob(&simcore.TransportJob{ID: 1, IsHotLot: true, CreatedAt: 0})

	notExpired := s.CheckHotLotTimeout(int64(60 * 1e9))
	assert.Empty(t, notExpired)

	expired := s.CheckHotLotTimeout(int64(200 * 1e9))
	assert.Equal(t, []int{1}, expired)
}

func TestScheduler_CancelPending(t *testing.T) {
	s := New(DefaultConfig())
	s.AddJob(&simcore.TransportJob{ID: 1})
	j, ok := s.CancelJob(1)
	require.True(t, ok)
	assert.Equal(t, simcore.JobCancelled, j.Status)
	assert.Equal(t, 0, s.pending.Len())
}

func TestScheduler_CancelActive(t *testing.T) {
	s := New(DefaultConfig())
	s.AddJob(&simcore.TransportJob{ID: 1, SourceStation: 10})
	vehicles := map[int]*simcore.Vehicle{5: {ID: 5, State: simcore.VehicleIdle, CurrentAddress: 1}}
	stations := fakeStations{10: {1, 0, 0}}
	s.AssignJobs(vehicles, stations, 0)

	j, ok := s.CancelJob(1)
	require.True(t, ok)
	assert.Equal(t, simcore.JobCancelled, j.Status)
	_, stillActive := s.ActiveJob(1)
	assert.False(t, stillActive)
}

func TestScheduler_CompleteAndStats(t *testing.T) {
	s := New(DefaultConfig())
	s.AddJob(&simcore.TransportJob{ID: 1, SourceStation: 10})
	vehicles := map[int]*simcore.Vehicle{5: {ID: 5, State: simcore.VehicleIdle, CurrentAddress: 1}}
	stations := fakeStations{10: {1, 0, 0}}
	s.AssignJobs(vehicles, stations, int64(1e9))

	_, ok := s.CompleteJob(1, int64(11e9))
	require.True(t, ok)

	stats := s.Stats()
	assert.Equal(t, 1, stats.CompletedJobs)
	assert.Equal(t, 0, stats.ActiveJobs)
	assert.InDelta(t, 10.0, stats.AvgCompletionTime, 1e-9)
}

func TestScheduler_AssignSkipsUnknownStation(t *testing.T) {
	s := New(DefaultConfig())
	s.AddJob(&simcore.TransportJob{ID: 1, SourceStation: 999})
	vehicles := map[int]*simcore.Vehicle{5: {ID: 5, State: simcore.VehicleIdle, CurrentAddress: 1}}
	assigned := s.AssignJobs(vehicles, fakeStations{}, 0)
	assert.Empty(t, assigned)
	assert.Equal(t, 1, s.pending.Len())
}

func TestScheduler_AssignSkipsBusyVehicles(t *testing.T) {
	s := New(DefaultConfig())
	s.AddJob(&simcore.TransportJob{ID: 1, SourceStation: 10})
	vehicles := map[int]*simcore.Vehicle{
		5: {ID: 5, State: simcore.VehicleMoving, CurrentAddress: 1},
		6: {ID: 6, State: simcore.VehicleIdle, HasFOUP: true, CurrentAddress: 1},
	}
	stations := fakeStations{10: {1, 0, 0}}
	assigned := s.AssignJobs(vehicles, stations, 0)
	assert.Empty(t, assigned)
}

func TestScheduler_Reset(t *testing.T) {
	s := New(DefaultConfig())
	s.AddJob(&simcore.TransportJob{ID: 1})
	s.Reset()
	assert.Equal(t, 0, s.pending.Len())
	assert.Empty(t, s.active)
	assert.Empty(t, s.completed)
}
